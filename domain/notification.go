package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNewEdition            NotificationType = "NEW_EDITION"
	NotificationEditionDatesChanged   NotificationType = "EDITION_DATES_CHANGED"
	NotificationEditionCancelled      NotificationType = "EDITION_CANCELLED"
	NotificationCertificatesAvailable NotificationType = "CERTIFICATES_AVAILABLE"
	NotificationReminderDeadline7D    NotificationType = "REMINDER_DEADLINE_7D"
	NotificationReminderDeadline1D    NotificationType = "REMINDER_DEADLINE_1D"
)

// NotificationTypes is the closed set seeded into the preference matrix.
var NotificationTypes = []NotificationType{
	NotificationNewEdition,
	NotificationEditionDatesChanged,
	NotificationEditionCancelled,
	NotificationCertificatesAvailable,
	NotificationReminderDeadline7D,
	NotificationReminderDeadline1D,
}

func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Audience string

const (
	AudienceClient Audience = "CLIENT"
	AudienceAdmin  Audience = "ADMIN"
)

var Audiences = []Audience{AudienceClient, AudienceAdmin}

// Notification is an in-portal bell entry. Rows are never updated in place.
// EditionID carries no foreign key so a cancellation notice outlives the deleted edition.
type Notification struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"-"`
	PublicID    uuid.UUID        `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	Type        NotificationType `gorm:"type:varchar(40);not null;uniqueIndex:idx_notification_fire" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	EditionID   *uint            `gorm:"uniqueIndex:idx_notification_fire" json:"editionId"`
	ClientID    *uint            `gorm:"index" json:"clientId,omitempty"`
	IsGlobal    bool             `gorm:"not null" json:"isGlobal"`
	AdminOnly   bool             `gorm:"not null;default:false" json:"adminOnly"`
	Fingerprint string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_notification_fire" json:"-"`
	Payload     datatypes.JSON   `json:"payload,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`
}

// NotificationFilter narrows a listing. ClientView hides rows fired while the client audience was off.
type NotificationFilter struct {
	ClientID   *uint
	EditionID  *uint
	ClientView bool
	Limit      int
}

// NotificationPreference is one cell of the administrator on/off matrix.
type NotificationPreference struct {
	Type      NotificationType `gorm:"primaryKey;type:varchar(40)" json:"type" valid:"required~Type is required"`
	Audience  Audience         `gorm:"primaryKey;type:varchar(20)" json:"audience" valid:"required~Audience is required,in(CLIENT|ADMIN)~Invalid audience"`
	Enabled   bool             `gorm:"not null" json:"enabled"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Emission is a notification row that was written plus the emails waiting for commit.
type Emission struct {
	Notification Notification
	Emails       []EmailMessage
}

func NotificationsOf(emissions []Emission) []Notification {
	out := make([]Notification, 0, len(emissions))
	for _, e := range emissions {
		out = append(out, e.Notification)
	}
	return out
}

type NotificationRepo interface {
	WithTx(tx *gorm.DB) NotificationRepo
	Create(ctx context.Context, n *Notification) error
	Exists(ctx context.Context, editionID *uint, t NotificationType, fingerprint string) (bool, error)
	List(ctx context.Context, filter NotificationFilter) ([]Notification, error)
}

type PreferenceRepo interface {
	List(ctx context.Context) ([]NotificationPreference, error)
	Upsert(ctx context.Context, pref *NotificationPreference) error
}

// NotificationDispatcher reacts to edition transitions. It never fails the caller.
type NotificationDispatcher interface {
	OnEditionTransition(ctx context.Context, tx *gorm.DB, desc TransitionDescriptor, edition *Edition, client *Client) []Emission
	NotifyCertificatesAvailable(ctx context.Context, tx *gorm.DB, edition *Edition, certificates int64) []Emission
	// Release hands the emails of committed emissions to the outbound queue.
	Release(emissions []Emission)
}

type NotificationUseCase interface {
	List(ctx context.Context, filter NotificationFilter) ([]Notification, error)
}

type PreferenceUseCase interface {
	List(ctx context.Context) ([]NotificationPreference, error)
	Set(ctx context.Context, pref *NotificationPreference) error
}
