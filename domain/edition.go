package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

type EditionStatus string

const (
	EditionDraft     EditionStatus = "DRAFT"
	EditionPublished EditionStatus = "PUBLISHED"
	EditionClosed    EditionStatus = "CLOSED"
	EditionArchived  EditionStatus = "ARCHIVED"
)

func (s EditionStatus) Valid() bool {
	switch s {
	case EditionDraft, EditionPublished, EditionClosed, EditionArchived:
		return true
	}
	return false
}

// Edition is one scheduled run of a course for a client.
type Edition struct {
	ID                   uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID             uint          `gorm:"not null;index" json:"courseId"`
	Course               *Course       `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	ClientID             *uint         `gorm:"index" json:"clientId"`
	Client               *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Status               EditionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	StartDate            *time.Time    `json:"startDate"`
	EndDate              *time.Time    `json:"endDate"`
	RegistrationDeadline *time.Time    `gorm:"index" json:"registrationDeadline"`
	Notes                string        `gorm:"type:text" json:"notes"`
	Version              int           `gorm:"not null" json:"version"`
	CreatedAt            time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CourseTitle falls back to a generic label when the course was not preloaded.
func (e *Edition) CourseTitle() string {
	if e.Course != nil && e.Course.Title != "" {
		return e.Course.Title
	}
	return "Training course"
}

// EditionPatch carries the fields of a PUT-style update; nil means "keep current value".
type EditionPatch struct {
	Status               *EditionStatus
	StartDate            *time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time
	ClientID             *uint
	Notes                *string
}

// TransitionDescriptor is the diff between an edition before and after a mutation.
type TransitionDescriptor struct {
	EditionID     uint          `json:"editionId"`
	Version       int           `json:"version"`
	StatusBefore  EditionStatus `json:"statusBefore"`
	StatusAfter   EditionStatus `json:"statusAfter"`
	DatesChanged  bool          `json:"datesChanged"`
	ClientChanged bool          `json:"clientChanged"`
	Deleted       bool          `json:"deleted"`
}

type CreateEditionRequest struct {
	CourseID             uint    `json:"courseId" valid:"required~Course is required"`
	ClientID             *uint   `json:"clientId"`
	StartDate            *string `json:"startDate"`
	EndDate              *string `json:"endDate"`
	RegistrationDeadline *string `json:"registrationDeadline"`
	Notes                string  `json:"notes"`
}

type UpdateEditionRequest struct {
	Status               *string `json:"status" valid:"in(DRAFT|PUBLISHED|CLOSED|ARCHIVED)~Invalid status,optional"`
	StartDate            *string `json:"startDate"`
	EndDate              *string `json:"endDate"`
	RegistrationDeadline *string `json:"registrationDeadline"`
	ClientID             *uint   `json:"clientId"`
	Notes                *string `json:"notes"`
}

// ToPatch parses the request dates into normalized instants.
func (r *UpdateEditionRequest) ToPatch() (EditionPatch, error) {
	var patch EditionPatch
	var err error

	if r.Status != nil {
		s := EditionStatus(strings.ToUpper(strings.TrimSpace(*r.Status)))
		patch.Status = &s
	}
	if patch.StartDate, err = ParseOptionalInstant("startDate", r.StartDate); err != nil {
		return patch, err
	}
	if patch.EndDate, err = ParseOptionalInstant("endDate", r.EndDate); err != nil {
		return patch, err
	}
	if patch.RegistrationDeadline, err = ParseOptionalInstant("registrationDeadline", r.RegistrationDeadline); err != nil {
		return patch, err
	}
	patch.ClientID = r.ClientID
	patch.Notes = r.Notes
	return patch, nil
}

var instantLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// ParseInstant accepts RFC 3339 timestamps and plain dates and returns a UTC instant,
// so equal instants written in different offsets compare equal.
func ParseInstant(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError(field, "invalid date, expected YYYY-MM-DD or RFC 3339")
}

func ParseOptionalInstant(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := ParseInstant(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type EditionUpdateResult struct {
	Edition       *Edition       `json:"edition"`
	Notifications []Notification `json:"notifications"`
}

type EditionRepo interface {
	WithTx(tx *gorm.DB) EditionRepo
	Create(ctx context.Context, edition *Edition) error
	GetByID(ctx context.Context, id uint) (*Edition, error)
	// CompareAndSwap persists next only if the stored version still equals prevVersion.
	CompareAndSwap(ctx context.Context, prevVersion int, next *Edition) error
	Delete(ctx context.Context, id uint) error
	GetClient(ctx context.Context, id uint) (*Client, error)
	ListPublishedWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]Edition, error)
}

// EditionCleanupRepo removes the rows that depend on an edition before it is deleted.
type EditionCleanupRepo interface {
	WithTx(tx *gorm.DB) EditionCleanupRepo
	CertificateFiles(ctx context.Context, editionID uint) ([]string, error)
	PurgeDependents(ctx context.Context, editionID uint) error
}

// CertificateFiles releases stored certificate artifacts.
type CertificateFiles interface {
	Release(ctx context.Context, path string) error
}

type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type EditionUseCase interface {
	Create(ctx context.Context, req *CreateEditionRequest) (*Edition, error)
	Get(ctx context.Context, id uint) (*Edition, error)
	Update(ctx context.Context, id uint, patch EditionPatch) (*EditionUpdateResult, error)
	Delete(ctx context.Context, id uint) ([]Notification, error)
}
