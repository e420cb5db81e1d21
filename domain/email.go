package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EmailStatus string

const (
	EmailSent    EmailStatus = "SENT"
	EmailFailed  EmailStatus = "FAILED"
	EmailPending EmailStatus = "PENDING"
)

// EmailMessage is what the mail queue carries to the SMTP transport.
type EmailMessage struct {
	To        string
	ToName    string
	Subject   string
	Body      string
	Type      NotificationType
	EditionID *uint
}

// EmailLog records one attempted send. Append-only.
type EmailLog struct {
	ID             uint             `gorm:"primaryKey;autoIncrement" json:"-"`
	PublicID       uuid.UUID        `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	RecipientEmail string           `gorm:"type:varchar(255);not null;index" json:"recipientEmail"`
	RecipientName  string           `gorm:"type:varchar(200)" json:"recipientName"`
	Type           NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Subject        string           `gorm:"type:varchar(255);not null" json:"subject"`
	Status         EmailStatus      `gorm:"type:varchar(10);not null;index" json:"status"`
	ErrorMessage   *string          `gorm:"type:text" json:"errorMessage"`
	EditionID      *uint            `gorm:"index" json:"editionId"`
	SentAt         time.Time        `gorm:"not null" json:"sentAt"`
}

type EmailLogFilter struct {
	Status    *EmailStatus
	EditionID *uint
	Limit     int
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EmailLogRepo interface {
	Append(ctx context.Context, entry *EmailLog) error
	List(ctx context.Context, filter EmailLogFilter) ([]EmailLog, error)
}

// MailQueue accepts messages without blocking the caller.
type MailQueue interface {
	Enqueue(msg EmailMessage) bool
}

type EmailLogUseCase interface {
	List(ctx context.Context, filter EmailLogFilter) ([]EmailLog, error)
}
