package repository

import (
	"context"
	"fmt"

	"trainingportal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type emailLogRepo struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) domain.EmailLogRepo {
	return &emailLogRepo{db: db}
}

func (r *emailLogRepo) Append(ctx context.Context, entry *domain.EmailLog) error {
	if entry.PublicID == uuid.Nil {
		entry.PublicID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("could not log email to %s: %w", entry.RecipientEmail, err)
	}
	return nil
}

func (r *emailLogRepo) List(ctx context.Context, filter domain.EmailLogFilter) ([]domain.EmailLog, error) {
	var logs []domain.EmailLog

	q := r.db.WithContext(ctx).Model(&domain.EmailLog{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.EditionID != nil {
		q = q.Where("edition_id = ?", *filter.EditionID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	if err := q.Order("sent_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("could not get email logs: %w", err)
	}
	return logs, nil
}
