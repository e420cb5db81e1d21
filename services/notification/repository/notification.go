package repository

import (
	"context"
	"fmt"

	"trainingportal/domain"
	"trainingportal/helpers"

	"gorm.io/gorm"
)

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) domain.NotificationRepo {
	return &notificationRepo{
		db: db,
	}
}

func (np *notificationRepo) WithTx(tx *gorm.DB) domain.NotificationRepo {
	return &notificationRepo{db: tx}
}

func (np *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	err := np.db.WithContext(ctx).Create(n).Error
	if err != nil {
		if helpers.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("could not create notification %s: %w", n.Type, err)
	}
	return nil
}

func (np *notificationRepo) Exists(ctx context.Context, editionID *uint, t domain.NotificationType, fingerprint string) (bool, error) {
	var count int64
	q := np.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("type = ? AND fingerprint = ?", t, fingerprint)
	if editionID != nil {
		q = q.Where("edition_id = ?", *editionID)
	} else {
		q = q.Where("edition_id IS NULL")
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("could not look up notification %s: %w", t, err)
	}
	return count > 0, nil
}

func (np *notificationRepo) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	var notifications []domain.Notification

	q := np.db.WithContext(ctx).Model(&domain.Notification{})
	if filter.ClientID != nil {
		q = q.Where("client_id = ? OR is_global = ?", *filter.ClientID, true)
	}
	if filter.EditionID != nil {
		q = q.Where("edition_id = ?", *filter.EditionID)
	}
	if filter.ClientView {
		q = q.Where("admin_only = ?", false)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("could not get notifications: %w", err)
	}
	return notifications, nil
}
