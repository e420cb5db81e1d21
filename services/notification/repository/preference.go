package repository

import (
	"context"
	"fmt"

	"trainingportal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferenceRepo struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) domain.PreferenceRepo {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) List(ctx context.Context) ([]domain.NotificationPreference, error) {
	var prefs []domain.NotificationPreference
	err := r.db.WithContext(ctx).
		Order("type ASC").
		Order("audience ASC").
		Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("could not get notification preferences: %w", err)
	}
	return prefs, nil
}

func (r *preferenceRepo) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}, {Name: "audience"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
		}).
		Create(pref).Error
	if err != nil {
		return fmt.Errorf("could not save preference %s/%s: %w", pref.Type, pref.Audience, err)
	}
	return nil
}
