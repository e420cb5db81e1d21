package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trainingportal/domain"
	"trainingportal/helpers"

	"gorm.io/gorm"
)

type editionRepository struct {
	db *gorm.DB
}

func NewEditionRepository(db *gorm.DB) domain.EditionRepo {
	return &editionRepository{
		db: db,
	}
}

func (r *editionRepository) WithTx(tx *gorm.DB) domain.EditionRepo {
	return &editionRepository{db: tx}
}

func (r *editionRepository) Create(ctx context.Context, edition *domain.Edition) error {
	err := r.db.WithContext(ctx).Create(edition).Error
	if err != nil {
		if helpers.IsForeignKeyViolation(err) {
			return domain.NewValidationError("courseId", "course or client does not exist")
		}
		return fmt.Errorf("could not create edition: %w", err)
	}
	return nil
}

func (r *editionRepository) GetByID(ctx context.Context, id uint) (*domain.Edition, error) {
	var edition domain.Edition
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Client").
		Where("id = ?", id).
		First(&edition).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEditionNotFound
		}
		return nil, fmt.Errorf("could not fetch edition %d: %w", id, err)
	}
	return &edition, nil
}

func (r *editionRepository) CompareAndSwap(ctx context.Context, prevVersion int, next *domain.Edition) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Edition{}).
		Where("id = ? AND version = ?", next.ID, prevVersion).
		Updates(map[string]interface{}{
			"status":                next.Status,
			"start_date":            next.StartDate,
			"end_date":              next.EndDate,
			"registration_deadline": next.RegistrationDeadline,
			"client_id":             next.ClientID,
			"notes":                 next.Notes,
			"version":               next.Version,
		})
	if res.Error != nil {
		if helpers.IsForeignKeyViolation(res.Error) {
			return domain.NewValidationError("clientId", "client does not exist")
		}
		return fmt.Errorf("could not update edition %d: %w", next.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *editionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Edition{})
	if res.Error != nil {
		return fmt.Errorf("could not delete edition %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrEditionNotFound
	}
	return nil
}

func (r *editionRepository) GetClient(ctx context.Context, id uint) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewValidationError("clientId", "client does not exist")
		}
		return nil, fmt.Errorf("could not fetch client %d: %w", id, err)
	}
	return &client, nil
}

func (r *editionRepository) ListPublishedWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]domain.Edition, error) {
	var editions []domain.Edition
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Client").
		Where("status = ? AND registration_deadline IS NOT NULL", domain.EditionPublished).
		Where("registration_deadline > ? AND registration_deadline <= ?", from, to).
		Order("registration_deadline ASC").
		Find(&editions).Error
	if err != nil {
		return nil, fmt.Errorf("could not list editions with upcoming deadlines: %w", err)
	}
	return editions, nil
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) domain.Transactor {
	return &transactor{db: db}
}

func (t *transactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
