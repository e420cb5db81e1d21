package repository

import (
	"context"
	"errors"
	"fmt"

	"trainingportal/domain"

	"gorm.io/gorm"
)

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) domain.LessonRepo {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) WithTx(tx *gorm.DB) domain.LessonRepo {
	return &lessonRepository{db: tx}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *domain.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("could not create lesson: %w", err)
	}
	return nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (*domain.Lesson, error) {
	var lesson domain.Lesson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLessonNotFound
		}
		return nil, fmt.Errorf("could not fetch lesson %d: %w", id, err)
	}
	return &lesson, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *domain.Lesson) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Lesson{}).
		Where("id = ?", lesson.ID).
		Updates(map[string]interface{}{
			"date":           lesson.Date,
			"duration_hours": lesson.DurationHours,
			"topic":          lesson.Topic,
		}).Error
	if err != nil {
		return fmt.Errorf("could not update lesson %d: %w", lesson.ID, err)
	}
	return nil
}

func (r *lessonRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lesson{})
	if res.Error != nil {
		return fmt.Errorf("could not delete lesson %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *lessonRepository) HasAttendance(ctx context.Context, lessonID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Where("lesson_id = ?", lessonID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("could not count attendance for lesson %d: %w", lessonID, err)
	}
	return count > 0, nil
}
