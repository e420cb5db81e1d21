package usecase

import (
	"context"
	"time"

	"trainingportal/domain"

	"gorm.io/gorm"
)

type lessonUseCase struct {
	tx       domain.Transactor
	editions domain.EditionRepo
	lessons  domain.LessonRepo
	TimeOut  time.Duration
}

func NewLessonUseCase(tx domain.Transactor, editions domain.EditionRepo, lessons domain.LessonRepo, timeOut time.Duration) domain.LessonUseCase {
	return &lessonUseCase{
		tx:       tx,
		editions: editions,
		lessons:  lessons,
		TimeOut:  timeOut,
	}
}

func parseLesson(req *domain.LessonRequest) (time.Time, error) {
	date, err := domain.ParseInstant("date", req.Date)
	if err != nil {
		return time.Time{}, err
	}
	if req.DurationHours <= 0 || req.DurationHours > 24 {
		return time.Time{}, domain.NewValidationError("durationHours", "duration must be between 0 and 24 hours")
	}
	return date, nil
}

func (uc *lessonUseCase) AddLesson(ctx context.Context, editionID uint, req *domain.LessonRequest) (*domain.Lesson, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	date, err := parseLesson(req)
	if err != nil {
		return nil, err
	}

	edition, err := uc.editions.GetByID(ctx, editionID)
	if err != nil {
		return nil, err
	}
	if edition.Status == domain.EditionArchived {
		return nil, domain.ArchivedError()
	}

	lesson := &domain.Lesson{
		EditionID:     editionID,
		Date:          date,
		DurationHours: req.DurationHours,
		Topic:         req.Topic,
	}
	if err := uc.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// guardMutable loads a lesson that may still be changed: its edition is not archived
// and no attendance has been recorded against it.
func (uc *lessonUseCase) guardMutable(ctx context.Context, tx *gorm.DB, lessonID uint) (*domain.Lesson, error) {
	lessons := uc.lessons.WithTx(tx)

	lesson, err := lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	edition, err := uc.editions.WithTx(tx).GetByID(ctx, lesson.EditionID)
	if err != nil {
		return nil, err
	}
	if edition.Status == domain.EditionArchived {
		return nil, domain.ArchivedError()
	}

	locked, err := lessons.HasAttendance(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, domain.ErrLessonLocked
	}
	return lesson, nil
}

func (uc *lessonUseCase) UpdateLesson(ctx context.Context, lessonID uint, req *domain.LessonRequest) (*domain.Lesson, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	date, err := parseLesson(req)
	if err != nil {
		return nil, err
	}

	var updated *domain.Lesson
	err = uc.tx.Transaction(ctx, func(tx *gorm.DB) error {
		lesson, err := uc.guardMutable(ctx, tx, lessonID)
		if err != nil {
			return err
		}

		lesson.Date = date
		lesson.DurationHours = req.DurationHours
		lesson.Topic = req.Topic
		if err := uc.lessons.WithTx(tx).Update(ctx, lesson); err != nil {
			return err
		}
		updated = lesson
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *lessonUseCase) DeleteLesson(ctx context.Context, lessonID uint) error {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	return uc.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := uc.guardMutable(ctx, tx, lessonID); err != nil {
			return err
		}
		return uc.lessons.WithTx(tx).Delete(ctx, lessonID)
	})
}
