package usecase

import (
	"context"
	"fmt"
	"time"

	"trainingportal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type editionUseCase struct {
	tx         domain.Transactor
	editions   domain.EditionRepo
	cleanup    domain.EditionCleanupRepo
	files      domain.CertificateFiles
	dispatcher domain.NotificationDispatcher
	log        *logrus.Logger
	TimeOut    time.Duration
}

func NewEditionUseCase(
	tx domain.Transactor,
	editions domain.EditionRepo,
	cleanup domain.EditionCleanupRepo,
	files domain.CertificateFiles,
	dispatcher domain.NotificationDispatcher,
	log *logrus.Logger,
	timeOut time.Duration,
) domain.EditionUseCase {
	return &editionUseCase{
		tx:         tx,
		editions:   editions,
		cleanup:    cleanup,
		files:      files,
		dispatcher: dispatcher,
		log:        log,
		TimeOut:    timeOut,
	}
}

func (uc *editionUseCase) Create(ctx context.Context, req *domain.CreateEditionRequest) (*domain.Edition, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	edition := domain.Edition{
		CourseID: req.CourseID,
		ClientID: req.ClientID,
		Status:   domain.EditionDraft,
		Notes:    req.Notes,
		Version:  1,
	}

	var err error
	if edition.StartDate, err = domain.ParseOptionalInstant("startDate", req.StartDate); err != nil {
		return nil, err
	}
	if edition.EndDate, err = domain.ParseOptionalInstant("endDate", req.EndDate); err != nil {
		return nil, err
	}
	if edition.RegistrationDeadline, err = domain.ParseOptionalInstant("registrationDeadline", req.RegistrationDeadline); err != nil {
		return nil, err
	}
	if err := ValidateEdition(edition); err != nil {
		return nil, err
	}

	if err := uc.editions.Create(ctx, &edition); err != nil {
		return nil, err
	}
	return uc.editions.GetByID(ctx, edition.ID)
}

func (uc *editionUseCase) Get(ctx context.Context, id uint) (*domain.Edition, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	return uc.editions.GetByID(ctx, id)
}

// Update reads the edition fresh inside the transaction, applies the patch and writes it
// with a version check. Notification rows join the same transaction; their emails are
// released only once the commit succeeded.
func (uc *editionUseCase) Update(ctx context.Context, id uint, patch domain.EditionPatch) (*domain.EditionUpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	var (
		result    *domain.EditionUpdateResult
		emissions []domain.Emission
	)

	err := uc.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := uc.editions.WithTx(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next, desc, err := ApplyUpdate(*current, patch)
		if err != nil {
			return err
		}

		if desc.ClientChanged && next.ClientID != nil {
			if _, err := repo.GetClient(ctx, *next.ClientID); err != nil {
				return err
			}
		}

		if err := repo.CompareAndSwap(ctx, current.Version, &next); err != nil {
			return err
		}

		saved, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		emissions = uc.dispatcher.OnEditionTransition(ctx, tx, desc, saved, saved.Client)
		result = &domain.EditionUpdateResult{
			Edition:       saved,
			Notifications: domain.NotificationsOf(emissions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.dispatcher.Release(emissions)
	uc.log.WithFields(logrus.Fields{
		"edition_id":    id,
		"notifications": len(emissions),
	}).Info("edition updated")
	return result, nil
}

// Delete releases certificate files, removes every dependent row and the edition itself.
// A PUBLISHED edition produces an EDITION_CANCELLED notice.
func (uc *editionUseCase) Delete(ctx context.Context, id uint) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	var emissions []domain.Emission
	var released []string

	err := uc.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := uc.editions.WithTx(tx)
		cleanup := uc.cleanup.WithTx(tx)
		released = released[:0]

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		paths, err := cleanup.CertificateFiles(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range paths {
			if err := uc.files.Release(ctx, p); err != nil {
				return fmt.Errorf("edition %d not deleted: %w", id, err)
			}
			released = append(released, p)
		}

		if err := cleanup.PurgeDependents(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		emissions = uc.dispatcher.OnEditionTransition(ctx, tx, Removal(*current), current, current.Client)
		return nil
	})
	if err != nil {
		if len(released) > 0 {
			// rows rolled back, files are gone
			uc.log.WithFields(logrus.Fields{
				"edition_id":     id,
				"released_files": released,
			}).WithError(err).Error("edition delete failed after certificate files were released")
		}
		return nil, err
	}

	uc.dispatcher.Release(emissions)
	uc.log.WithField("edition_id", id).Info("edition deleted")
	return domain.NotificationsOf(emissions), nil
}
