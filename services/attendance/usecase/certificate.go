package usecase

import (
	"context"
	"time"

	"trainingportal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type certificateUseCase struct {
	tx         domain.Transactor
	editions   domain.EditionRepo
	attendance domain.AttendanceRepo
	stats      domain.AttendanceUseCase
	dispatcher domain.NotificationDispatcher
	log        *logrus.Logger
	TimeOut    time.Duration
}

func NewCertificateUseCase(
	tx domain.Transactor,
	editions domain.EditionRepo,
	attendance domain.AttendanceRepo,
	stats domain.AttendanceUseCase,
	dispatcher domain.NotificationDispatcher,
	log *logrus.Logger,
	timeOut time.Duration,
) domain.CertificateUseCase {
	return &certificateUseCase{
		tx:         tx,
		editions:   editions,
		attendance: attendance,
		stats:      stats,
		dispatcher: dispatcher,
		log:        log,
		TimeOut:    timeOut,
	}
}

// NotifyAvailable announces the uploaded certificates of an edition. The warnings list
// employees under the attendance minimum; they are advisory and never block the notice.
func (uc *certificateUseCase) NotifyAvailable(ctx context.Context, editionID uint) (*domain.CertificateNotice, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	count, err := uc.attendance.CountCertificates(ctx, editionID)
	if err != nil {
		return nil, err
	}

	var emissions []domain.Emission
	err = uc.tx.Transaction(ctx, func(tx *gorm.DB) error {
		edition, err := uc.editions.WithTx(tx).GetByID(ctx, editionID)
		if err != nil {
			return err
		}
		if count == 0 {
			return domain.NewValidationError("certificates", "no certificates uploaded for this edition")
		}
		emissions = uc.dispatcher.NotifyCertificatesAvailable(ctx, tx, edition, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Release(emissions)

	stats, err := uc.stats.Stats(ctx, editionID)
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"edition_id":   editionID,
		"certificates": count,
		"warnings":     len(BelowMinimum(stats)),
	}).Info("certificates announced")

	return &domain.CertificateNotice{
		Notifications: domain.NotificationsOf(emissions),
		Warnings:      BelowMinimum(stats),
	}, nil
}
