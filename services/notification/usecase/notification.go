package usecase

import (
	"context"
	"time"

	"trainingportal/domain"
)

type notificationUC struct {
	repo    domain.NotificationRepo
	TimeOut time.Duration
}

func NewNotificationUseCase(repo domain.NotificationRepo, timeOut time.Duration) domain.NotificationUseCase {
	return &notificationUC{
		repo:    repo,
		TimeOut: timeOut,
	}
}

func (nuc *notificationUC) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, nuc.TimeOut)
	defer cancel()

	datas, err := nuc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return datas, nil
}

type emailLogUC struct {
	repo    domain.EmailLogRepo
	TimeOut time.Duration
}

func NewEmailLogUseCase(repo domain.EmailLogRepo, timeOut time.Duration) domain.EmailLogUseCase {
	return &emailLogUC{
		repo:    repo,
		TimeOut: timeOut,
	}
}

func (euc *emailLogUC) List(ctx context.Context, filter domain.EmailLogFilter) ([]domain.EmailLog, error) {
	ctx, cancel := context.WithTimeout(ctx, euc.TimeOut)
	defer cancel()

	datas, err := euc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return datas, nil
}
