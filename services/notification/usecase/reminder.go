package usecase

import (
	"context"
	"time"

	"trainingportal/domain"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const reminderRunTimeout = 4 * time.Minute

// ReminderJob warns about registration deadlines of published editions.
type ReminderJob struct {
	tx         domain.Transactor
	editions   domain.EditionRepo
	dispatcher *Dispatcher
	log        *logrus.Logger
	Now        func() time.Time
}

func NewReminderJob(tx domain.Transactor, editions domain.EditionRepo, dispatcher *Dispatcher, log *logrus.Logger) *ReminderJob {
	return &ReminderJob{
		tx:         tx,
		editions:   editions,
		dispatcher: dispatcher,
		log:        log,
		Now:        time.Now,
	}
}

type reminderWindow struct {
	t        domain.NotificationType
	from, to time.Duration
}

var reminderWindows = []reminderWindow{
	{t: domain.NotificationReminderDeadline7D, from: 6 * 24 * time.Hour, to: 7 * 24 * time.Hour},
	{t: domain.NotificationReminderDeadline1D, from: 0, to: 24 * time.Hour},
}

// Run returns how many reminders were emitted.
func (j *ReminderJob) Run(ctx context.Context) int {
	now := j.Now().UTC()
	emitted := 0

	for _, w := range reminderWindows {
		editions, err := j.editions.ListPublishedWithDeadlineBetween(ctx, now.Add(w.from), now.Add(w.to))
		if err != nil {
			j.log.WithField("type", w.t).WithError(err).Error("reminder scan failed")
			continue
		}

		for i := range editions {
			edition := &editions[i]

			var emissions []domain.Emission
			err := j.tx.Transaction(ctx, func(tx *gorm.DB) error {
				emissions = j.dispatcher.RemindDeadline(ctx, tx, edition, w.t)
				return nil
			})
			if err != nil {
				j.log.WithFields(logrus.Fields{
					"type":       w.t,
					"edition_id": edition.ID,
				}).WithError(err).Error("reminder not committed")
				continue
			}

			j.dispatcher.Release(emissions)
			emitted += len(emissions)
		}
	}

	j.log.WithField("emitted", emitted).Info("deadline reminders processed")
	return emitted
}

// StartReminderCron schedules the job; overlapping runs are skipped.
func StartReminderCron(spec string, job *ReminderJob, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderRunTimeout)
		defer cancel()
		job.Run(ctx)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("schedule", spec).Info("deadline reminder cron started")
	c.Start()
	return c, nil
}
