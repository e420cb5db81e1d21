package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trainingportal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultSendTimeout = 30 * time.Second
	logWriteTimeout    = 5 * time.Second
)

// Mailer is an in-memory, best-effort outbound queue consumed by a fixed worker pool.
// Every attempt is appended to the email log; nothing is retried and a crash loses
// whatever is still queued.
type Mailer struct {
	sender      domain.EmailSender
	logs        domain.EmailLogRepo
	log         *logrus.Logger
	workers     int
	SendTimeout time.Duration

	queue    chan domain.EmailMessage
	quit     chan struct{}
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	start    sync.Once
	stopOnce sync.Once
}

func NewMailer(sender domain.EmailSender, logs domain.EmailLogRepo, log *logrus.Logger, workers, queueSize int) *Mailer {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Mailer{
		sender:      sender,
		logs:        logs,
		log:         log,
		workers:     workers,
		SendTimeout: defaultSendTimeout,
		queue:       make(chan domain.EmailMessage, queueSize),
		quit:        make(chan struct{}),
	}
}

func (m *Mailer) Start() {
	m.start.Do(func() {
		for i := 0; i < m.workers; i++ {
			m.wg.Add(1)
			go m.work()
		}
		m.log.WithField("workers", m.workers).Info("mailer started")
	})
}

// Enqueue never blocks. A full or stopped queue records the message as FAILED.
func (m *Mailer) Enqueue(msg domain.EmailMessage) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		m.record(msg, domain.EmailFailed, "mail queue stopped")
		return false
	}

	select {
	case m.queue <- msg:
		return true
	default:
		m.record(msg, domain.EmailFailed, "mail queue full")
		return false
	}
}

// Stop closes the queue and waits for the workers to drain it. When ctx expires first
// the workers finish their current send and whatever is left is logged as PENDING.
func (m *Mailer) Stop(ctx context.Context) {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.queue)
		m.mu.Unlock()

		done := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			close(m.quit)
			<-done
		}

		pending := 0
		for msg := range m.queue {
			m.record(msg, domain.EmailPending, "mailer stopped before delivery")
			pending++
		}
		m.log.WithField("pending", pending).Info("mailer stopped")
	})
}

func (m *Mailer) work() {
	defer m.wg.Done()
	for {
		select {
		case <-m.quit:
			return
		case msg, ok := <-m.queue:
			if !ok {
				return
			}
			select {
			case <-m.quit:
				m.record(msg, domain.EmailPending, "mailer stopped before delivery")
				return
			default:
			}
			m.deliver(msg)
		}
	}
}

func (m *Mailer) deliver(msg domain.EmailMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), m.SendTimeout)
	defer cancel()

	if err := m.send(ctx, msg); err != nil {
		m.log.WithFields(logrus.Fields{
			"recipient": msg.To,
			"type":      msg.Type,
		}).WithError(err).Warn("email not delivered")
		m.record(msg, domain.EmailFailed, err.Error())
		return
	}
	m.record(msg, domain.EmailSent, "")
}

func (m *Mailer) send(ctx context.Context, msg domain.EmailMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email transport panic: %v", r)
		}
	}()
	return m.sender.Send(ctx, msg)
}

func (m *Mailer) record(msg domain.EmailMessage, status domain.EmailStatus, reason string) {
	entry := domain.EmailLog{
		PublicID:       uuid.New(),
		RecipientEmail: msg.To,
		RecipientName:  msg.ToName,
		Type:           msg.Type,
		Subject:        msg.Subject,
		Status:         status,
		EditionID:      msg.EditionID,
		SentAt:         time.Now().UTC(),
	}
	if reason != "" {
		entry.ErrorMessage = &reason
	}

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()
	if err := m.logs.Append(ctx, &entry); err != nil {
		m.log.WithFields(logrus.Fields{
			"recipient": msg.To,
			"status":    status,
		}).WithError(err).Error("email log not written")
	}
}
