package usecase

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"trainingportal/config"
	"trainingportal/domain"
	"trainingportal/services/notification/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []domain.EmailMessage
}

func (q *fakeQueue) Enqueue(msg domain.EmailMessage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return true
}

func (q *fakeQueue) Messages() []domain.EmailMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.EmailMessage(nil), q.msgs...)
}

type fakeEmailLogs struct {
	mu      sync.Mutex
	entries []domain.EmailLog
}

func (l *fakeEmailLogs) Append(ctx context.Context, entry *domain.EmailLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *fakeEmailLogs) List(ctx context.Context, filter domain.EmailLogFilter) ([]domain.EmailLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.EmailLog(nil), l.entries...), nil
}

func (l *fakeEmailLogs) ByStatus(status domain.EmailStatus) []domain.EmailLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.EmailLog
	for _, e := range l.entries {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}

type fakePreferenceRepo struct {
	mu    sync.Mutex
	rows  map[prefKey]bool
	lists int
	err   error
}

func (r *fakePreferenceRepo) List(ctx context.Context) ([]domain.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.NotificationPreference
	for k, enabled := range r.rows {
		out = append(out, domain.NotificationPreference{Type: k.t, Audience: k.a, Enabled: enabled})
	}
	return out, nil
}

func (r *fakePreferenceRepo) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = map[prefKey]bool{}
	}
	r.rows[prefKey{pref.Type, pref.Audience}] = pref.Enabled
	return nil
}

var errBoom = errors.New("boom")

type testDispatcher struct {
	*Dispatcher
	db    *gorm.DB
	gate  *PreferenceGate
	queue *fakeQueue
	repo  domain.NotificationRepo
}

func newTestDispatcher(t *testing.T, adminEmails ...string) testDispatcher {
	t.Helper()

	db := newTestDB(t)
	log := quietLogger()
	notifications := repository.NewNotificationRepository(db)
	gate := NewPreferenceGate(repository.NewPreferenceRepository(db), log)
	queue := &fakeQueue{}

	return testDispatcher{
		Dispatcher: NewDispatcher(notifications, gate, NewDeduplicator(notifications, log), queue, adminEmails, "TRAINING-PORTAL", log),
		db:         db,
		gate:       gate,
		queue:      queue,
		repo:       notifications,
	}
}

func (td testDispatcher) disable(t *testing.T, nt domain.NotificationType, a domain.Audience) {
	t.Helper()
	if err := td.gate.Set(context.Background(), &domain.NotificationPreference{Type: nt, Audience: a, Enabled: false}); err != nil {
		t.Fatalf("disable %s/%s: %v", nt, a, err)
	}
}

func (td testDispatcher) countNotifications(t *testing.T, nt domain.NotificationType) int64 {
	t.Helper()
	var n int64
	if err := td.db.Model(&domain.Notification{}).Where("type = ?", nt).Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}
