package usecase

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"trainingportal/config"
	"trainingportal/domain"
	"trainingportal/services/attendance/repository"
	editionRepository "trainingportal/services/edition/repository"
	notificationRepository "trainingportal/services/notification/repository"
	notificationUsecase "trainingportal/services/notification/usecase"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type discardQueue struct {
	count int
}

func (q *discardQueue) Enqueue(msg domain.EmailMessage) bool {
	q.count++
	return true
}

type attendanceFixture struct {
	db           *gorm.DB
	attendance   domain.AttendanceUseCase
	certificates domain.CertificateUseCase
	queue        *discardQueue
	edition      domain.Edition
	lessons      []domain.Lesson
	employees    []domain.Employee
}

func newAttendanceFixture(t *testing.T, courseMinimum *int) *attendanceFixture {
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

	log := logrus.New()
	log.SetOutput(io.Discard)

	email := "hr@acme.test"
	client := domain.Client{Name: "Acme", Email: &email}
	course := domain.Course{Title: "Fire safety", MinAttendancePercentage: courseMinimum}
	must(t, db.Create(&client).Error)
	must(t, db.Create(&course).Error)

	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	f := &attendanceFixture{db: db, queue: &discardQueue{}}
	f.edition = domain.Edition{CourseID: course.ID, ClientID: &client.ID, Status: domain.EditionClosed, StartDate: &start, EndDate: &end, Version: 1}
	must(t, db.Create(&f.edition).Error)

	for i := 0; i < 3; i++ {
		f.lessons = append(f.lessons, domain.Lesson{EditionID: f.edition.ID, Date: start.AddDate(0, 0, i), DurationHours: 2})
	}
	must(t, db.Create(&f.lessons).Error)

	f.employees = []domain.Employee{{ClientID: client.ID, Name: "Ada"}, {ClientID: client.ID, Name: "Grace"}}
	must(t, db.Create(&f.employees).Error)
	for _, emp := range f.employees {
		must(t, db.Create(&domain.Registration{EditionID: f.edition.ID, EmployeeID: emp.ID, Status: domain.RegistrationConfirmed}).Error)
	}

	notifications := notificationRepository.NewNotificationRepository(db)
	gate := notificationUsecase.NewPreferenceGate(notificationRepository.NewPreferenceRepository(db), log)
	dispatcher := notificationUsecase.NewDispatcher(notifications, gate, notificationUsecase.NewDeduplicator(notifications, log), f.queue, nil, "TRAINING-PORTAL", log)

	editions := editionRepository.NewEditionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	f.attendance = NewAttendanceUseCase(editions, editionRepository.NewLessonRepository(db), attendanceRepo, 80, 5*time.Second)
	f.certificates = NewCertificateUseCase(editionRepository.NewTransactor(db), editions, attendanceRepo, f.attendance, dispatcher, log, 5*time.Second)
	return f
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (f *attendanceFixture) record(t *testing.T, lesson int, entries ...domain.AttendanceEntry) []domain.AttendanceRecord {
	t.Helper()
	records, err := f.attendance.RecordAttendance(context.Background(), f.lessons[lesson].ID, entries)
	if err != nil {
		t.Fatalf("record attendance: %v", err)
	}
	return records
}

func (f *attendanceFixture) entry(employee int, status domain.AttendanceStatus) domain.AttendanceEntry {
	return domain.AttendanceEntry{EmployeeID: f.employees[employee].ID, Status: string(status)}
}

func TestStatsFromRecordedAttendance(t *testing.T) {
	f := newAttendanceFixture(t, nil)

	f.record(t, 0, f.entry(0, domain.AttendancePresent), f.entry(1, domain.AttendancePresent))
	f.record(t, 1, f.entry(0, domain.AttendancePresent), f.entry(1, domain.AttendanceJustified))
	f.record(t, 2, f.entry(0, domain.AttendancePresent), f.entry(1, domain.AttendancePresent))
	// correction overwrites the first record
	records := f.record(t, 2, f.entry(0, domain.AttendanceAbsent))
	if len(records) != 2 {
		t.Fatalf("expected 2 records for the lesson, got %d", len(records))
	}

	stats, err := f.attendance.Stats(context.Background(), f.edition.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}

	ada, grace := stats[0], stats[1]
	if ada.EmployeeName != "Ada" || ada.Percentage != 67 || !ada.BelowMinimum || ada.AttendedHours != 4 || ada.TotalHours != 6 {
		t.Fatalf("unexpected stats for Ada %+v", ada)
	}
	if grace.Percentage != 100 || grace.Justified != 1 || grace.BelowMinimum {
		t.Fatalf("unexpected stats for Grace %+v", grace)
	}
}

func TestStatsUsesCourseMinimum(t *testing.T) {
	minimum := 60
	f := newAttendanceFixture(t, &minimum)

	f.record(t, 0, f.entry(0, domain.AttendancePresent))
	f.record(t, 1, f.entry(0, domain.AttendancePresent))
	f.record(t, 2, f.entry(0, domain.AttendanceAbsent))

	stats, err := f.attendance.Stats(context.Background(), f.edition.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[0].Percentage != 67 || stats[0].BelowMinimum {
		t.Fatalf("course minimum not applied: %+v", stats[0])
	}
	// registered but never recorded
	if stats[1].Percentage != 0 || !stats[1].BelowMinimum {
		t.Fatalf("unexpected stats %+v", stats[1])
	}
}

func TestRecordAttendanceValidation(t *testing.T) {
	f := newAttendanceFixture(t, nil)
	ctx := context.Background()

	if _, err := f.attendance.RecordAttendance(ctx, f.lessons[0].ID, nil); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	dup := []domain.AttendanceEntry{f.entry(0, domain.AttendancePresent), f.entry(0, domain.AttendanceAbsent)}
	if _, err := f.attendance.RecordAttendance(ctx, f.lessons[0].ID, dup); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.attendance.RecordAttendance(ctx, 999, []domain.AttendanceEntry{f.entry(0, domain.AttendancePresent)}); !errors.Is(err, domain.ErrLessonNotFound) {
		t.Fatalf("expected lesson not found, got %v", err)
	}

	if _, err := f.attendance.RecordAttendance(ctx, f.lessons[0].ID, []domain.AttendanceEntry{{EmployeeID: 999, Status: string(domain.AttendancePresent)}}); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for unknown employee, got %v", err)
	}
	outsider := domain.Employee{ClientID: f.employees[0].ClientID, Name: "Linus"}
	must(t, f.db.Create(&outsider).Error)
	if _, err := f.attendance.RecordAttendance(ctx, f.lessons[0].ID, []domain.AttendanceEntry{{EmployeeID: outsider.ID, Status: string(domain.AttendancePresent)}}); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for unregistered employee, got %v", err)
	}
	stats, err := f.attendance.Stats(ctx, f.edition.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("rejected entries leaked into stats: %+v", stats)
	}

	must(t, f.db.Model(&domain.Edition{}).Where("id = ?", f.edition.ID).Update("status", domain.EditionArchived).Error)
	if _, err := f.attendance.RecordAttendance(ctx, f.lessons[0].ID, []domain.AttendanceEntry{f.entry(0, domain.AttendancePresent)}); !errors.Is(err, domain.ErrEditionArchived) {
		t.Fatalf("expected archived error, got %v", err)
	}
}

func TestNotifyCertificatesAvailable(t *testing.T) {
	f := newAttendanceFixture(t, nil)
	ctx := context.Background()

	if _, err := f.certificates.NotifyAvailable(ctx, f.edition.ID); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error without certificates, got %v", err)
	}

	f.record(t, 0, f.entry(0, domain.AttendancePresent), f.entry(1, domain.AttendancePresent))
	f.record(t, 1, f.entry(0, domain.AttendanceAbsent), f.entry(1, domain.AttendancePresent))
	f.record(t, 2, f.entry(0, domain.AttendanceAbsent), f.entry(1, domain.AttendancePresent))
	for _, emp := range f.employees {
		must(t, f.db.Create(&domain.Certificate{EditionID: f.edition.ID, EmployeeID: emp.ID, FilePath: "cert.pdf"}).Error)
	}

	notice, err := f.certificates.NotifyAvailable(ctx, f.edition.ID)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(notice.Notifications) != 1 || notice.Notifications[0].Type != domain.NotificationCertificatesAvailable {
		t.Fatalf("unexpected notifications %+v", notice.Notifications)
	}
	if len(notice.Warnings) != 1 || notice.Warnings[0].EmployeeName != "Ada" {
		t.Fatalf("unexpected warnings %+v", notice.Warnings)
	}
	if f.queue.count != 1 {
		t.Fatalf("expected one client email, got %d", f.queue.count)
	}

	again, err := f.certificates.NotifyAvailable(ctx, f.edition.ID)
	if err != nil {
		t.Fatalf("notify again: %v", err)
	}
	if len(again.Notifications) != 0 {
		t.Fatal("same certificate set must not be announced twice")
	}
}
