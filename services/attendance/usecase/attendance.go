package usecase

import (
	"context"
	"fmt"
	"time"

	"trainingportal/domain"
)

type attendanceUseCase struct {
	editions          domain.EditionRepo
	lessons           domain.LessonRepo
	attendance        domain.AttendanceRepo
	minimumPercentage int
	TimeOut           time.Duration
}

func NewAttendanceUseCase(
	editions domain.EditionRepo,
	lessons domain.LessonRepo,
	attendance domain.AttendanceRepo,
	minimumPercentage int,
	timeOut time.Duration,
) domain.AttendanceUseCase {
	return &attendanceUseCase{
		editions:          editions,
		lessons:           lessons,
		attendance:        attendance,
		minimumPercentage: minimumPercentage,
		TimeOut:           timeOut,
	}
}

func (uc *attendanceUseCase) RecordAttendance(ctx context.Context, lessonID uint, entries []domain.AttendanceEntry) ([]domain.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	if len(entries) == 0 {
		return nil, domain.NewValidationError("entries", "at least one attendance entry is required")
	}

	lesson, err := uc.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	edition, err := uc.editions.GetByID(ctx, lesson.EditionID)
	if err != nil {
		return nil, err
	}
	if edition.Status == domain.EditionArchived {
		return nil, domain.ArchivedError()
	}
	registered, err := uc.attendance.RegisteredEmployees(ctx, edition.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(entries))
	records := make([]domain.AttendanceRecord, 0, len(entries))
	for i, e := range entries {
		status := domain.AttendanceStatus(e.Status)
		switch status {
		case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceJustified:
		default:
			return nil, domain.NewValidationError(fmt.Sprintf("entries[%d].status", i), "invalid attendance status")
		}
		if e.EmployeeID == 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("entries[%d].employeeId", i), "employee is required")
		}
		if seen[e.EmployeeID] {
			return nil, domain.NewValidationError(fmt.Sprintf("entries[%d].employeeId", i), "employee listed twice")
		}
		if !registered[e.EmployeeID] {
			return nil, domain.NewValidationError(fmt.Sprintf("entries[%d].employeeId", i), "employee is not registered for this edition")
		}
		seen[e.EmployeeID] = true

		records = append(records, domain.AttendanceRecord{
			LessonID:   lessonID,
			EmployeeID: e.EmployeeID,
			Status:     status,
			Note:       e.Note,
		})
	}

	if err := uc.attendance.Upsert(ctx, records); err != nil {
		return nil, err
	}

	all, err := uc.attendance.RecordsByEdition(ctx, lesson.EditionID)
	if err != nil {
		return nil, err
	}
	saved := make([]domain.AttendanceRecord, 0, len(records))
	for _, r := range all {
		if r.LessonID == lessonID {
			saved = append(saved, r)
		}
	}
	return saved, nil
}

func (uc *attendanceUseCase) Stats(ctx context.Context, editionID uint) ([]domain.EmployeeStats, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.TimeOut)
	defer cancel()

	edition, err := uc.editions.GetByID(ctx, editionID)
	if err != nil {
		return nil, err
	}

	minimum := uc.minimumPercentage
	if edition.Course != nil && edition.Course.MinAttendancePercentage != nil {
		minimum = *edition.Course.MinAttendancePercentage
	}

	lessons, err := uc.attendance.LessonsByEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	records, err := uc.attendance.RecordsByEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	names, err := uc.attendance.EmployeeNames(ctx, editionID)
	if err != nil {
		return nil, err
	}

	return ComputeStats(lessons, records, names, minimum), nil
}
