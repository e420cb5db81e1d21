package repository

import (
	"context"
	"fmt"

	"trainingportal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) domain.AttendanceRepo {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) LessonsByEdition(ctx context.Context, editionID uint) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	err := r.db.WithContext(ctx).
		Where("edition_id = ?", editionID).
		Order("date ASC").
		Order("id ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("could not get lessons of edition %d: %w", editionID, err)
	}
	return lessons, nil
}

func (r *attendanceRepository) RecordsByEdition(ctx context.Context, editionID uint) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Select("attendance_records.*").
		Joins("JOIN lessons ON lessons.id = attendance_records.lesson_id").
		Where("lessons.edition_id = ?", editionID).
		Order("attendance_records.employee_id ASC").
		Order("attendance_records.lesson_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("could not get attendance of edition %d: %w", editionID, err)
	}
	return records, nil
}

func (r *attendanceRepository) EmployeeNames(ctx context.Context, editionID uint) (map[uint]string, error) {
	db := r.db.WithContext(ctx)

	registered := db.Model(&domain.Registration{}).
		Select("employee_id").
		Where("edition_id = ?", editionID)
	recorded := db.Model(&domain.AttendanceRecord{}).
		Select("attendance_records.employee_id").
		Joins("JOIN lessons ON lessons.id = attendance_records.lesson_id").
		Where("lessons.edition_id = ?", editionID)

	var rows []struct {
		ID   uint
		Name string
	}
	err := db.Model(&domain.Employee{}).
		Select("id, name").
		Where("id IN (?) OR id IN (?)", registered, recorded).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get employees of edition %d: %w", editionID, err)
	}

	names := make(map[uint]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// RegisteredEmployees returns the ids of existing employees holding a registration for the edition.
func (r *attendanceRepository) RegisteredEmployees(ctx context.Context, editionID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.Registration{}).
		Joins("JOIN employees ON employees.id = registrations.employee_id").
		Where("registrations.edition_id = ?", editionID).
		Pluck("registrations.employee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("could not get registrations of edition %d: %w", editionID, err)
	}

	registered := make(map[uint]bool, len(ids))
	for _, id := range ids {
		registered[id] = true
	}
	return registered, nil
}

// Upsert writes one record per (lesson, employee), replacing status and note of an existing one.
func (r *attendanceRepository) Upsert(ctx context.Context, records []domain.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "note", "updated_at"}),
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("could not save attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepository) CountCertificates(ctx context.Context, editionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Certificate{}).
		Where("edition_id = ?", editionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("could not count certificates of edition %d: %w", editionID, err)
	}
	return count, nil
}
