package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Lesson struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EditionID     uint      `gorm:"not null;index" json:"editionId"`
	Date          time.Time `gorm:"not null" json:"date"`
	DurationHours float64   `gorm:"not null" json:"durationHours"`
	Topic         string    `gorm:"type:varchar(255)" json:"topic"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "PRESENT"
	AttendanceAbsent    AttendanceStatus = "ABSENT"
	AttendanceJustified AttendanceStatus = "JUSTIFIED"
)

// Counts reports whether the status counts toward attendance.
func (s AttendanceStatus) Counts() bool {
	return s == AttendancePresent || s == AttendanceJustified
}

type AttendanceRecord struct {
	ID         uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID   uint             `gorm:"not null;uniqueIndex:idx_attendance_lesson_employee" json:"lessonId"`
	EmployeeID uint             `gorm:"not null;uniqueIndex:idx_attendance_lesson_employee;index" json:"employeeId"`
	Status     AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note       *string          `gorm:"type:text" json:"note"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// EmployeeStats is one row of the attendance summary for an edition.
type EmployeeStats struct {
	EmployeeID    uint    `json:"employeeId"`
	EmployeeName  string  `json:"employeeName"`
	TotalLessons  int     `json:"totalLessons"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Justified     int     `json:"justified"`
	Percentage    int     `json:"percentage"`
	TotalHours    float64 `json:"totalHours"`
	AttendedHours float64 `json:"attendedHours"`
	BelowMinimum  bool    `json:"belowMinimum"`
}

type LessonRequest struct {
	Date          string  `json:"date" valid:"required~Date is required"`
	DurationHours float64 `json:"durationHours" valid:"required~Duration is required"`
	Topic         string  `json:"topic"`
}

type AttendanceEntry struct {
	EmployeeID uint    `json:"employeeId" valid:"required~Employee is required"`
	Status     string  `json:"status" valid:"required~Status is required,in(PRESENT|ABSENT|JUSTIFIED)~Invalid attendance status"`
	Note       *string `json:"note"`
}

type AttendanceRequest struct {
	Entries []AttendanceEntry `json:"entries" valid:"required~Entries are required"`
}

type LessonRepo interface {
	WithTx(tx *gorm.DB) LessonRepo
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id uint) (*Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Delete(ctx context.Context, id uint) error
	HasAttendance(ctx context.Context, lessonID uint) (bool, error)
}

type AttendanceRepo interface {
	LessonsByEdition(ctx context.Context, editionID uint) ([]Lesson, error)
	RecordsByEdition(ctx context.Context, editionID uint) ([]AttendanceRecord, error)
	// EmployeeNames maps every registered or recorded employee of the edition to its name.
	EmployeeNames(ctx context.Context, editionID uint) (map[uint]string, error)
	RegisteredEmployees(ctx context.Context, editionID uint) (map[uint]bool, error)
	Upsert(ctx context.Context, records []AttendanceRecord) error
	CountCertificates(ctx context.Context, editionID uint) (int64, error)
}

type LessonUseCase interface {
	AddLesson(ctx context.Context, editionID uint, req *LessonRequest) (*Lesson, error)
	UpdateLesson(ctx context.Context, lessonID uint, req *LessonRequest) (*Lesson, error)
	DeleteLesson(ctx context.Context, lessonID uint) error
}

type AttendanceUseCase interface {
	RecordAttendance(ctx context.Context, lessonID uint, entries []AttendanceEntry) ([]AttendanceRecord, error)
	Stats(ctx context.Context, editionID uint) ([]EmployeeStats, error)
}

// CertificateNotice is returned to the certificate upload screen.
type CertificateNotice struct {
	Notifications []Notification  `json:"notifications"`
	Warnings      []EmployeeStats `json:"warnings"`
}

type CertificateUseCase interface {
	NotifyAvailable(ctx context.Context, editionID uint) (*CertificateNotice, error)
}
