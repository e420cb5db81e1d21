package domain

import "time"

type Course struct {
	ID                      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title                   string    `gorm:"type:varchar(200);not null" json:"title"`
	Category                string    `gorm:"type:varchar(100)" json:"category"`
	MinAttendancePercentage *int      `json:"minAttendancePercentage"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type Client struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name" valid:"required~Name is required"`
	Email     *string   `gorm:"type:varchar(255)" json:"email" valid:"email~Invalid email format,optional"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// HasEmail reports whether the client can receive outbound email.
func (c *Client) HasEmail() bool {
	return c != nil && c.Email != nil && *c.Email != ""
}

type Employee struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID  uint      `gorm:"not null;index" json:"clientId"`
	Client    *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Email     *string   `gorm:"type:varchar(255)" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type RegistrationStatus string

const (
	RegistrationDraft     RegistrationStatus = "DRAFT"
	RegistrationSubmitted RegistrationStatus = "SUBMITTED"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
)

// Registration associates an employee with an edition.
type Registration struct {
	ID         uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	EditionID  uint               `gorm:"not null;uniqueIndex:idx_registration_employee" json:"editionId"`
	EmployeeID uint               `gorm:"not null;uniqueIndex:idx_registration_employee" json:"employeeId"`
	Employee   *Employee          `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Status     RegistrationStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Certificate points at an uploaded PDF; the file itself lives outside the database.
type Certificate struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EditionID  uint      `gorm:"not null;index" json:"editionId"`
	EmployeeID uint      `gorm:"not null;index" json:"employeeId"`
	FilePath   string    `gorm:"type:varchar(500);not null" json:"filePath"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
