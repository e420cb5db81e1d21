package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"trainingportal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GetDatabaseURL builds the database connection string.
func GetDatabaseURL() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_DATABASE"))
	return dsn
}

// GormConfig is shared by the Postgres boot path and the SQLite test databases.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// BootDB initializes the database connection and runs migrations.
func BootDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(GetDatabaseURL()), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		return db, err
	}

	GetLogrusInstance().Info("DB initialized")
	return db, nil
}

// AutoMigrate creates the schema and seeds the notification preference matrix.
func AutoMigrate(db *gorm.DB) error {
	// tables without foreign keys first
	if err := db.AutoMigrate(
		&domain.Course{},
		&domain.Client{},
		&domain.NotificationPreference{},
		&domain.Notification{},
		&domain.EmailLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate base tables: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Employee{},
		&domain.Edition{},
		&domain.Registration{},
		&domain.Lesson{},
		&domain.AttendanceRecord{},
		&domain.Certificate{},
	); err != nil {
		return fmt.Errorf("failed to migrate relational tables: %w", err)
	}

	return SeedPreferences(context.Background(), db)
}

// SeedPreferences inserts an enabled row for every (type, audience) pair that is missing.
// Existing rows keep the administrator's choice.
func SeedPreferences(ctx context.Context, db *gorm.DB) error {
	rows := make([]domain.NotificationPreference, 0, len(domain.NotificationTypes)*len(domain.Audiences))
	for _, t := range domain.NotificationTypes {
		for _, a := range domain.Audiences {
			rows = append(rows, domain.NotificationPreference{Type: t, Audience: a, Enabled: true})
		}
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed notification preferences: %w", err)
	}
	return nil
}
