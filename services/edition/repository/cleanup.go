package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trainingportal/domain"

	"gorm.io/gorm"
)

type editionCleanupRepository struct {
	db *gorm.DB
}

func NewEditionCleanupRepository(db *gorm.DB) domain.EditionCleanupRepo {
	return &editionCleanupRepository{db: db}
}

func (r *editionCleanupRepository) WithTx(tx *gorm.DB) domain.EditionCleanupRepo {
	return &editionCleanupRepository{db: tx}
}

func (r *editionCleanupRepository) CertificateFiles(ctx context.Context, editionID uint) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).
		Model(&domain.Certificate{}).
		Where("edition_id = ?", editionID).
		Pluck("file_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("could not list certificates of edition %d: %w", editionID, err)
	}
	return paths, nil
}

// PurgeDependents deletes, in dependency order, every row that references the edition.
func (r *editionCleanupRepository) PurgeDependents(ctx context.Context, editionID uint) error {
	db := r.db.WithContext(ctx)
	lessonIDs := db.Model(&domain.Lesson{}).Select("id").Where("edition_id = ?", editionID)

	steps := []struct {
		name string
		run  func() error
	}{
		{"certificates", func() error {
			return db.Where("edition_id = ?", editionID).Delete(&domain.Certificate{}).Error
		}},
		{"attendance", func() error {
			return db.Where("lesson_id IN (?)", lessonIDs).Delete(&domain.AttendanceRecord{}).Error
		}},
		{"lessons", func() error {
			return db.Where("edition_id = ?", editionID).Delete(&domain.Lesson{}).Error
		}},
		{"registrations", func() error {
			return db.Where("edition_id = ?", editionID).Delete(&domain.Registration{}).Error
		}},
		{"notifications", func() error {
			return db.Where("edition_id = ?", editionID).Delete(&domain.Notification{}).Error
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("could not delete %s of edition %d: %w", step.name, editionID, err)
		}
	}
	return nil
}

type localCertificateFiles struct {
	baseDir string
}

// NewLocalCertificateFiles releases certificate PDFs stored under baseDir.
func NewLocalCertificateFiles(baseDir string) domain.CertificateFiles {
	return &localCertificateFiles{baseDir: baseDir}
}

func (f *localCertificateFiles) Release(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// rooting the relative path keeps it inside baseDir
	full := filepath.Join(f.baseDir, filepath.Clean("/"+path))

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not release certificate file %s: %w", path, err)
	}
	return nil
}
