package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"trainingportal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deduplicator guards against firing the same notification twice for one transition.
// The dispatch rules only match on a status or date edge; the fingerprint additionally
// covers retries of an identical update, backed by the unique index on notifications.
type Deduplicator struct {
	repo domain.NotificationRepo
	log  *logrus.Logger
}

func NewDeduplicator(repo domain.NotificationRepo, log *logrus.Logger) *Deduplicator {
	return &Deduplicator{repo: repo, log: log}
}

// ShouldFire reports false when a notification with the same fingerprint already exists.
// A failed lookup lets the notification through; the unique index rejects a real duplicate.
func (d *Deduplicator) ShouldFire(ctx context.Context, tx *gorm.DB, editionID *uint, t domain.NotificationType, fingerprint string) bool {
	repo := d.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	exists, err := repo.Exists(ctx, editionID, t, fingerprint)
	if err != nil {
		d.log.WithField("type", t).WithError(err).Warn("dedup lookup failed")
		return true
	}
	return !exists
}

// Fingerprint hashes the parts that identify one qualifying transition.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// TransitionFingerprint identifies an edition transition by its edge, the resulting
// version and the normalized dates.
func TransitionFingerprint(t domain.NotificationType, desc domain.TransitionDescriptor, edition *domain.Edition) string {
	return Fingerprint(
		string(t),
		strconv.FormatUint(uint64(desc.EditionID), 10),
		strconv.Itoa(desc.Version),
		string(desc.StatusBefore),
		string(desc.StatusAfter),
		strconv.FormatBool(desc.Deleted),
		instantKey(edition.StartDate),
		instantKey(edition.EndDate),
		instantKey(edition.RegistrationDeadline),
	)
}

func instantKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
