package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"trainingportal/domain"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dispatcher turns edition transitions into in-portal notifications and outbound emails.
// It never fails its caller: every error is logged and the emission is dropped.
type Dispatcher struct {
	notifications domain.NotificationRepo
	gate          *PreferenceGate
	dedup         *Deduplicator
	queue         domain.MailQueue
	adminEmails   []string
	appName       string
	log           *logrus.Logger
}

func NewDispatcher(
	notifications domain.NotificationRepo,
	gate *PreferenceGate,
	dedup *Deduplicator,
	queue domain.MailQueue,
	adminEmails []string,
	appName string,
	log *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		gate:          gate,
		dedup:         dedup,
		queue:         queue,
		adminEmails:   adminEmails,
		appName:       appName,
		log:           log,
	}
}

type event struct {
	Type        domain.NotificationType
	Edition     *domain.Edition
	Client      *domain.Client
	Fingerprint string
	Extra       map[string]string
}

// triggeredTypes evaluates the transition rules in their fixed order.
func triggeredTypes(desc domain.TransitionDescriptor) []domain.NotificationType {
	if desc.Deleted {
		if desc.StatusBefore == domain.EditionPublished {
			return []domain.NotificationType{domain.NotificationEditionCancelled}
		}
		return nil
	}

	var types []domain.NotificationType
	if desc.StatusBefore != domain.EditionPublished && desc.StatusAfter == domain.EditionPublished {
		types = append(types, domain.NotificationNewEdition)
	}
	if desc.StatusAfter == domain.EditionPublished && desc.DatesChanged {
		types = append(types, domain.NotificationEditionDatesChanged)
	}
	if desc.StatusBefore == domain.EditionPublished &&
		(desc.StatusAfter == domain.EditionClosed || desc.StatusAfter == domain.EditionArchived) {
		types = append(types, domain.NotificationEditionCancelled)
	}
	return types
}

func (d *Dispatcher) OnEditionTransition(ctx context.Context, tx *gorm.DB, desc domain.TransitionDescriptor, edition *domain.Edition, client *domain.Client) []domain.Emission {
	var emissions []domain.Emission
	for _, t := range triggeredTypes(desc) {
		ev := event{
			Type:        t,
			Edition:     edition,
			Client:      client,
			Fingerprint: TransitionFingerprint(t, desc, edition),
		}
		if em, ok := d.emit(ctx, tx, ev); ok {
			emissions = append(emissions, em)
		}
	}
	return emissions
}

func (d *Dispatcher) NotifyCertificatesAvailable(ctx context.Context, tx *gorm.DB, edition *domain.Edition, certificates int64) []domain.Emission {
	count := strconv.FormatInt(certificates, 10)
	ev := event{
		Type:    domain.NotificationCertificatesAvailable,
		Edition: edition,
		Client:  edition.Client,
		Fingerprint: Fingerprint(
			string(domain.NotificationCertificatesAvailable),
			strconv.FormatUint(uint64(edition.ID), 10),
			count,
		),
		Extra: map[string]string{"certificates": count},
	}
	if em, ok := d.emit(ctx, tx, ev); ok {
		return []domain.Emission{em}
	}
	return nil
}

// RemindDeadline fires once per edition, reminder type and registration deadline value.
func (d *Dispatcher) RemindDeadline(ctx context.Context, tx *gorm.DB, edition *domain.Edition, t domain.NotificationType) []domain.Emission {
	ev := event{
		Type:    t,
		Edition: edition,
		Client:  edition.Client,
		Fingerprint: Fingerprint(
			string(t),
			strconv.FormatUint(uint64(edition.ID), 10),
			instantKey(edition.RegistrationDeadline),
		),
	}
	if em, ok := d.emit(ctx, tx, ev); ok {
		return []domain.Emission{em}
	}
	return nil
}

func (d *Dispatcher) Release(emissions []domain.Emission) {
	if d.queue == nil {
		return
	}
	for _, em := range emissions {
		for _, msg := range em.Emails {
			d.queue.Enqueue(msg)
		}
	}
}

func (d *Dispatcher) emit(ctx context.Context, tx *gorm.DB, ev event) (em domain.Emission, ok bool) {
	fields := logrus.Fields{
		"type":       ev.Type,
		"edition_id": ev.Edition.ID,
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(fields).Errorf("dispatch panic: %v", r)
			em, ok = domain.Emission{}, false
		}
	}()

	clientOn := d.gate.IsEnabled(ctx, ev.Type, domain.AudienceClient)
	adminOn := d.gate.IsEnabled(ctx, ev.Type, domain.AudienceAdmin)
	if !clientOn && !adminOn {
		d.log.WithFields(fields).Debug("notification disabled by preferences")
		return em, false
	}

	c := render(ev.Type, ev.Edition, d.appName, ev.Extra)
	n := domain.Notification{
		PublicID:    uuid.New(),
		Type:        ev.Type,
		Title:       c.Title,
		Message:     c.Message,
		EditionID:   &ev.Edition.ID,
		ClientID:    ev.Edition.ClientID,
		IsGlobal:    ev.Edition.ClientID == nil && clientOn,
		AdminOnly:   !clientOn,
		Fingerprint: ev.Fingerprint,
		Payload:     d.payload(ev),
	}

	if err := d.persist(ctx, tx, &n); err != nil {
		if errors.Is(err, errAlreadyFired) || errors.Is(err, domain.ErrDuplicate) {
			d.log.WithFields(fields).Debug("notification already fired")
			return em, false
		}
		d.log.WithFields(fields).WithError(err).Error("dispatch error: notification not stored")
		return em, false
	}

	em.Notification = n
	if clientOn && ev.Client.HasEmail() {
		em.Emails = append(em.Emails, d.message(ev, c, *ev.Client.Email, ev.Client.Name))
	}
	if adminOn {
		for _, addr := range d.adminEmails {
			em.Emails = append(em.Emails, d.message(ev, c, addr, "Administrator"))
		}
	}

	d.log.WithFields(fields).WithField("emails", len(em.Emails)).Info("notification emitted")
	return em, true
}

var errAlreadyFired = errors.New("notification already fired")

// persist checks and writes inside a savepoint so a failure leaves the outer transaction usable.
func (d *Dispatcher) persist(ctx context.Context, tx *gorm.DB, n *domain.Notification) error {
	write := func(db *gorm.DB) error {
		if !d.dedup.ShouldFire(ctx, db, n.EditionID, n.Type, n.Fingerprint) {
			return errAlreadyFired
		}
		repo := d.notifications
		if db != nil {
			repo = repo.WithTx(db)
		}
		return repo.Create(ctx, n)
	}

	if tx == nil {
		return write(nil)
	}
	return tx.Transaction(func(sp *gorm.DB) error {
		return write(sp)
	})
}

func (d *Dispatcher) message(ev event, c content, to, name string) domain.EmailMessage {
	return domain.EmailMessage{
		To:        to,
		ToName:    name,
		Subject:   c.Subject,
		Body:      c.Body,
		Type:      ev.Type,
		EditionID: &ev.Edition.ID,
	}
}

func (d *Dispatcher) payload(ev event) datatypes.JSON {
	snapshot := map[string]any{
		"editionId":            ev.Edition.ID,
		"courseTitle":          ev.Edition.CourseTitle(),
		"status":               ev.Edition.Status,
		"startDate":            ev.Edition.StartDate,
		"endDate":              ev.Edition.EndDate,
		"registrationDeadline": ev.Edition.RegistrationDeadline,
	}
	for k, v := range ev.Extra {
		snapshot[k] = v
	}

	raw, err := sonic.Marshal(snapshot)
	if err != nil {
		d.log.WithField("type", ev.Type).WithError(err).Warn(fmt.Sprintf("payload for edition %d not encoded", ev.Edition.ID))
		return nil
	}
	return datatypes.JSON(raw)
}
