package usecase

import (
	"fmt"
	"time"

	"trainingportal/domain"
)

// allowedTransitions lists, per current status, the statuses an update may set.
// CLOSED -> PUBLISHED is the explicit administrative reopening; nothing returns to DRAFT.
var allowedTransitions = map[domain.EditionStatus][]domain.EditionStatus{
	domain.EditionDraft:     {domain.EditionDraft, domain.EditionPublished, domain.EditionArchived},
	domain.EditionPublished: {domain.EditionPublished, domain.EditionClosed, domain.EditionArchived},
	domain.EditionClosed:    {domain.EditionClosed, domain.EditionPublished, domain.EditionArchived},
}

func canTransition(from, to domain.EditionStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyUpdate merges patch onto current and validates the result. It has no side effects:
// on error nothing is returned to persist, on success the caller writes the edition and
// hands the descriptor to the notification dispatcher.
func ApplyUpdate(current domain.Edition, patch domain.EditionPatch) (domain.Edition, domain.TransitionDescriptor, error) {
	if current.Status == domain.EditionArchived {
		return current, domain.TransitionDescriptor{}, domain.ArchivedError()
	}

	next := current
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return current, domain.TransitionDescriptor{}, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		if !canTransition(current.Status, *patch.Status) {
			return current, domain.TransitionDescriptor{}, domain.NewValidationError("status",
				fmt.Sprintf("transition from %s to %s is not allowed", current.Status, *patch.Status))
		}
		next.Status = *patch.Status
	}
	if patch.StartDate != nil {
		next.StartDate = normalize(patch.StartDate)
	}
	if patch.EndDate != nil {
		next.EndDate = normalize(patch.EndDate)
	}
	if patch.RegistrationDeadline != nil {
		next.RegistrationDeadline = normalize(patch.RegistrationDeadline)
	}
	if patch.ClientID != nil {
		id := *patch.ClientID
		next.ClientID = &id
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}

	if err := ValidateEdition(next); err != nil {
		return current, domain.TransitionDescriptor{}, err
	}

	desc := domain.TransitionDescriptor{
		EditionID:     current.ID,
		StatusBefore:  current.Status,
		StatusAfter:   next.Status,
		DatesChanged:  !sameInstant(current.StartDate, next.StartDate) || !sameInstant(current.EndDate, next.EndDate) || !sameInstant(current.RegistrationDeadline, next.RegistrationDeadline),
		ClientChanged: !sameID(current.ClientID, next.ClientID),
	}

	next.Version = current.Version + 1
	desc.Version = next.Version
	if next.ClientID != nil && desc.ClientChanged {
		// the preloaded association belongs to the previous client
		next.Client = nil
	}
	return next, desc, nil
}

// ValidateEdition checks the date-ordering invariants and the dates required once published.
func ValidateEdition(e domain.Edition) error {
	if e.StartDate != nil && e.EndDate != nil && !e.EndDate.After(*e.StartDate) {
		return domain.NewValidationError("endDate", "end date must be after start date")
	}
	if e.StartDate != nil && e.RegistrationDeadline != nil && !e.RegistrationDeadline.Before(*e.StartDate) {
		return domain.NewValidationError("registrationDeadline", "registration deadline must be before start date")
	}
	if e.Status == domain.EditionPublished || e.Status == domain.EditionClosed {
		if e.StartDate == nil || e.EndDate == nil {
			return domain.NewValidationError("startDate", fmt.Sprintf("start and end dates are required for a %s edition", e.Status))
		}
	}
	return nil
}

// Removal describes the deletion of an edition for the dispatcher.
func Removal(current domain.Edition) domain.TransitionDescriptor {
	return domain.TransitionDescriptor{
		EditionID:    current.ID,
		Version:      current.Version,
		StatusBefore: current.Status,
		Deleted:      true,
	}
}

func normalize(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
