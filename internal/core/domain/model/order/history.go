package order

import (
	"time"

	"orderflow/internal/pkg/errs"
)

// Actor tags recorded in the status history for non-user transitions.
// Per-user transitions record the username instead.
const (
	ActorAdmin    = "admin"
	ActorDelivery = "delivery"
	ActorSystem   = "system"
)

// StatusHistoryEntry is a single record in an order's append-only transition
// log. Entries are created once per accepted transition and never mutated or
// deleted. The fromStatus may be Unknown for the creation record only.
type StatusHistoryEntry struct {
	fromStatus Status
	toStatus   Status
	changedBy  string
	note       string
	changedAt  time.Time
}

// NewStatusHistoryEntry creates a history entry for an accepted transition.
// The target status must be valid and the actor tag is required.
func NewStatusHistoryEntry(
	from Status,
	to Status,
	changedBy string,
	note string,
	changedAt time.Time,
) (StatusHistoryEntry, error) {
	if err := to.Validate(); err != nil {
		return StatusHistoryEntry{}, err
	}
	if changedBy == "" {
		return StatusHistoryEntry{}, errs.NewValueIsRequiredError("changedBy")
	}
	if changedAt.IsZero() {
		return StatusHistoryEntry{}, errs.NewValueIsRequiredError("changedAt")
	}

	return StatusHistoryEntry{
		fromStatus: from,
		toStatus:   to,
		changedBy:  changedBy,
		note:       note,
		changedAt:  changedAt,
	}, nil
}

// FromStatus returns the status the order held before the transition.
func (e StatusHistoryEntry) FromStatus() Status {
	return e.fromStatus
}

// ToStatus returns the status the order entered with this transition.
func (e StatusHistoryEntry) ToStatus() Status {
	return e.toStatus
}

// ChangedBy returns the actor tag or username that requested the transition.
func (e StatusHistoryEntry) ChangedBy() string {
	return e.changedBy
}

// Note returns the optional free-text note attached to the transition.
func (e StatusHistoryEntry) Note() string {
	return e.note
}

// ChangedAt returns when the transition was accepted.
func (e StatusHistoryEntry) ChangedAt() time.Time {
	return e.changedAt
}
