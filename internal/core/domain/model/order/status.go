package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct business workflow.
//
// State transitions:
//
//	Pending ──> Preparing ──> Delivering ──> Completed
//	   │            │
//	   └────────────┴──> Cancelled
//
// Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when an order is first placed.
	// Orders in this status have not yet been picked up by the kitchen.
	Pending

	// Preparing indicates the kitchen is working on the order.
	// A delivery person may be assigned while in this status.
	Preparing

	// Delivering indicates the order is on its way to the customer.
	// Requires an assigned delivery person to enter.
	Delivering

	// Completed indicates the order has been delivered.
	// This is a final state with no further transitions allowed.
	Completed

	// Cancelled indicates the order was cancelled before delivery began.
	// Reachable from Pending or Preparing only.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Pending:    "pending",
		Preparing:  "preparing",
		Delivering: "delivering",
		Completed:  "completed",
		Cancelled:  "cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:    "pending",
		Preparing:  "preparing",
		Delivering: "delivering",
		Completed:  "completed",
		Cancelled:  "cancelled",
	}
}

// allowedEdges is the transition table of the order state machine.
// A requested transition is legal iff the target status appears in the
// set keyed by the current status.
func allowedEdges() map[Status][]Status {
	return map[Status][]Status{
		Pending:    {Preparing, Cancelled},
		Preparing:  {Delivering, Cancelled},
		Delivering: {Completed},
		Completed:  {},
		Cancelled:  {},
	}
}

// ParseStatus converts a string representation into a Status.
// Returns an error for unrecognized values; used when statuses arrive
// from external sources (API requests, persistence).
func ParseStatus(value string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == value {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", value))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// CanTransitionTo reports whether the edge from the current status to the
// target status exists in the transition table. Same-status requests are not
// edges; the aggregate treats them as idempotent no-ops before consulting
// the table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range allowedEdges()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the order is still in the kitchen's hands
// (pending or preparing) and not yet out for delivery.
func (s Status) IsActive() bool {
	return s == Pending || s == Preparing
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}
