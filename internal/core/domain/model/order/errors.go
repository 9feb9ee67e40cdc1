package order

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is the unwrap target for rejected status edges.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingDeliveryPerson is returned when a transition into Delivering
	// is requested and no delivery person is assigned on the order or the request.
	ErrMissingDeliveryPerson = errors.New("cannot start delivery without an assigned delivery person")

	// ErrReceiptNotVerified is returned when the payment method requires a
	// receipt and it has not been verified before delivery starts.
	ErrReceiptNotVerified = errors.New("cannot start delivery before the payment receipt is verified")

	// ErrOrderNotArchivable is returned when archiving an order that is not
	// in a terminal status.
	ErrOrderNotArchivable = errors.New("only completed or cancelled orders can be archived")

	// ErrDeliveryPersonNotAssignable is returned when assigning a delivery
	// person outside the pending/preparing window.
	ErrDeliveryPersonNotAssignable = errors.New("delivery person can only be assigned before delivery starts")
)

// InvalidTransitionError carries the offending edge of a rejected transition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given edge.
func NewInvalidTransitionError(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
