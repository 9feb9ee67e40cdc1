package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrRequestOrderTransitionCommandIsNotConstructed = errors.New(
		"RequestOrderTransitionCommand must be created via NewRequestOrderTransitionCommand constructor",
	)
)

// RequestOrderTransitionCommand represents a request to move an order to a
// new status. The actor records who asked for the change in the status
// history; the optional delivery person id supports assignment together with
// the move into delivering.
//
// Example:
//
//	cmd, err := NewRequestOrderTransitionCommand(42, order.Preparing, order.ActorAdmin, nil, "kitchen accepted")
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("transition failed: %w", err)
//	}
type RequestOrderTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID          int64
	toStatus         order.Status
	actor            string
	deliveryPersonID *int64
	note             string

	guard guard.ConstructorGuard
}

// NewRequestOrderTransitionCommand creates a transition request.
// Validates that the order id is positive, the target status is a known
// status, and the actor tag is present.
func NewRequestOrderTransitionCommand(
	orderID int64,
	toStatus order.Status,
	actor string,
	deliveryPersonID *int64,
	note string,
) (RequestOrderTransitionCommand, error) {
	command := RequestOrderTransitionCommand{
		deliveryPersonID: deliveryPersonID,
		note:             note,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setToStatus(toStatus),
		command.setActor(actor),
	); err != nil {
		return RequestOrderTransitionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRequestOrderTransitionCommandIsNotConstructed if validation fails.
func (c RequestOrderTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestOrderTransitionCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c RequestOrderTransitionCommand) OrderID() int64 {
	return c.orderID
}

// ToStatus returns the requested target status.
func (c RequestOrderTransitionCommand) ToStatus() order.Status {
	return c.toStatus
}

// Actor returns the actor tag recorded in the status history.
func (c RequestOrderTransitionCommand) Actor() string {
	return c.actor
}

// DeliveryPersonID returns the delivery person to assign together with the
// transition, or nil.
func (c RequestOrderTransitionCommand) DeliveryPersonID() *int64 {
	return c.deliveryPersonID
}

// Note returns the free-form note recorded in the status history.
func (c RequestOrderTransitionCommand) Note() string {
	return c.note
}

func (c *RequestOrderTransitionCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}

func (c *RequestOrderTransitionCommand) setToStatus(toStatus order.Status) error {
	if err := toStatus.Validate(); err != nil {
		return err
	}

	c.toStatus = toStatus
	return nil
}

func (c *RequestOrderTransitionCommand) setActor(actor string) error {
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}

	c.actor = actor
	return nil
}
