package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrAssignDeliveryPersonCommandIsNotConstructed = errors.New(
		"AssignDeliveryPersonCommand must be created via NewAssignDeliveryPersonCommand constructor",
	)
)

// AssignDeliveryPersonCommand represents a request to assign (or reassign) a
// delivery person to an order that has not yet reached a terminal status.
type AssignDeliveryPersonCommand struct { //nolint:recvcheck //using for validation
	orderID          int64
	deliveryPersonID int64

	guard guard.ConstructorGuard
}

// NewAssignDeliveryPersonCommand creates an assignment command.
// Both identifiers must be positive.
func NewAssignDeliveryPersonCommand(orderID, deliveryPersonID int64) (AssignDeliveryPersonCommand, error) {
	command := AssignDeliveryPersonCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setDeliveryPersonID(deliveryPersonID),
	); err != nil {
		return AssignDeliveryPersonCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignDeliveryPersonCommandIsNotConstructed if validation fails.
func (c AssignDeliveryPersonCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliveryPersonCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to assign.
func (c AssignDeliveryPersonCommand) OrderID() int64 {
	return c.orderID
}

// DeliveryPersonID returns the delivery person to assign.
func (c AssignDeliveryPersonCommand) DeliveryPersonID() int64 {
	return c.deliveryPersonID
}

func (c *AssignDeliveryPersonCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}

func (c *AssignDeliveryPersonCommand) setDeliveryPersonID(deliveryPersonID int64) error {
	if deliveryPersonID <= 0 {
		return errs.NewValueIsRequiredError("deliveryPersonId")
	}

	c.deliveryPersonID = deliveryPersonID
	return nil
}
