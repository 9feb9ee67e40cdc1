package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrUpdateDeliveryLocationCommandIsNotConstructed = errors.New(
		"UpdateDeliveryLocationCommand must be created via NewUpdateDeliveryLocationCommand constructor",
	)
)

// UpdateDeliveryLocationCommand represents a position report from the
// delivery client. Only the newest sample per order is kept.
type UpdateDeliveryLocationCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	sample  kernel.LocationSample

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryLocationCommand creates a location update command from a
// validated sample.
func NewUpdateDeliveryLocationCommand(orderID int64, sample kernel.LocationSample) (UpdateDeliveryLocationCommand, error) {
	command := UpdateDeliveryLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setSample(sample),
	); err != nil {
		return UpdateDeliveryLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDeliveryLocationCommandIsNotConstructed if validation fails.
func (c UpdateDeliveryLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryLocationCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being tracked.
func (c UpdateDeliveryLocationCommand) OrderID() int64 {
	return c.orderID
}

// Sample returns the reported location sample.
func (c UpdateDeliveryLocationCommand) Sample() kernel.LocationSample {
	return c.sample
}

func (c *UpdateDeliveryLocationCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateDeliveryLocationCommand) setSample(sample kernel.LocationSample) error {
	if err := sample.Point.Validate(); err != nil {
		return err
	}
	if sample.CapturedAt.IsZero() {
		return errs.NewValueIsRequiredError("capturedAt")
	}

	c.sample = sample
	return nil
}
