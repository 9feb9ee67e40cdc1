package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrArchiveOrderCommandIsNotConstructed = errors.New(
		"ArchiveOrderCommand must be created via NewArchiveOrderCommand constructor",
	)
)

// ArchiveOrderCommand represents a request to hide a finished order from
// default listings. Only completed or cancelled orders can be archived;
// archiving twice is a no-op.
type ArchiveOrderCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

// NewArchiveOrderCommand creates an archive command for the given order.
func NewArchiveOrderCommand(orderID int64) (ArchiveOrderCommand, error) {
	command := ArchiveOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return ArchiveOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrArchiveOrderCommandIsNotConstructed if validation fails.
func (c ArchiveOrderCommand) Validate() error {
	return c.guard.Validate(ErrArchiveOrderCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to archive.
func (c ArchiveOrderCommand) OrderID() int64 {
	return c.orderID
}

func (c *ArchiveOrderCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}
