package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrVerifyReceiptCommandIsNotConstructed = errors.New(
		"VerifyReceiptCommand must be created via NewVerifyReceiptCommand constructor",
	)
)

// VerifyReceiptCommand represents confirmation that a bank-transfer payment
// receipt has been checked. Verification unblocks the move into delivering
// for transfer-paid orders.
type VerifyReceiptCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

// NewVerifyReceiptCommand creates a receipt verification command.
func NewVerifyReceiptCommand(orderID int64) (VerifyReceiptCommand, error) {
	command := VerifyReceiptCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return VerifyReceiptCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrVerifyReceiptCommandIsNotConstructed if validation fails.
func (c VerifyReceiptCommand) Validate() error {
	return c.guard.Validate(ErrVerifyReceiptCommandIsNotConstructed)
}

// OrderID returns the identifier of the order whose receipt was checked.
func (c VerifyReceiptCommand) OrderID() int64 {
	return c.orderID
}

func (c *VerifyReceiptCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}
