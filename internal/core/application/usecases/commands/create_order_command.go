package commands

import (
	"errors"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// CreateOrderCommand represents a request to register a new order in pending
// status. The order id comes from the upstream ordering system; this
// subsystem never generates order identity.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(42, &customerID, decimal.NewFromInt(25), order.PaymentCash)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, effectRunner)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       int64
	customerID    *int64
	total         decimal.Decimal
	paymentMethod order.PaymentMethod

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates that the order id is positive, the total is not negative, and
// the payment method is known.
func NewCreateOrderCommand(
	orderID int64,
	customerID *int64,
	total decimal.Decimal,
	paymentMethod order.PaymentMethod,
) (CreateOrderCommand, error) {
	command := CreateOrderCommand{
		customerID: customerID,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setTotal(total),
		command.setPaymentMethod(paymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() int64 {
	return c.orderID
}

// CustomerID returns the ordering customer, or nil for walk-in orders.
func (c CreateOrderCommand) CustomerID() *int64 {
	return c.customerID
}

// Total returns the order total.
func (c CreateOrderCommand) Total() decimal.Decimal {
	return c.total
}

// PaymentMethod returns how the order will be paid.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

func (c *CreateOrderCommand) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return errs.NewValueIsInvalidError("total")
	}

	c.total = total
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(paymentMethod order.PaymentMethod) error {
	if err := paymentMethod.Validate(); err != nil {
		return err
	}

	c.paymentMethod = paymentMethod
	return nil
}
