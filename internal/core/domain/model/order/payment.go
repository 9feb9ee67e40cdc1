package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// PaymentMethod identifies how an order is paid for. Bank transfers require
// a verified payment receipt before delivery may start.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Validate checks the payment method is one of the supported values.
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod",
			fmt.Errorf("%q is not a valid payment method", string(m)))
	}
}

// RequiresReceipt reports whether delivery is gated on receipt verification.
func (m PaymentMethod) RequiresReceipt() bool {
	return m == PaymentTransfer
}
