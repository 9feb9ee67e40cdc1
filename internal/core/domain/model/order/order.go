package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder factory method. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of the order lifecycle. It owns the status
// state machine, the append-only status history, the delivery assignment,
// and the latest GPS samples for both parties.
//
// Order follows these invariants:
//   - status always equals the ToStatus of the most recent history entry
//   - Delivering requires a non-nil delivery person id
//   - history is append-only and monotonically increasing in time
//   - archiving is permitted only in terminal statuses
//   - can only be created through NewOrder or RestoreOrder
//
// Mutating methods return Effect descriptors instead of performing I/O;
// the application layer is responsible for executing them.
type Order struct {
	id               int64
	customerID       *int64
	deliveryPersonID *int64
	status           Status
	total            decimal.Decimal
	paymentMethod    PaymentMethod
	receiptVerified  bool
	isArchived       bool
	deliveryLocation *kernel.LocationSample
	customerLocation *kernel.LocationSample
	history          []StatusHistoryEntry
	version          int64

	isConstructed bool
}

// NewOrder creates a new Order in Pending status with a creation record in
// its history. The id must be positive and the total non-negative.
func NewOrder(id int64, customerID *int64, total decimal.Decimal, paymentMethod PaymentMethod) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTotal(total),
		o.setPaymentMethod(paymentMethod),
	); err != nil {
		return nil, err
	}

	o.customerID = customerID

	created, err := NewStatusHistoryEntry(Unknown, Pending, ActorSystem, "order placed", time.Now().UTC())
	if err != nil {
		return nil, err
	}
	o.history = append(o.history, created)

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence without emitting
// effects. The history must be non-empty and its last entry must agree with
// the status projection.
func RestoreOrder(
	id int64,
	customerID *int64,
	deliveryPersonID *int64,
	status Status,
	total decimal.Decimal,
	paymentMethod PaymentMethod,
	receiptVerified bool,
	isArchived bool,
	deliveryLocation *kernel.LocationSample,
	customerLocation *kernel.LocationSample,
	history []StatusHistoryEntry,
	version int64,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTotal(total),
		o.setPaymentMethod(paymentMethod),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return nil, errs.NewValueIsRequiredError("history")
	}
	if last := history[len(history)-1].ToStatus(); last != status {
		return nil, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("status %s does not match last history entry %s", status, last))
	}
	if status == Delivering && deliveryPersonID == nil {
		return nil, errs.NewValueIsRequiredError("deliveryPersonId")
	}

	o.customerID = customerID
	o.deliveryPersonID = deliveryPersonID
	o.status = status
	o.receiptVerified = receiptVerified
	o.isArchived = isArchived
	o.deliveryLocation = deliveryLocation
	o.customerLocation = customerLocation
	o.history = append(o.history, history...)
	o.version = version

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() int64 {
	return o.id
}

// CustomerID returns the customer reference, or nil for anonymous orders.
func (o *Order) CustomerID() *int64 {
	return o.customerID
}

// DeliveryPerson returns the assigned delivery person's id, or nil.
func (o *Order) DeliveryPerson() *int64 {
	return o.deliveryPersonID
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Total returns the order total.
func (o *Order) Total() decimal.Decimal {
	return o.total
}

// PaymentMethod returns how the order is paid for.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// ReceiptVerified reports whether the payment receipt has been verified.
func (o *Order) ReceiptVerified() bool {
	return o.receiptVerified
}

// IsArchived reports whether the order has been soft-deleted.
func (o *Order) IsArchived() bool {
	return o.isArchived
}

// DeliveryLocation returns the latest delivery-person GPS sample, or nil.
func (o *Order) DeliveryLocation() *kernel.LocationSample {
	return o.deliveryLocation
}

// CustomerLocation returns the customer's GPS sample, or nil.
func (o *Order) CustomerLocation() *kernel.LocationSample {
	return o.customerLocation
}

// History returns a copy of the append-only transition log.
func (o *Order) History() []StatusHistoryEntry {
	history := make([]StatusHistoryEntry, len(o.history))
	copy(history, o.history)
	return history
}

// Version returns the optimistic-lock version loaded from persistence.
func (o *Order) Version() int64 {
	return o.version
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id == other.id
}

// Transition validates and applies a status change requested by an actor.
//
// Rules enforced:
//   - re-requesting the current status is a no-op success (absorbs client
//     retries): no history entry, no effects
//   - the edge must exist in the transition table
//   - entering Delivering requires a delivery person (on the order or the
//     request) and, for receipt-gated payment methods, a verified receipt
//
// On success the history is appended, the status projection updated, and
// the effect list returned: AppendHistory, InvalidateCache, Notify, plus
// DispatchWebhook(order.completed) only on entering Completed.
func (o *Order) Transition(to Status, actor string, deliveryPersonID *int64, note string) ([]Effect, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if actor == "" {
		return nil, errs.NewValueIsRequiredError("actor")
	}

	if to == o.status {
		return nil, nil
	}

	if !o.status.CanTransitionTo(to) {
		return nil, NewInvalidTransitionError(o.status, to)
	}

	assignee := o.deliveryPersonID
	if deliveryPersonID != nil {
		assignee = deliveryPersonID
	}

	if to == Delivering {
		if assignee == nil {
			return nil, ErrMissingDeliveryPerson
		}
		if o.paymentMethod.RequiresReceipt() && !o.receiptVerified {
			return nil, ErrReceiptNotVerified
		}
	}

	entry, err := NewStatusHistoryEntry(o.status, to, actor, note, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	o.status = to
	o.deliveryPersonID = assignee
	o.history = append(o.history, entry)

	effects := []Effect{
		AppendHistoryEffect{Entry: entry},
		InvalidateCacheEffect{OrderID: o.id},
		NotifyEffect{OrderID: o.id, Status: to, DeliveryPersonID: o.deliveryPersonID},
	}
	if to == Completed {
		effects = append(effects, DispatchWebhookEffect{
			EventType: EventOrderCompleted,
			OrderID:   o.id,
			Snapshot:  o.webhookSnapshot(),
		})
	}

	return effects, nil
}

func (o *Order) webhookSnapshot() WebhookSnapshot {
	return WebhookSnapshot{
		Status:           o.status,
		CustomerID:       o.customerID,
		DeliveryPersonID: o.deliveryPersonID,
		Total:            o.total,
		PaymentMethod:    o.paymentMethod,
	}
}

// AssignDeliveryPerson assigns or reassigns the delivery person.
// Permitted only while the order is active (pending or preparing);
// reassignment mid-delivery is deliberately not an edge of the state machine.
func (o *Order) AssignDeliveryPerson(deliveryPersonID int64) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if deliveryPersonID <= 0 {
		return errs.NewValueIsInvalidError("deliveryPersonId")
	}
	if !o.status.IsActive() {
		return ErrDeliveryPersonNotAssignable
	}

	o.deliveryPersonID = &deliveryPersonID
	return nil
}

// VerifyReceipt marks the payment receipt as verified, lifting the
// delivery gate for receipt-requiring payment methods.
func (o *Order) VerifyReceipt() []Effect {
	if o.receiptVerified {
		return nil
	}

	o.receiptVerified = true
	return []Effect{InvalidateCacheEffect{OrderID: o.id}}
}

// Archive soft-deletes the order. Permitted only in terminal statuses;
// archiving an already archived order is a no-op. No history is appended.
func (o *Order) Archive() ([]Effect, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.isArchived {
		return nil, nil
	}
	if !o.status.IsTerminal() {
		return nil, ErrOrderNotArchivable
	}

	o.isArchived = true
	return []Effect{InvalidateCacheEffect{OrderID: o.id}}, nil
}

// UpdateDeliveryLocation replaces the latest delivery-person GPS sample.
// This bypasses the state machine entirely: no history entry is created and
// the effects only invalidate caches and fan out the current status.
func (o *Order) UpdateDeliveryLocation(sample kernel.LocationSample) ([]Effect, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := sample.Point.Validate(); err != nil {
		return nil, err
	}

	o.deliveryLocation = &sample

	return []Effect{
		InvalidateCacheEffect{OrderID: o.id},
		NotifyEffect{OrderID: o.id, Status: o.status, DeliveryPersonID: o.deliveryPersonID},
	}, nil
}

// UpdateCustomerLocation replaces the customer's GPS sample.
func (o *Order) UpdateCustomerLocation(sample kernel.LocationSample) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := sample.Point.Validate(); err != nil {
		return err
	}

	o.customerLocation = &sample
	return nil
}

func (o *Order) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("%d is not greater than 0", id))
	}
	o.id = id
	return nil
}

func (o *Order) setTotal(total decimal.Decimal) error {
	if total.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("total", fmt.Errorf("%s is negative", total))
	}
	o.total = total
	return nil
}

func (o *Order) setPaymentMethod(method PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	o.paymentMethod = method
	return nil
}
