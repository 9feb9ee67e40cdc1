package order

import "github.com/shopspring/decimal"

// Webhook event types emitted by the state machine.
const (
	// EventOrderCompleted fires exactly once when an order enters Completed.
	EventOrderCompleted = "order.completed"
)

// Effect is a side-effect descriptor emitted by the aggregate alongside a
// successful state change. The aggregate itself performs no I/O; the
// application layer executes effects against the cache, the notification
// hub, the webhook dispatcher, and the history store.
//
// Effect is a sealed tagged variant: the concrete types below are the only
// implementations.
type Effect interface {
	isEffect()
}

// InvalidateCacheEffect requests removal of every cache entry whose key
// namespace includes the order id, plus the unscoped collection keys.
type InvalidateCacheEffect struct {
	OrderID int64
}

// NotifyEffect requests a status-change event fan-out to the broad, admin,
// and per-order subscriber groups. Carries a minimal projection only.
type NotifyEffect struct {
	OrderID          int64
	Status           Status
	DeliveryPersonID *int64
}

// WebhookSnapshot is the order projection attached to a webhook event,
// captured at the moment the effect was emitted.
type WebhookSnapshot struct {
	Status           Status
	CustomerID       *int64
	DeliveryPersonID *int64
	Total            decimal.Decimal
	PaymentMethod    PaymentMethod
}

// DispatchWebhookEffect requests best-effort delivery of a lifecycle event
// to externally registered webhook subscriptions.
type DispatchWebhookEffect struct {
	EventType string
	OrderID   int64
	Snapshot  WebhookSnapshot
}

// AppendHistoryEffect requests durable persistence of a transition record.
type AppendHistoryEffect struct {
	Entry StatusHistoryEntry
}

func (InvalidateCacheEffect) isEffect() {}
func (NotifyEffect) isEffect()          {}
func (DispatchWebhookEffect) isEffect() {}
func (AppendHistoryEffect) isEffect()   {}
