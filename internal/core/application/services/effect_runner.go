// Package services wires the side effects emitted by order aggregates to
// the cache, notification, and webhook adapters.
package services

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/cache"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/notifications"
	"orderflow/internal/pkg/errs"
)

// CacheInvalidator evicts cached entries by exact key or prefix.
type CacheInvalidator interface {
	Invalidate(keyOrPrefix string)
}

// EventBroadcaster fans an order event out to the subscriber groups.
type EventBroadcaster interface {
	Broadcast(event notifications.Event)
}

// WebhookSender delivers an event to registered webhook endpoints.
type WebhookSender interface {
	Dispatch(ctx context.Context, eventType string, orderID int64, data any) error
}

// DeliveryPersonDirectory resolves delivery-person ids to display names for
// event projections. Lookups are best-effort: a failed lookup only omits the
// name from the broadcast event.
type DeliveryPersonDirectory interface {
	DisplayName(ctx context.Context, deliveryPersonID int64) (string, error)
}

// EffectRunner executes committed-state side effects. Each effect is
// isolated: a failing webhook never blocks a cache invalidation, and none of
// them can undo the commit that produced them. Webhook dispatch runs in the
// background detached from the request context.
type EffectRunner struct {
	cache     CacheInvalidator
	hub       EventBroadcaster
	webhooks  WebhookSender
	directory DeliveryPersonDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// RunnerOption tweaks effect runner construction.
type RunnerOption func(*EffectRunner)

// WithDeliveryPersonDirectory enables delivery-person name resolution on
// broadcast events. Without a directory the name is omitted.
func WithDeliveryPersonDirectory(directory DeliveryPersonDirectory) RunnerOption {
	return func(r *EffectRunner) { r.directory = directory }
}

// NewEffectRunner creates an effect runner over the given adapters.
func NewEffectRunner(
	cacheInvalidator CacheInvalidator,
	hub EventBroadcaster,
	webhooks WebhookSender,
	logger *slog.Logger,
	opts ...RunnerOption,
) (*EffectRunner, error) {
	if cacheInvalidator == nil {
		return nil, errs.NewValueIsRequiredError("cacheInvalidator")
	}
	if hub == nil {
		return nil, errs.NewValueIsRequiredError("hub")
	}
	if webhooks == nil {
		return nil, errs.NewValueIsRequiredError("webhooks")
	}

	r := &EffectRunner{
		cache:    cacheInvalidator,
		hub:      hub,
		webhooks: webhooks,
		logger:   logger.With("component", "effect_runner"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Run executes the effects in order. History effects are already persisted
// with the aggregate and are skipped here.
func (r *EffectRunner) Run(ctx context.Context, effects []order.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case order.AppendHistoryEffect:
			// Persisted transactionally with the aggregate.

		case order.InvalidateCacheEffect:
			r.cache.Invalidate(cache.OrderItemKey(e.OrderID))
			r.cache.Invalidate(cache.OrderListPrefix)

		case order.NotifyEffect:
			event := notifications.Event{
				OrderID:   e.OrderID,
				Status:    e.Status.String(),
				Timestamp: r.now().UTC(),
			}
			if r.directory != nil && e.DeliveryPersonID != nil {
				name, err := r.directory.DisplayName(ctx, *e.DeliveryPersonID)
				if err != nil {
					r.logger.WarnContext(ctx, "delivery person name lookup failed",
						"delivery_person_id", *e.DeliveryPersonID, "error", err)
				} else if name != "" {
					event.DeliveryPersonName = &name
				}
			}
			r.hub.Broadcast(event)

		case order.DispatchWebhookEffect:
			r.dispatchWebhook(ctx, e)
		}
	}
}

// orderWebhookPayload is the JSON shape of the order snapshot carried in the
// webhook envelope's data field.
type orderWebhookPayload struct {
	OrderID          int64  `json:"orderId"`
	Status           string `json:"status"`
	CustomerID       *int64 `json:"customerId,omitempty"`
	DeliveryPersonID *int64 `json:"deliveryPersonId,omitempty"`
	Total            string `json:"total"`
	PaymentMethod    string `json:"paymentMethod"`
}

func (r *EffectRunner) dispatchWebhook(ctx context.Context, effect order.DispatchWebhookEffect) {
	payload := orderWebhookPayload{
		OrderID:          effect.OrderID,
		Status:           effect.Snapshot.Status.String(),
		CustomerID:       effect.Snapshot.CustomerID,
		DeliveryPersonID: effect.Snapshot.DeliveryPersonID,
		Total:            effect.Snapshot.Total.String(),
		PaymentMethod:    string(effect.Snapshot.PaymentMethod),
	}

	// Detached from the request: retries may outlive the HTTP call that
	// triggered the transition.
	dispatchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)

	go func() {
		defer cancel()
		if err := r.webhooks.Dispatch(dispatchCtx, effect.EventType, effect.OrderID, payload); err != nil {
			r.logger.Error("webhook dispatch failed",
				"event", effect.EventType, "order_id", effect.OrderID, "error", err)
		}
	}()
}
