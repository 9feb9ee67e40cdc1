// Package webhook delivers signed event notifications to registered
// subscriber endpoints.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	webhookmodel "orderflow/internal/core/domain/model/webhook"
	"orderflow/internal/metrics"
	"orderflow/internal/pkg/errs"
)

const (
	headerSignature = "X-Webhook-Signature"
	headerEvent     = "X-Webhook-Event"

	maxAttempts     = 3
	initialInterval = time.Second
	backoffFactor   = 4
)

// SubscriptionStore is the persistence surface the dispatcher needs: load
// matching subscriptions and persist their delivery counters.
type SubscriptionStore interface {
	GetMatching(ctx context.Context, eventType string) ([]*webhookmodel.Subscription, error)
	Update(ctx context.Context, subscription *webhookmodel.Subscription) error
}

type eventEnvelope struct {
	DeliveryID string    `json:"deliveryId"`
	Event      string    `json:"event"`
	OrderID    int64     `json:"orderId"`
	Timestamp  time.Time `json:"timestamp"`
	Data       any       `json:"data,omitempty"`
}

// Dispatcher finds active subscriptions for an event and POSTs a signed JSON
// envelope to each. Each endpoint gets up to three attempts with exponential
// backoff; a subscription that exhausts its attempts records a failure and
// the dispatch moves on to the next endpoint.
type Dispatcher struct {
	client        *resty.Client
	store         SubscriptionStore
	logger        *slog.Logger
	now           func() time.Time
	retryInterval time.Duration
}

// DispatcherOption tweaks dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithHTTPTimeout overrides the per-request timeout.
func WithHTTPTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.client.SetTimeout(d) }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) DispatcherOption {
	return func(dp *Dispatcher) { dp.now = now }
}

// WithRetryInterval overrides the initial backoff interval between delivery
// attempts.
func WithRetryInterval(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.retryInterval = d }
}

// NewDispatcher creates a dispatcher backed by the given subscription store.
func NewDispatcher(store SubscriptionStore, logger *slog.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}

	d := &Dispatcher{
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
		store:         store,
		logger:        logger.With("component", "webhook_dispatcher"),
		now:           time.Now,
		retryInterval: initialInterval,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Dispatch delivers the event to every active matching subscription.
// Endpoint failures never fail the dispatch as a whole; they are logged and
// recorded on the subscription. The returned error covers only the inability
// to load subscriptions.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, orderID int64, data any) error {
	if eventType == "" {
		return errs.NewValueIsRequiredError("eventType")
	}

	subscriptions, err := d.store.GetMatching(ctx, eventType)
	if err != nil {
		return fmt.Errorf("load subscriptions for %s: %w", eventType, err)
	}

	if len(subscriptions) == 0 {
		return nil
	}

	body, err := json.Marshal(eventEnvelope{
		DeliveryID: uuid.NewString(),
		Event:      eventType,
		OrderID:    orderID,
		Timestamp:  d.now().UTC(),
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	for _, subscription := range subscriptions {
		d.deliverToSubscription(ctx, subscription, eventType, orderID, body)
	}

	return nil
}

func (d *Dispatcher) deliverToSubscription(
	ctx context.Context,
	subscription *webhookmodel.Subscription,
	eventType string,
	orderID int64,
	body []byte,
) {
	start := d.now()
	err := d.deliverWithRetry(ctx, subscription, eventType, body)
	metrics.WebhookDeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
		subscription.RecordFailure()
		d.logger.ErrorContext(ctx, "webhook delivery failed",
			"subscription_id", subscription.ID(), "url", subscription.URL(),
			"event", eventType, "order_id", orderID, "error", err)
	} else {
		metrics.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
		subscription.RecordSuccess(d.now().UTC())
	}

	// Counter persistence is best-effort; losing a count never re-triggers
	// or blocks deliveries.
	if updateErr := d.store.Update(ctx, subscription); updateErr != nil {
		d.logger.WarnContext(ctx, "failed to persist webhook counters",
			"subscription_id", subscription.ID(), "error", updateErr)
	}
}

func (d *Dispatcher) deliverWithRetry(
	ctx context.Context,
	subscription *webhookmodel.Subscription,
	eventType string,
	body []byte,
) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retryInterval
	policy.Multiplier = backoffFactor
	policy.RandomizationFactor = 0

	operation := func() error {
		return d.send(ctx, subscription, eventType, body)
	}

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx))
}

func (d *Dispatcher) send(
	ctx context.Context,
	subscription *webhookmodel.Subscription,
	eventType string,
	body []byte,
) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader(headerSignature, Sign(subscription.Secret(), body)).
		SetHeader(headerEvent, eventType).
		SetBody(body).
		Post(subscription.URL())
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode())
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 of the payload with the subscription
// secret. Receivers recompute it over the raw request body to authenticate
// the sender.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
