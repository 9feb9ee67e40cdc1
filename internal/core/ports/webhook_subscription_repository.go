package ports

import (
	"context"

	"orderflow/internal/core/domain/model/webhook"
)

// WebhookSubscriptionRepository defines the persistence contract for webhook
// subscription aggregates.
type WebhookSubscriptionRepository interface {
	// Add persists a new subscription.
	Add(ctx context.Context, subscription *webhook.Subscription) error

	// Update persists changes to an existing subscription, including its
	// delivery counters and active flag.
	Update(ctx context.Context, subscription *webhook.Subscription) error

	// Get retrieves a subscription by its unique identifier.
	Get(ctx context.Context, id int64) (*webhook.Subscription, error)

	// GetMatching retrieves all active subscriptions registered for the
	// given event type.
	GetMatching(ctx context.Context, eventType string) ([]*webhook.Subscription, error)
}
