// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// WebhookRepoFactory provides access to webhook subscription repository
	// within a transaction.
	WebhookRepoFactory interface {
		WebhookSubscriptionRepository() ports.WebhookSubscriptionRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only modify order aggregates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across order and webhook subscription
	// aggregates.
	UoW interface {
		TxManager
		OrderRepoFactory
		WebhookRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// EffectRunner executes the side effects an order aggregate emits after its
// state change has been committed: cache invalidation, subscriber
// notification, webhook dispatch. Implementations must be best-effort; a
// failed effect never undoes the committed transition.
type EffectRunner interface {
	Run(ctx context.Context, effects []order.Effect)
}

// NopEffectRunner discards all effects. Useful in tests and tools that do
// not wire the full adapter stack.
type NopEffectRunner struct{}

func (NopEffectRunner) Run(_ context.Context, _ []order.Effect) {}
