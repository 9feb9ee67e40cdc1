// Package ports defines repository interfaces for the order domain.
// These interfaces establish contracts between the domain layer and infrastructure,
// enabling dependency inversion and testability.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// together with their full status history.
type OrderRepository interface {
	// Add persists a new order aggregate to storage, including its initial
	// status history entry.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using optimistic
	// concurrency: the stored row must still be at the aggregate's loaded
	// version, and a successful update increments it. Newly appended status
	// history entries are persisted in the same operation.
	//
	// Returns errs.VersionConflictError when another writer got there first;
	// callers reload the aggregate and retry.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns the complete order with its full status history, so the
	// aggregate can verify that its status matches the newest entry.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// GetAllDelivering retrieves all orders currently out for delivery.
	// Used by the stale-location job to find orders whose delivery position
	// has stopped updating.
	GetAllDelivering(ctx context.Context) ([]*order.Order, error)
}
