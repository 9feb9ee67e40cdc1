// Package queries contains read operations in the CQRS architecture.
// Query handlers read through the cache coordinator straight from the
// database, bypassing the aggregate write model. Responses carry the cache
// entry's ETag so the HTTP layer can answer conditional requests.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves a single order with its full status history.
//
// Example:
//
//	query, err := NewGetOrderQuery(42)
//	if err != nil {
//	    return err
//	}
//
//	response, etag, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
//	fmt.Printf("Order %d is %s (etag %s)\n", response.ID, response.Status, etag)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the given order id.
func NewGetOrderQuery(orderID int64) (GetOrderQuery, error) {
	query := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderQueryIsNotConstructed if validation fails.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to load.
func (q GetOrderQuery) OrderID() int64 {
	return q.orderID
}

func (q *GetOrderQuery) setOrderID(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	q.orderID = orderID
	return nil
}

// LocationResponse is a GPS sample in a query response.
type LocationResponse struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracyMeters"`
	CapturedAt     time.Time `json:"capturedAt"`
}

// HistoryEntryResponse is one status history record in a query response.
type HistoryEntryResponse struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ChangedBy  string    `json:"changedBy"`
	Note       string    `json:"note,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
}

// GetOrderQueryResponse represents a fully loaded order.
type GetOrderQueryResponse struct {
	ID               int64                  `json:"id"`
	CustomerID       *int64                 `json:"customerId,omitempty"`
	DeliveryPersonID *int64                 `json:"deliveryPersonId,omitempty"`
	Status           string                 `json:"status"`
	Total            string                 `json:"total"`
	PaymentMethod    string                 `json:"paymentMethod"`
	ReceiptVerified  bool                   `json:"receiptVerified"`
	IsArchived       bool                   `json:"isArchived"`
	DeliveryLocation *LocationResponse      `json:"deliveryLocation,omitempty"`
	History          []HistoryEntryResponse `json:"history"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}
