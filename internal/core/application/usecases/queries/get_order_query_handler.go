package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"orderflow/internal/cache"
	"orderflow/internal/pkg/errs"
)

// GetOrderQueryHandler retrieves single orders through the cache
// coordinator. Database reads happen only on cache misses; concurrent misses
// for the same order share one query.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(db, coordinator, 30*time.Second)
//	query, _ := NewGetOrderQuery(42)
//
//	response, etag, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
type GetOrderQueryHandler struct {
	db          *gorm.DB
	coordinator *cache.Coordinator
	ttl         time.Duration
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
// Requires a GORM database connection and the shared cache coordinator.
func NewGetOrderQueryHandler(db *gorm.DB, coordinator *cache.Coordinator, ttl time.Duration) GetOrderQueryHandler {
	return GetOrderQueryHandler{
		db:          db,
		coordinator: coordinator,
		ttl:         ttl,
	}
}

// Handle executes the query. Returns the order payload, the cache ETag for
// conditional requests, and errs.ObjectNotFoundError for unknown ids.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, string, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, "", err
	}

	entry, err := h.coordinator.GetOrFetch(ctx, cache.OrderItemKey(query.OrderID()), h.ttl,
		func(ctx context.Context) (any, error) {
			return h.load(ctx, query.OrderID())
		})
	if err != nil {
		return GetOrderQueryResponse{}, "", err
	}

	response, ok := entry.Value.(GetOrderQueryResponse)
	if !ok {
		return GetOrderQueryResponse{}, "", errs.NewValueIsInvalidError("cached order payload")
	}

	return response, entry.ETag, nil
}

type orderRow struct {
	ID                 int64
	CustomerID         *int64
	DeliveryPersonID   *int64
	Status             string
	Total              string
	PaymentMethod      string
	ReceiptVerified    bool
	IsArchived         bool
	DeliveryLat        *float64
	DeliveryLng        *float64
	DeliveryAccuracy   *float64
	DeliveryCapturedAt *time.Time
	UpdatedAt          time.Time
}

type historyRow struct {
	FromStatus string
	ToStatus   string
	ChangedBy  string
	Note       string
	ChangedAt  time.Time
}

func (h GetOrderQueryHandler) load(ctx context.Context, orderID int64) (GetOrderQueryResponse, error) {
	var row orderRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			delivery_person_id,
			status,
			total,
			payment_method,
			receipt_verified,
			is_archived,
			delivery_lat,
			delivery_lng,
			delivery_accuracy,
			delivery_captured_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, orderID).Scan(&row).Error
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	if row.ID == 0 {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", orderID)
	}

	history := make([]historyRow, 0)
	err = h.db.WithContext(ctx).Raw(`
		SELECT from_status, to_status, changed_by, note, changed_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id
	`, orderID).Scan(&history).Error
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, err
	}

	response := GetOrderQueryResponse{
		ID:               row.ID,
		CustomerID:       row.CustomerID,
		DeliveryPersonID: row.DeliveryPersonID,
		Status:           row.Status,
		Total:            row.Total,
		PaymentMethod:    row.PaymentMethod,
		ReceiptVerified:  row.ReceiptVerified,
		IsArchived:       row.IsArchived,
		History:          make([]HistoryEntryResponse, 0, len(history)),
		UpdatedAt:        row.UpdatedAt,
	}

	if row.DeliveryLat != nil && row.DeliveryLng != nil && row.DeliveryCapturedAt != nil {
		accuracy := 0.0
		if row.DeliveryAccuracy != nil {
			accuracy = *row.DeliveryAccuracy
		}
		response.DeliveryLocation = &LocationResponse{
			Lat:            *row.DeliveryLat,
			Lng:            *row.DeliveryLng,
			AccuracyMeters: accuracy,
			CapturedAt:     *row.DeliveryCapturedAt,
		}
	}

	for _, entry := range history {
		response.History = append(response.History, HistoryEntryResponse{
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ChangedBy:  entry.ChangedBy,
			Note:       entry.Note,
			ChangedAt:  entry.ChangedAt,
		})
	}

	return response, nil
}
