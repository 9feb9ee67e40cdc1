// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper indexing
// for efficient querying by status and archive state. The version column
// backs optimistic concurrency control.
type OrderDTO struct {
	ID               int64  `gorm:"primaryKey"`
	CustomerID       *int64 `gorm:"index"`
	DeliveryPersonID *int64 `gorm:"index"`
	Status           string `gorm:"index;type:varchar(16)"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2)"`
	PaymentMethod    string          `gorm:"type:varchar(16)"`
	ReceiptVerified  bool
	IsArchived       bool `gorm:"index"`

	DeliveryLat        *float64
	DeliveryLng        *float64
	DeliveryAccuracy   *float64
	DeliveryCapturedAt *time.Time

	CustomerLat        *float64
	CustomerLng        *float64
	CustomerAccuracy   *float64
	CustomerCapturedAt *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// StatusHistoryDTO represents one row of an order's append-only transition
// log. Rows are only ever inserted; the serial id preserves append order.
type StatusHistoryDTO struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	OrderID    int64  `gorm:"index"`
	FromStatus string `gorm:"type:varchar(16)"`
	ToStatus   string `gorm:"type:varchar(16)"`
	ChangedBy  string
	Note       string
	ChangedAt  time.Time
}

// TableName specifies the database table name for status history entries.
func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

// fromDomain converts an order domain aggregate to its database
// representation. Status history rows are mapped separately because they are
// insert-only.
func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:               aggregate.ID(),
		CustomerID:       aggregate.CustomerID(),
		DeliveryPersonID: aggregate.DeliveryPerson(),
		Status:           aggregate.Status().String(),
		Total:            aggregate.Total(),
		PaymentMethod:    string(aggregate.PaymentMethod()),
		ReceiptVerified:  aggregate.ReceiptVerified(),
		IsArchived:       aggregate.IsArchived(),
		Version:          aggregate.Version(),
	}

	if sample := aggregate.DeliveryLocation(); sample != nil {
		lat, lng := sample.Point.Lat(), sample.Point.Lng()
		accuracy, capturedAt := sample.AccuracyMeters, sample.CapturedAt
		dto.DeliveryLat, dto.DeliveryLng = &lat, &lng
		dto.DeliveryAccuracy, dto.DeliveryCapturedAt = &accuracy, &capturedAt
	}

	if sample := aggregate.CustomerLocation(); sample != nil {
		lat, lng := sample.Point.Lat(), sample.Point.Lng()
		accuracy, capturedAt := sample.AccuracyMeters, sample.CapturedAt
		dto.CustomerLat, dto.CustomerLng = &lat, &lng
		dto.CustomerAccuracy, dto.CustomerCapturedAt = &accuracy, &capturedAt
	}

	return dto
}

// historyFromDomain converts the aggregate's status history to insertable
// rows for the given order id.
func historyFromDomain(orderID int64, entries []order.StatusHistoryEntry) []StatusHistoryDTO {
	rows := make([]StatusHistoryDTO, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, StatusHistoryDTO{
			OrderID:    orderID,
			FromStatus: entry.FromStatus().String(),
			ToStatus:   entry.ToStatus().String(),
			ChangedBy:  entry.ChangedBy(),
			Note:       entry.Note(),
			ChangedAt:  entry.ChangedAt(),
		})
	}
	return rows
}

// toDomain converts database rows to an order domain aggregate.
// Reconstructs the complete aggregate including its history using RestoreOrder.
func toDomain(dto OrderDTO, historyRows []StatusHistoryDTO) (*order.Order, error) {
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	deliveryLocation, err := sampleFromColumns(dto.DeliveryLat, dto.DeliveryLng, dto.DeliveryAccuracy, dto.DeliveryCapturedAt)
	if err != nil {
		return nil, err
	}

	customerLocation, err := sampleFromColumns(dto.CustomerLat, dto.CustomerLng, dto.CustomerAccuracy, dto.CustomerCapturedAt)
	if err != nil {
		return nil, err
	}

	history := make([]order.StatusHistoryEntry, 0, len(historyRows))
	for _, row := range historyRows {
		entry, entryErr := historyEntryToDomain(row)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, entry)
	}

	return order.RestoreOrder(
		dto.ID,
		dto.CustomerID,
		dto.DeliveryPersonID,
		status,
		dto.Total,
		order.PaymentMethod(dto.PaymentMethod),
		dto.ReceiptVerified,
		dto.IsArchived,
		deliveryLocation,
		customerLocation,
		history,
		dto.Version,
	)
}

func historyEntryToDomain(row StatusHistoryDTO) (order.StatusHistoryEntry, error) {
	from, err := parseHistoryStatus(row.FromStatus)
	if err != nil {
		return order.StatusHistoryEntry{}, err
	}

	to, err := order.ParseStatus(row.ToStatus)
	if err != nil {
		return order.StatusHistoryEntry{}, err
	}

	return order.NewStatusHistoryEntry(from, to, row.ChangedBy, row.Note, row.ChangedAt)
}

// parseHistoryStatus accepts Unknown in addition to the real statuses; the
// creation record's from_status has no prior status.
func parseHistoryStatus(value string) (order.Status, error) {
	if value == order.Unknown.String() {
		return order.Unknown, nil
	}
	return order.ParseStatus(value)
}

func sampleFromColumns(lat, lng, accuracy *float64, capturedAt *time.Time) (*kernel.LocationSample, error) {
	if lat == nil || lng == nil || capturedAt == nil {
		return nil, nil
	}

	point, err := kernel.NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}

	accuracyMeters := 0.0
	if accuracy != nil {
		accuracyMeters = *accuracy
	}

	sample, err := kernel.NewLocationSample(point, accuracyMeters, *capturedAt)
	if err != nil {
		return nil, err
	}

	return &sample, nil
}
