package orderrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// GormOrderRepository implements OrderRepository using GORM.
// Updates use optimistic concurrency: the row's version must match the
// aggregate's loaded version, and each successful update increments it.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id int64, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order and its initial status history to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	rows := historyFromDomain(aggregate.ID(), aggregate.History())
	if len(rows) > 0 {
		if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database, guarded by the version
// column. History entries appended since the aggregate was loaded are
// inserted in the same call.
//
// Returns errs.VersionConflictError when another writer has already moved
// the row past the aggregate's version.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID())
		}
		return errs.NewVersionConflictError("order", aggregate.ID(), aggregate.Version())
	}

	if err := r.appendNewHistory(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// appendNewHistory inserts history entries the database has not seen yet.
// The log is append-only, so the tail beyond the persisted count is exactly
// the set of new entries.
func (r *GormOrderRepository) appendNewHistory(ctx context.Context, aggregate *order.Order) error {
	var persisted int64
	err := r.db.WithContext(ctx).
		Model(&StatusHistoryDTO{}).
		Where("order_id = ?", aggregate.ID()).
		Count(&persisted).Error
	if err != nil {
		return err
	}

	entries := aggregate.History()
	if int(persisted) >= len(entries) {
		return nil
	}

	rows := historyFromDomain(aggregate.ID(), entries[persisted:])
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Get retrieves an order with its full status history by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	if id <= 0 {
		return nil, errs.NewValueIsRequiredError("orderId")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	historyRows, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, historyRows)
}

// GetAllDelivering retrieves all non-archived orders currently out for
// delivery.
func (r *GormOrderRepository) GetAllDelivering(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND is_archived = FALSE", order.Delivering.String()).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		historyRows, historyErr := r.loadHistory(ctx, dto.ID)
		if historyErr != nil {
			return nil, historyErr
		}

		aggregate, domainErr := toDomain(dto, historyRows)
		if domainErr != nil {
			return nil, domainErr
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

func (r *GormOrderRepository) loadHistory(ctx context.Context, orderID int64) ([]StatusHistoryDTO, error) {
	var rows []StatusHistoryDTO
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&rows, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
