package queries

import (
	"context"
	"time"

	"gorm.io/gorm"

	"orderflow/internal/cache"
	"orderflow/internal/pkg/errs"
)

// ListOrdersQueryHandler retrieves order listings through the cache
// coordinator. Every filter/page combination caches independently; any order
// write invalidates the whole listing namespace.
type ListOrdersQueryHandler struct {
	db          *gorm.DB
	coordinator *cache.Coordinator
	ttl         time.Duration
}

// NewListOrdersQueryHandler creates a handler for order listings.
// Requires a GORM database connection and the shared cache coordinator.
func NewListOrdersQueryHandler(db *gorm.DB, coordinator *cache.Coordinator, ttl time.Duration) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{
		db:          db,
		coordinator: coordinator,
		ttl:         ttl,
	}
}

// Handle executes the query. Returns the page payload and the cache ETag for
// conditional requests.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (ListOrdersQueryResponse, string, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, "", err
	}

	key := cache.OrderListKey(query.Status(), query.IncludeArchived(), query.Page(), query.PageSize())
	entry, err := h.coordinator.GetOrFetch(ctx, key, h.ttl,
		func(ctx context.Context) (any, error) {
			return h.load(ctx, query)
		})
	if err != nil {
		return ListOrdersQueryResponse{}, "", err
	}

	response, ok := entry.Value.(ListOrdersQueryResponse)
	if !ok {
		return ListOrdersQueryResponse{}, "", errs.NewValueIsInvalidError("cached listing payload")
	}

	return response, entry.ETag, nil
}

func (h ListOrdersQueryHandler) load(ctx context.Context, query ListOrdersQuery) (ListOrdersQueryResponse, error) {
	where := "1=1"
	args := make([]any, 0, 2)

	if query.Status() != "" {
		where += " AND status = ?"
		args = append(args, query.Status())
	}
	if !query.IncludeArchived() {
		where += " AND is_archived = FALSE"
	}

	var total int64
	err := h.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM orders WHERE "+where, args...).
		Scan(&total).Error
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}

	items := make([]OrderSummaryResponse, 0, query.PageSize())
	offset := (query.Page() - 1) * query.PageSize()
	pageArgs := append(args, query.PageSize(), offset)

	err = h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			delivery_person_id,
			status,
			total,
			payment_method,
			is_archived,
			updated_at
		FROM orders
		WHERE `+where+`
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, pageArgs...).Scan(&items).Error
	if err != nil {
		return ListOrdersQueryResponse{}, err
	}

	return ListOrdersQueryResponse{
		Items:    items,
		Total:    total,
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}, nil
}
