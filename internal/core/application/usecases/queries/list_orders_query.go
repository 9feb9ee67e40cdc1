package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
)

const (
	// DefaultPageSize applies when the caller does not specify one.
	DefaultPageSize = 20
	// MaxPageSize caps page length regardless of what the caller asks for.
	MaxPageSize = 100
)

// ListOrdersQuery retrieves one page of order summaries. Status filtering is
// optional; archived orders are hidden unless explicitly requested.
//
// Example:
//
//	query, err := NewListOrdersQuery("pending", false, 1, 20)
//	if err != nil {
//	    return err
//	}
//
//	response, etag, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list orders: %w", err)
//	}
//	fmt.Printf("Page %d of %d orders\n", response.Page, response.Total)
type ListOrdersQuery struct { //nolint:recvcheck //using for validation
	status          string
	includeArchived bool
	page            int
	pageSize        int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a listing query.
// An empty status means no status filter; a non-empty status must parse.
// Page defaults to 1 and pageSize to DefaultPageSize, capped at MaxPageSize.
func NewListOrdersQuery(status string, includeArchived bool, page, pageSize int) (ListOrdersQuery, error) {
	query := ListOrdersQuery{
		includeArchived: includeArchived,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setStatus(status),
		query.setPage(page),
		query.setPageSize(pageSize),
	); err != nil {
		return ListOrdersQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrListOrdersQueryIsNotConstructed if validation fails.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Status returns the status filter, or empty for all statuses.
func (q ListOrdersQuery) Status() string {
	return q.status
}

// IncludeArchived reports whether archived orders are included.
func (q ListOrdersQuery) IncludeArchived() bool {
	return q.includeArchived
}

// Page returns the 1-based page number.
func (q ListOrdersQuery) Page() int {
	return q.page
}

// PageSize returns the page length.
func (q ListOrdersQuery) PageSize() int {
	return q.pageSize
}

func (q *ListOrdersQuery) setStatus(status string) error {
	if status == "" {
		return nil
	}

	if _, err := order.ParseStatus(status); err != nil {
		return err
	}

	q.status = status
	return nil
}

func (q *ListOrdersQuery) setPage(page int) error {
	if page < 0 {
		return errs.NewValueIsInvalidError("page")
	}
	if page == 0 {
		page = 1
	}

	q.page = page
	return nil
}

func (q *ListOrdersQuery) setPageSize(pageSize int) error {
	if pageSize < 0 {
		return errs.NewValueIsInvalidError("pageSize")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	q.pageSize = pageSize
	return nil
}

// OrderSummaryResponse is one row of a listing.
type OrderSummaryResponse struct {
	ID               int64     `json:"id"`
	CustomerID       *int64    `json:"customerId,omitempty"`
	DeliveryPersonID *int64    `json:"deliveryPersonId,omitempty"`
	Status           string    `json:"status"`
	Total            string    `json:"total"`
	PaymentMethod    string    `json:"paymentMethod"`
	IsArchived       bool      `json:"isArchived"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ListOrdersQueryResponse is one page of order summaries plus paging
// metadata.
type ListOrdersQueryResponse struct {
	Items    []OrderSummaryResponse `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}
