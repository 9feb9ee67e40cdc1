package cache

import "fmt"

// Cache key namespaces. Keys are hierarchical so that Invalidate with a
// prefix drops a whole namespace at once.
const (
	// OrdersPrefix covers every order-related entry.
	OrdersPrefix = "orders"

	// OrderListPrefix covers every paginated order listing.
	OrderListPrefix = "orders:list"
)

// OrderItemKey is the cache key for a single order payload.
func OrderItemKey(orderID int64) string {
	return fmt.Sprintf("orders:item:%d", orderID)
}

// OrderListKey is the cache key for one page of an order listing.
func OrderListKey(status string, includeArchived bool, page, pageSize int) string {
	return fmt.Sprintf("orders:list:status=%s:archived=%t:page=%d:size=%d",
		status, includeArchived, page, pageSize)
}
