// Package notifications implements the real-time fan-out hub for order events.
//
// The hub is an explicit registry of connections keyed by connection id, each
// holding a buffered event channel and a set of group memberships. Delivery
// is best-effort and at-most-once per connected subscriber: publishing never
// blocks the caller, slow subscribers have events dropped, and disconnected
// subscribers simply miss events (no queueing, no replay).
//
// Every order-level event is broadcast to the "all" and "admin" groups plus
// the per-order group; within a single group, events for the same order are
// delivered in publish order (the command layer serializes writers per order).
package notifications

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/metrics"
	"orderflow/internal/pkg/errs"
)

// Subscriber group names. Delivery clients additionally join per-order
// groups created by OrderGroup.
const (
	// GroupAll receives every order event (broad listeners).
	GroupAll = "all"
	// GroupAdmin receives every order event (privileged dashboard).
	GroupAdmin = "admin"
)

// OrderGroup returns the per-order group name.
func OrderGroup(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// Event is the minimal status projection pushed to subscribers.
// Never the full order: broad groups must not see unrelated data.
type Event struct {
	OrderID            int64     `json:"orderId"`
	Status             string    `json:"status"`
	DeliveryPersonName *string   `json:"deliveryPersonName,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

type connection struct {
	ch     chan Event
	groups map[string]struct{}
}

// Hub is the thread-safe subscription registry and publisher.
type Hub struct {
	mu         sync.RWMutex
	bufferSize int
	conns      map[string]*connection
	groups     map[string]map[string]*connection
	logger     *slog.Logger
}

// NewHub creates a hub whose subscriber channels buffer bufferSize events
// before drops begin.
func NewHub(bufferSize int, logger *slog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		bufferSize: bufferSize,
		conns:      make(map[string]*connection),
		groups:     make(map[string]map[string]*connection),
		logger:     logger.With("component", "notification_hub"),
	}
}

// Subscribe adds the connection to a group, creating the connection's event
// channel on first use. A connection subscribed to several groups receives
// all of them on the same channel.
func (h *Hub) Subscribe(connID, group string) (<-chan Event, error) {
	if connID == "" {
		return nil, errs.NewValueIsRequiredError("connectionId")
	}
	if group == "" {
		return nil, errs.NewValueIsRequiredError("group")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		conn = &connection{
			ch:     make(chan Event, h.bufferSize),
			groups: make(map[string]struct{}),
		}
		h.conns[connID] = conn
	}

	conn.groups[group] = struct{}{}

	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*connection)
		h.groups[group] = members
	}
	members[connID] = conn

	return conn.ch, nil
}

// Unsubscribe removes the connection from a single group. The connection and
// its channel survive until Disconnect.
func (h *Hub) Unsubscribe(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}

	delete(conn.groups, group)
	if members, ok := h.groups[group]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// Disconnect removes the connection from every group and closes its channel.
// Safe to call for unknown connections and safe to call twice.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}

	for group := range conn.groups {
		if members, ok := h.groups[group]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.groups, group)
			}
		}
	}

	delete(h.conns, connID)
	close(conn.ch)
}

// Publish delivers the event to every member of the group without blocking.
// Events for subscribers with full buffers are dropped. Returns the number
// of subscribers the event was handed to.
func (h *Hub) Publish(group string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	metrics.NotificationsPublishedTotal.WithLabelValues(group).Inc()

	delivered := 0
	for connID, conn := range h.groups[group] {
		select {
		case conn.ch <- event:
			delivered++
		default:
			metrics.NotificationsDroppedTotal.Inc()
			h.logger.Warn("dropping event for slow subscriber",
				"connection_id", connID, "group", group, "order_id", event.OrderID)
		}
	}

	return delivered
}

// Broadcast publishes an order event to the broad, admin, and per-order
// groups in that fixed order.
func (h *Hub) Broadcast(event Event) {
	h.Publish(GroupAll, event)
	h.Publish(GroupAdmin, event)
	h.Publish(OrderGroup(event.OrderID), event)
}

// SubscriberCount returns the number of members of a group.
func (h *Hub) SubscriberCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
