package broker

import (
	"fmt"
	"log/slog"

	"ares_go/internal/domain"
)

type bookEntry struct {
	order  *domain.Order
	status domain.OrderStatus
}

// OrderBook lists every order sent to the broker together with its status.
// Orders are validated before they are entered: valid orders carry ACCEPTED
// and later CANCELED or FILLED, invalid orders carry REJECTED. Entries are
// never deleted; the book is the audit trail for the whole session.
//
// OrderBook is not safe for concurrent use. The Broker serializes access.
type OrderBook struct {
	entries map[string]bookEntry
	ids     []string // insertion order, for deterministic listing
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{entries: make(map[string]bookEntry)}
}

// AddOrder inserts an order with its initial status. Only the first
// insertion for an id is allowed.
func (b *OrderBook) AddOrder(order *domain.Order, status domain.OrderStatus) error {
	if _, ok := b.entries[order.ID]; ok {
		return fmt.Errorf("add order %s: %w", order.ID, domain.ErrOrderExists)
	}
	b.entries[order.ID] = bookEntry{order: order, status: status}
	b.ids = append(b.ids, order.ID)
	slog.Info("added order to order book",
		slog.String("order_id", order.ID),
		slog.String("status", string(status)))
	return nil
}

// UpdateOrder transitions an order to a new status. The only legal
// transitions are ACCEPTED -> CANCELED and ACCEPTED -> FILLED.
func (b *OrderBook) UpdateOrder(orderID string, status domain.OrderStatus) error {
	entry, ok := b.entries[orderID]
	if !ok {
		return fmt.Errorf("update order %s: %w", orderID, domain.ErrOrderNotFound)
	}
	if entry.status != domain.OrderStatusAccepted ||
		(status != domain.OrderStatusCanceled && status != domain.OrderStatusFilled) {
		return &domain.TransitionError{OrderID: orderID, From: entry.status, To: status}
	}
	prev := entry.status
	entry.status = status
	b.entries[orderID] = entry
	slog.Info("updated order status",
		slog.String("order_id", orderID),
		slog.String("from", string(prev)),
		slog.String("to", string(status)))
	return nil
}

// GetOrder returns the order and its current status.
func (b *OrderBook) GetOrder(orderID string) (*domain.Order, domain.OrderStatus, error) {
	entry, ok := b.entries[orderID]
	if !ok {
		return nil, "", fmt.Errorf("get order %s: %w", orderID, domain.ErrOrderNotFound)
	}
	return entry.order, entry.status, nil
}

// ListOrders returns orders matching the given filters, in submission
// order. A zero-value filter ("" for either argument) matches everything;
// with no filters every order ever submitted is returned, regardless of
// terminal state.
func (b *OrderBook) ListOrders(status domain.OrderStatus, symbol string) []*domain.Order {
	var result []*domain.Order
	for _, id := range b.ids {
		entry := b.entries[id]
		if status != "" && entry.status != status {
			continue
		}
		if symbol != "" && entry.order.Symbol != symbol {
			continue
		}
		result = append(result, entry.order)
	}
	return result
}

// CountByStatus returns the number of orders currently in the given status.
func (b *OrderBook) CountByStatus(status domain.OrderStatus) int64 {
	var n int64
	for _, entry := range b.entries {
		if entry.status == status {
			n++
		}
	}
	return n
}
