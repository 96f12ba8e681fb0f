package broker

import (
	"fmt"
	"log/slog"
	"sync"

	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Fill describes one executed order. It is handed to the broker's fill
// callback right after the ledger update.
type Fill struct {
	OrderID        string
	Symbol         string
	Side           domain.OrderSide
	Quantity       int64
	Price          decimal.Decimal
	RealizedProfit decimal.Decimal
	Timestamp      int64
}

// FillHandler is notified of every fill. It runs synchronously inside
// OnTrade and must not call back into the broker.
type FillHandler func(Fill)

// Broker is the matching engine: it validates and books submitted orders,
// reserves buying power, and fills accepted orders against incoming trade
// ticks. A single mutex serializes SubmitOrder, CancelOrder and OnTrade so
// the multi-step buying-power and available-to-close checks stay atomic.
type Broker struct {
	mu         sync.Mutex
	account    *Account
	book       *OrderBook
	orderCount int64
	onFill     FillHandler
}

// NewBroker creates a broker with the given starting cash. onFill may be
// nil.
func NewBroker(initialBalance decimal.Decimal, onFill FillHandler) *Broker {
	return &Broker{
		account: NewAccount(initialBalance),
		book:    NewOrderBook(),
		onFill:  onFill,
	}
}

// SubmitOrder assigns an id to the order and books it. Orders failing
// business validation (insufficient buying power, opposite-side conflict,
// not enough open quantity to close) are booked as REJECTED rather than
// returning an error; callers inspect the status via GetOrder. An error is
// returned only for an order that was already submitted.
func (b *Broker) SubmitOrder(order *domain.Order) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if order.ID != "" {
		return "", fmt.Errorf("submit order %s: %w", order.ID, domain.ErrOrderExists)
	}
	order.ID = b.nextOrderID()

	ok, tradingAmount := b.validateOrder(order)
	if !ok {
		if err := b.book.AddOrder(order, domain.OrderStatusRejected); err != nil {
			return "", err
		}
		slog.Info("rejected order", slog.String("order", order.String()), slog.String("order_id", order.ID))
		return order.ID, nil
	}

	if err := b.book.AddOrder(order, domain.OrderStatusAccepted); err != nil {
		return "", err
	}
	// Withhold buying power until the order fills or is canceled. Closing
	// orders reserve nothing (tradingAmount is zero).
	b.account.updateBuyingPower(tradingAmount.Neg())
	slog.Info("received order", slog.String("order", order.String()), slog.String("order_id", order.ID))
	return order.ID, nil
}

// CancelOrder cancels an ACCEPTED order and releases its holdback. Closing
// orders never reserved buying power, so nothing is credited back for them.
func (b *Broker) CancelOrder(orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, status, err := b.book.GetOrder(orderID)
	if err != nil {
		return err
	}
	if status != domain.OrderStatusAccepted {
		return fmt.Errorf("cancel order %s: %w", orderID, domain.ErrNotCancelable)
	}
	if order.Quantity > 0 {
		b.account.updateBuyingPower(order.Amount())
	}
	return b.book.UpdateOrder(orderID, domain.OrderStatusCanceled)
}

// OnTrade reacts to a trade tick: every ACCEPTED order on the tick's symbol
// whose execution condition is met fills at the tick price. The tick is
// treated as infinite liquidity, so multiple eligible orders may all fill
// against it.
func (b *Broker) OnTrade(trade domain.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()

	eligible := b.book.ListOrders(domain.OrderStatusAccepted, trade.Symbol)
	for _, order := range eligible {
		if !canExecute(order, trade) {
			continue
		}
		slog.Info("executing order",
			slog.String("order_id", order.ID),
			slog.String("price", trade.Price.String()))
		b.execOrder(order, trade)
	}
}

func (b *Broker) execOrder(order *domain.Order, trade domain.Trade) {
	realized := b.account.UpdatePosition(trade.Price, order)
	if err := b.book.UpdateOrder(order.ID, domain.OrderStatusFilled); err != nil {
		// Unreachable: the order was just listed as ACCEPTED.
		slog.Error("fill transition failed", slog.String("order_id", order.ID), slog.Any("error", err))
		return
	}
	if b.onFill != nil {
		b.onFill(Fill{
			OrderID:        order.ID,
			Symbol:         order.Symbol,
			Side:           order.Side,
			Quantity:       order.Quantity,
			Price:          trade.Price,
			RealizedProfit: realized,
			Timestamp:      trade.Timestamp,
		})
	}
}

// canExecute decides whether a trade tick satisfies an order's execution
// condition. MARKET orders always execute. LIMIT orders execute at or
// better than the target price in the order's favor; STOP orders trigger
// once price crosses the stop in the adverse direction. Closing rules are
// the mirror image of opening rules for the same side.
func canExecute(order *domain.Order, trade domain.Trade) bool {
	if order.Symbol != trade.Symbol {
		return false
	}
	if order.Type == domain.OrderTypeMarket {
		return true
	}

	opening := order.Quantity > 0
	atOrAbove := order.Price.GreaterThanOrEqual(trade.Price)
	atOrBelow := order.Price.LessThanOrEqual(trade.Price)

	if order.Side == domain.SideLong {
		if opening {
			if order.Type == domain.OrderTypeLimit {
				return atOrAbove
			}
			return atOrBelow // STOP
		}
		if order.Type == domain.OrderTypeLimit {
			return atOrBelow
		}
		return atOrAbove // STOP
	}

	// SHORT
	if opening {
		if order.Type == domain.OrderTypeLimit {
			return atOrBelow
		}
		return atOrAbove // STOP
	}
	if order.Type == domain.OrderTypeLimit {
		return atOrAbove
	}
	return atOrBelow // STOP
}

// validateOrder checks whether the account can carry the order. It returns
// the amount to withhold from buying power (zero for closing orders).
func (b *Broker) validateOrder(order *domain.Order) (bool, decimal.Decimal) {
	symbol := order.Symbol
	side := order.Side

	if order.Quantity < 0 {
		// Closing intent: need enough open quantity left after accounting
		// for other accepted closing orders on the same (symbol, side).
		open := b.account.GetOpenPosition(symbol, side)
		if open == nil {
			slog.Info("invalid order: no open position to reduce", slog.String("symbol", symbol))
			return false, decimal.Zero
		}
		var pending int64
		for _, o := range b.book.ListOrders(domain.OrderStatusAccepted, symbol) {
			if o.Side == side && o.Quantity < 0 {
				pending += -o.Quantity
			}
		}
		if open.Quantity-pending < -order.Quantity {
			slog.Info("invalid order: not enough open quantity to close", slog.String("symbol", symbol))
			return false, decimal.Zero
		}
		return true, decimal.Zero
	}

	// Opening or adding: no simultaneous long+short exposure on a symbol,
	// via positions or accepted orders.
	if b.account.GetOpenPosition(symbol, side.Opposite()) != nil {
		slog.Info("invalid order: open position on opposite side", slog.String("symbol", symbol))
		return false, decimal.Zero
	}
	for _, o := range b.book.ListOrders(domain.OrderStatusAccepted, symbol) {
		if o.Side == side.Opposite() {
			slog.Info("invalid order: accepted order on opposite side", slog.String("symbol", symbol))
			return false, decimal.Zero
		}
	}

	amount := order.Amount()
	if amount.GreaterThan(b.account.BuyingPower()) {
		slog.Info("invalid order: insufficient buying power",
			slog.String("symbol", symbol),
			slog.String("amount", amount.String()),
			slog.String("buying_power", b.account.BuyingPower().String()))
		return false, decimal.Zero
	}
	return true, amount
}

func (b *Broker) nextOrderID() string {
	b.orderCount++
	return fmt.Sprintf("X%d", 100000+b.orderCount)
}

// GetOrder returns an order and its status from the book.
func (b *Broker) GetOrder(orderID string) (*domain.Order, domain.OrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.GetOrder(orderID)
}

// ListOrders lists booked orders, optionally filtered by status and symbol
// (zero values match everything).
func (b *Broker) ListOrders(status domain.OrderStatus, symbol string) []*domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.ListOrders(status, symbol)
}

// CountOrders returns the number of booked orders in the given status.
func (b *Broker) CountOrders(status domain.OrderStatus) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.CountByStatus(status)
}

// Balance returns the account cash balance.
func (b *Broker) Balance() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.Balance()
}

// BuyingPower returns the account buying power.
func (b *Broker) BuyingPower() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.BuyingPower()
}

// GetOpenPosition returns the open position for (symbol, side), or nil.
func (b *Broker) GetOpenPosition(symbol string, side domain.OrderSide) *domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.GetOpenPosition(symbol, side)
}

// GetClosedPosition returns the closed position for (symbol, side), or nil.
func (b *Broker) GetClosedPosition(symbol string, side domain.OrderSide) *domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.GetClosedPosition(symbol, side)
}

// ListOpenPositions returns all open positions.
func (b *Broker) ListOpenPositions() []*domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.ListOpenPositions()
}

// ListClosedPositions returns all closed positions.
func (b *Broker) ListClosedPositions() []*domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.account.ListClosedPositions()
}
