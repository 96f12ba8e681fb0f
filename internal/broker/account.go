package broker

import (
	"sort"

	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
)

// positionKey identifies a position slot. At most one open and one closed
// position exist per key.
type positionKey struct {
	Symbol string
	Side   domain.OrderSide
}

// Account is the authoritative ledger: cash balance, buying power, and the
// open/closed position maps. Buying power is balance minus the holdbacks of
// accepted-but-unfilled opening orders; each holdback is released exactly
// once, either on fill (at the order's nominal value) or on cancel.
//
// Account is not safe for concurrent use. The Broker serializes access.
type Account struct {
	balance         decimal.Decimal
	buyingPower     decimal.Decimal
	openPositions   map[positionKey]*domain.Position
	closedPositions map[positionKey]*domain.Position
}

// NewAccount creates an account with the given starting cash.
func NewAccount(initialBalance decimal.Decimal) *Account {
	return &Account{
		balance:         initialBalance,
		buyingPower:     initialBalance,
		openPositions:   make(map[positionKey]*domain.Position),
		closedPositions: make(map[positionKey]*domain.Position),
	}
}

// Balance returns the current cash balance.
func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// BuyingPower returns the cash available to reserve for new orders.
func (a *Account) BuyingPower() decimal.Decimal {
	return a.buyingPower
}

// GetOpenPosition returns the open position for (symbol, side), or nil.
func (a *Account) GetOpenPosition(symbol string, side domain.OrderSide) *domain.Position {
	return a.openPositions[positionKey{symbol, side}]
}

// GetClosedPosition returns the cumulative closed position for
// (symbol, side), or nil.
func (a *Account) GetClosedPosition(symbol string, side domain.OrderSide) *domain.Position {
	return a.closedPositions[positionKey{symbol, side}]
}

// ListOpenPositions returns all open positions sorted by symbol.
func (a *Account) ListOpenPositions() []*domain.Position {
	return sortedPositions(a.openPositions)
}

// ListClosedPositions returns all closed positions sorted by symbol.
func (a *Account) ListClosedPositions() []*domain.Position {
	return sortedPositions(a.closedPositions)
}

// UpdatePosition applies a fill at executionPrice to the ledger. It is the
// sole mutator of positions and balance on a fill, and returns the realized
// profit of the fill (zero for opening fills).
//
// For opening fills the actual cost is subtracted from balance and buying
// power, then the original nominal holdback (order quantity * order price)
// is credited back; the net buying-power delta captures slippage between
// the reservation price and the fill price. For reducing fills the net
// proceeds are credited to both and the matching closed position
// accumulates quantity and realized profit.
func (a *Account) UpdatePosition(executionPrice decimal.Decimal, order *domain.Order) decimal.Decimal {
	key := positionKey{order.Symbol, order.Side}
	quantity := order.Quantity
	open := a.openPositions[key]

	if open == nil {
		// Always an opening trade: the broker never accepts a reducing
		// order without a matching open position.
		cost := decimal.NewFromInt(quantity).Mul(executionPrice)
		a.balance = a.balance.Sub(cost)
		a.buyingPower = a.buyingPower.Sub(cost).Add(order.Amount())
		a.openPositions[key] = domain.NewPosition(order.Symbol, order.Side, quantity, executionPrice)
		return decimal.Zero
	}

	if quantity < 0 {
		// Reducing fill: selling on a LONG position or buying back on a
		// SHORT position. The open position's average price is untouched.
		absQty := decimal.NewFromInt(-quantity)
		var realized, netProceeds decimal.Decimal
		if order.Side == domain.SideShort {
			realized = absQty.Mul(open.AvgPrice.Sub(executionPrice))
			netProceeds = open.AvgPrice.Mul(absQty).Add(realized)
		} else {
			realized = absQty.Mul(executionPrice.Sub(open.AvgPrice))
			netProceeds = absQty.Mul(executionPrice)
		}
		a.buyingPower = a.buyingPower.Add(netProceeds)
		a.balance = a.balance.Add(netProceeds)
		open.UpdateQuantity(quantity)

		closed := a.closedPositions[key]
		if closed == nil {
			closed = domain.NewPosition(order.Symbol, order.Side, -quantity, decimal.Zero)
			closed.AddRealizedProfit(realized)
			a.closedPositions[key] = closed
		} else {
			closed.UpdateQuantity(-quantity)
			closed.AddRealizedProfit(realized)
		}

		if open.Quantity == 0 {
			delete(a.openPositions, key)
		}
		return realized
	}

	// Adding to the position: same cash effect as an opening trade, plus a
	// weighted-average recompute.
	cost := decimal.NewFromInt(quantity).Mul(executionPrice)
	a.balance = a.balance.Sub(cost)
	a.buyingPower = a.buyingPower.Sub(cost).Add(order.Amount())
	open.UpdateAvgPrice(executionPrice, quantity)
	open.UpdateQuantity(quantity)
	return decimal.Zero
}

// updateBuyingPower applies a holdback (negative delta) or release.
func (a *Account) updateBuyingPower(delta decimal.Decimal) {
	a.buyingPower = a.buyingPower.Add(delta)
}

func sortedPositions(m map[positionKey]*domain.Position) []*domain.Position {
	result := make([]*domain.Position, 0, len(m))
	for _, p := range m {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Symbol != result[j].Symbol {
			return result[i].Symbol < result[j].Symbol
		}
		return result[i].Side < result[j].Side
	})
	return result
}
