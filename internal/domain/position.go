package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Position tracks holdings for a (symbol, side) key. The account keeps two
// classes of positions per key: open (currently held shares) and closed
// (cumulative history of realized trades, where Quantity is the total
// closed size and AvgPrice stays zero).
//
// AvgPrice and RealizedProfit are rounded to 3 decimal places at the point
// of each update so floating drift never compounds across many small fills.
type Position struct {
	Symbol         string
	Side           OrderSide
	Quantity       int64
	AvgPrice       decimal.Decimal
	RealizedProfit decimal.Decimal
}

// NewPosition creates a position from an opening fill.
func NewPosition(symbol string, side OrderSide, quantity int64, price decimal.Decimal) *Position {
	return &Position{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		AvgPrice: price.Round(3),
	}
}

// Value returns the position's nominal value at the given price.
func (p *Position) Value(currentPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(p.Quantity).Mul(currentPrice)
}

// UnrealizedProfit returns the profit that would be realized by closing the
// whole position at the given price.
func (p *Position) UnrealizedProfit(currentPrice decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(p.Quantity)
	if p.Side == SideShort {
		return qty.Mul(p.AvgPrice.Sub(currentPrice))
	}
	return qty.Mul(currentPrice.Sub(p.AvgPrice))
}

// UpdateQuantity adds delta to the position quantity. Delta is negative for
// a reducing fill.
func (p *Position) UpdateQuantity(delta int64) {
	p.Quantity += delta
}

// UpdateAvgPrice recomputes the weighted average entry price after adding
// quantity shares at price.
func (p *Position) UpdateAvgPrice(price decimal.Decimal, quantity int64) {
	currentTotal := decimal.NewFromInt(p.Quantity).Mul(p.AvgPrice)
	delta := decimal.NewFromInt(abs64(quantity)).Mul(price)
	total := decimal.NewFromInt(p.Quantity + quantity)
	p.AvgPrice = currentTotal.Add(delta).Div(total).Round(3)
}

// AddRealizedProfit accumulates a realized-profit delta, rounded at the
// point of update.
func (p *Position) AddRealizedProfit(delta decimal.Decimal) {
	p.RealizedProfit = p.RealizedProfit.Add(delta.Round(3))
}

func (p *Position) String() string {
	return fmt.Sprintf("%s %d shares of %s at %s", p.Side, p.Quantity, p.Symbol, p.AvgPrice)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
