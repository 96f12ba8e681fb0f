package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderType identifies how an order's price condition is interpreted.
type OrderType string

// OrderSide identifies the direction of the position the order works on.
type OrderSide string

// OrderStatus is the lifecycle state of a submitted order.
type OrderStatus string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeStop   OrderType = "STOP"

	SideLong  OrderSide = "LONG"
	SideShort OrderSide = "SHORT"

	// Legal transitions: ACCEPTED -> CANCELED or ACCEPTED -> FILLED.
	// REJECTED is assigned only at submission and is terminal.
	OrderStatusAccepted OrderStatus = "ACCEPTED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusFilled   OrderStatus = "FILLED"
)

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// Prices carries the constructor price fields. Exactly one must be set
// (non-zero), and it must match the order type. Zero means unset.
type Prices struct {
	Market decimal.Decimal
	Limit  decimal.Decimal
	Stop   decimal.Decimal
}

// Order is an immutable intent to trade. Quantity sign carries opening
// intent: positive opens or adds to a position, negative reduces one.
// ID stays empty until the broker assigns it at submission.
type Order struct {
	ID          string
	Symbol      string
	Quantity    int64
	Type        OrderType
	Side        OrderSide
	TimeInForce string
	// Price is resolved from the one supplied price field. For MARKET
	// orders it is only used to check account balance, not to trade.
	Price decimal.Decimal
}

// NewOrder validates and builds an order. It fails with a ValidationError
// when the supplied price fields do not match the order type.
func NewOrder(symbol string, quantity int64, typ OrderType, side OrderSide, prices Prices) (*Order, error) {
	o := &Order{
		Symbol:      symbol,
		Quantity:    quantity,
		Type:        typ,
		Side:        side,
		TimeInForce: "GTC",
	}

	switch typ {
	case OrderTypeMarket:
		if !prices.Limit.IsZero() || !prices.Stop.IsZero() || prices.Market.IsZero() {
			return nil, &ValidationError{Reason: "you must and only can specify market price for a market order"}
		}
	case OrderTypeLimit:
		if !prices.Stop.IsZero() || !prices.Market.IsZero() || prices.Limit.IsZero() {
			return nil, &ValidationError{Reason: "you must and only can specify limit price for a limit order"}
		}
	case OrderTypeStop:
		if !prices.Limit.IsZero() || !prices.Market.IsZero() || prices.Stop.IsZero() {
			return nil, &ValidationError{Reason: "you must and only can specify stop price for a stop order"}
		}
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown order type %q", typ)}
	}

	switch {
	case !prices.Stop.IsZero():
		o.Price = prices.Stop
	case !prices.Limit.IsZero():
		o.Price = prices.Limit
	default:
		o.Price = prices.Market
	}
	return o, nil
}

// NewMarketOrder builds a MARKET order. The market price is the reference
// price used for the buying-power check, not an execution price.
func NewMarketOrder(symbol string, quantity int64, side OrderSide, marketPrice decimal.Decimal) (*Order, error) {
	return NewOrder(symbol, quantity, OrderTypeMarket, side, Prices{Market: marketPrice})
}

// NewLimitOrder builds a LIMIT order.
func NewLimitOrder(symbol string, quantity int64, side OrderSide, limitPrice decimal.Decimal) (*Order, error) {
	return NewOrder(symbol, quantity, OrderTypeLimit, side, Prices{Limit: limitPrice})
}

// NewStopOrder builds a STOP order.
func NewStopOrder(symbol string, quantity int64, side OrderSide, stopPrice decimal.Decimal) (*Order, error) {
	return NewOrder(symbol, quantity, OrderTypeStop, side, Prices{Stop: stopPrice})
}

// IsClosing reports whether the order reduces an existing position.
func (o *Order) IsClosing() bool {
	return o.Quantity < 0
}

// Amount returns quantity * price, the nominal order value used for
// buying-power holdback.
func (o *Order) Amount() decimal.Decimal {
	return decimal.NewFromInt(o.Quantity).Mul(o.Price)
}

func (o *Order) String() string {
	if o.Type == OrderTypeMarket {
		return fmt.Sprintf("%d %s %s order of %s", o.Quantity, o.Side, o.Type, o.Symbol)
	}
	return fmt.Sprintf("%d %s %s order of %s at %s", o.Quantity, o.Side, o.Type, o.Symbol, o.Price)
}
