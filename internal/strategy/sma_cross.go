package strategy

import (
	"log/slog"

	"ares_go/internal/broker"
	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
)

// SMACrossStrategy trades a single symbol on simple-moving-average
// crossovers: a golden cross (short SMA rising through the long SMA) opens
// a LONG position with a market order, a dead cross closes it. It is
// stateful and deterministic, and uses a ring buffer so the per-tick path
// does not allocate.
type SMACrossStrategy struct {
	symbol      string
	shortPeriod int
	longPeriod  int
	orderQty    int64
	broker      *broker.Broker

	// Ring buffer of observed tick prices.
	prices []decimal.Decimal
	head   int
	count  int
	sum    decimal.Decimal

	prevShortSMA decimal.Decimal
	prevLongSMA  decimal.Decimal
	primed       bool
}

// NewSMACrossStrategy creates a new instance bound to the broker it trades
// through.
func NewSMACrossStrategy(b *broker.Broker, symbol string, shortPeriod, longPeriod int, orderQty int64) *SMACrossStrategy {
	if shortPeriod >= longPeriod {
		panic("SMACrossStrategy: shortPeriod must be less than longPeriod")
	}
	return &SMACrossStrategy{
		symbol:      symbol,
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		orderQty:    orderQty,
		broker:      b,
		prices:      make([]decimal.Decimal, longPeriod),
	}
}

// OnTrade consumes a tick, updates the SMAs, and submits orders on a cross.
func (s *SMACrossStrategy) OnTrade(trade domain.Trade) {
	if trade.Symbol != s.symbol {
		return
	}

	// If full, drop the oldest value from the running sum before
	// overwriting. head points to the oldest slot when the buffer is full.
	if s.count == s.longPeriod {
		s.sum = s.sum.Sub(s.prices[s.head])
	}
	s.prices[s.head] = trade.Price
	s.sum = s.sum.Add(trade.Price)
	s.head = (s.head + 1) % s.longPeriod
	if s.count < s.longPeriod {
		s.count++
	}
	if s.count < s.longPeriod {
		return
	}

	currLongSMA := s.sum.Div(decimal.NewFromInt(int64(s.longPeriod)))
	currShortSMA := s.shortSMA()

	if s.primed {
		goldenCross := s.prevShortSMA.LessThanOrEqual(s.prevLongSMA) && currShortSMA.GreaterThan(currLongSMA)
		deadCross := s.prevShortSMA.GreaterThanOrEqual(s.prevLongSMA) && currShortSMA.LessThan(currLongSMA)

		if goldenCross {
			s.open(trade.Price)
		}
		if deadCross {
			s.close(trade.Price)
		}
	}

	s.prevShortSMA = currShortSMA
	s.prevLongSMA = currLongSMA
	s.primed = true
}

func (s *SMACrossStrategy) open(price decimal.Decimal) {
	if s.broker.GetOpenPosition(s.symbol, domain.SideLong) != nil {
		return
	}
	order, err := domain.NewMarketOrder(s.symbol, s.orderQty, domain.SideLong, price)
	if err != nil {
		slog.Error("sma_cross: build open order", slog.Any("error", err))
		return
	}
	id, err := s.broker.SubmitOrder(order)
	if err != nil {
		slog.Error("sma_cross: submit open order", slog.Any("error", err))
		return
	}
	slog.Info("sma_cross: golden cross, opening long",
		slog.String("symbol", s.symbol), slog.String("order_id", id))
}

func (s *SMACrossStrategy) close(price decimal.Decimal) {
	open := s.broker.GetOpenPosition(s.symbol, domain.SideLong)
	if open == nil {
		return
	}
	order, err := domain.NewMarketOrder(s.symbol, -open.Quantity, domain.SideLong, price)
	if err != nil {
		slog.Error("sma_cross: build close order", slog.Any("error", err))
		return
	}
	id, err := s.broker.SubmitOrder(order)
	if err != nil {
		slog.Error("sma_cross: submit close order", slog.Any("error", err))
		return
	}
	slog.Info("sma_cross: dead cross, closing long",
		slog.String("symbol", s.symbol), slog.String("order_id", id))
}

// shortSMA walks the ring buffer backwards from the latest value.
func (s *SMACrossStrategy) shortSMA() decimal.Decimal {
	sum := decimal.Zero
	idx := s.head
	for i := 0; i < s.shortPeriod; i++ {
		idx--
		if idx < 0 {
			idx = s.longPeriod - 1
		}
		sum = sum.Add(s.prices[idx])
	}
	return sum.Div(decimal.NewFromInt(int64(s.shortPeriod)))
}
