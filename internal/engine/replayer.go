package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ares_go/internal/broker"
	"ares_go/internal/domain"
	"ares_go/internal/infra"
	"ares_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// Replayer drives a backtest: it feeds a time-ordered sequence of trade
// ticks first to the broker (so resting orders can fill) and then to the
// strategy (so it can react and submit new orders). One tick is fully
// processed before the next is considered.
type Replayer struct {
	broker   *broker.Broker
	strategy strategy.Strategy
	metrics  *infra.Metrics

	ticks []domain.Trade
	// Last seen price per symbol, for unrealized-profit valuation.
	lastPrices map[string]decimal.Decimal
}

// Summary is the result of one replay run. ClosedPositions is the
// per-(symbol, side) digest of everything realized during the run.
type Summary struct {
	StartingBalance  decimal.Decimal    `json:"starting_balance"`
	EndingBalance    decimal.Decimal    `json:"ending_balance"`
	BuyingPower      decimal.Decimal    `json:"buying_power"`
	RealizedProfit   decimal.Decimal    `json:"realized_profit"`
	UnrealizedProfit decimal.Decimal    `json:"unrealized_profit"`
	TicksReplayed    int64              `json:"ticks_replayed"`
	OrdersSubmitted  int64              `json:"orders_submitted"`
	OrdersFilled     int64              `json:"orders_filled"`
	OrdersRejected   int64              `json:"orders_rejected"`
	OrdersCanceled   int64              `json:"orders_canceled"`
	OrdersOpen       int64              `json:"orders_open"`
	ClosedPositions  []*domain.Position `json:"closed_positions"`
}

// NewReplayer creates a replayer. The strategy and metrics may be nil.
func NewReplayer(b *broker.Broker, strat strategy.Strategy, metrics *infra.Metrics) *Replayer {
	return &Replayer{
		broker:     b,
		strategy:   strat,
		metrics:    metrics,
		lastPrices: make(map[string]decimal.Decimal),
	}
}

// LoadData sets the tick sequence to replay.
func (r *Replayer) LoadData(ticks []domain.Trade) {
	r.ticks = ticks
}

// Run replays the loaded ticks and returns the run summary. It stops early
// when ctx is canceled.
func (r *Replayer) Run(ctx context.Context) (*Summary, error) {
	slog.Info("starting trade replay", slog.Int("ticks", len(r.ticks)))
	startingBalance := r.broker.Balance()

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", rec))
			r.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", rec))
		}
	}()

	var replayed int64
	for _, tick := range r.ticks {
		select {
		case <-ctx.Done():
			slog.Info("replay canceled", slog.Int64("ticks_replayed", replayed))
			return r.summarize(startingBalance, replayed), ctx.Err()
		default:
		}

		start := time.Now()
		r.broker.OnTrade(tick)
		if r.strategy != nil {
			r.strategy.OnTrade(tick)
		}
		r.lastPrices[tick.Symbol] = tick.Price
		replayed++
		if r.metrics != nil {
			r.metrics.RecordTick(time.Since(start).Nanoseconds())
		}
	}

	summary := r.summarize(startingBalance, replayed)
	slog.Info("replay finished",
		slog.Int64("ticks", summary.TicksReplayed),
		slog.String("ending_balance", summary.EndingBalance.String()),
		slog.String("realized_profit", summary.RealizedProfit.String()))
	return summary, nil
}

func (r *Replayer) summarize(startingBalance decimal.Decimal, replayed int64) *Summary {
	closed := r.broker.ListClosedPositions()
	realized := decimal.Zero
	for _, p := range closed {
		realized = realized.Add(p.RealizedProfit)
	}

	unrealized := decimal.Zero
	for _, p := range r.broker.ListOpenPositions() {
		price, ok := r.lastPrices[p.Symbol]
		if !ok {
			continue
		}
		unrealized = unrealized.Add(p.UnrealizedProfit(price))
	}

	return &Summary{
		StartingBalance:  startingBalance,
		EndingBalance:    r.broker.Balance(),
		BuyingPower:      r.broker.BuyingPower(),
		RealizedProfit:   realized,
		UnrealizedProfit: unrealized,
		TicksReplayed:    replayed,
		OrdersSubmitted:  int64(len(r.broker.ListOrders("", ""))),
		OrdersFilled:     r.broker.CountOrders(domain.OrderStatusFilled),
		OrdersRejected:   r.broker.CountOrders(domain.OrderStatusRejected),
		OrdersCanceled:   r.broker.CountOrders(domain.OrderStatusCanceled),
		OrdersOpen:       r.broker.CountOrders(domain.OrderStatusAccepted),
		ClosedPositions:  closed,
	}
}

// DumpState writes the replayer's view of the world to a file
// (for post-mortem).
func (r *Replayer) DumpState(filename string) {
	slog.Info("dumping replayer state", slog.String("file", filename))

	data := struct {
		LastPrices  map[string]decimal.Decimal `json:"last_prices"`
		Balance     decimal.Decimal            `json:"balance"`
		BuyingPower decimal.Decimal            `json:"buying_power"`
		Open        []*domain.Position         `json:"open_positions"`
		Closed      []*domain.Position         `json:"closed_positions"`
	}{
		LastPrices:  r.lastPrices,
		Balance:     r.broker.Balance(),
		BuyingPower: r.broker.BuyingPower(),
		Open:        r.broker.ListOpenPositions(),
		Closed:      r.broker.ListClosedPositions(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("failed to write state dump", slog.Any("error", err))
	}
}
