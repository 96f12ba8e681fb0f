package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ares_go/internal/app"
	"ares_go/internal/broker"
	"ares_go/internal/domain"
	"ares_go/internal/engine"
	"ares_go/internal/infra"
	"ares_go/internal/infra/storage"
	"ares_go/internal/marketdata"
	"ares_go/internal/strategy"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ares",
		Short: "Trade-replay backtest engine",
	}

	var configPath string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a tick file through the broker and strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to config file")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		return err
	}
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticks, err := marketdata.LoadTrades(cfg.Backtest.DataFile)
	if err != nil {
		slog.Error("failed to load tick data", slog.Any("error", err))
		return err
	}
	slog.Info("tick data loaded",
		slog.String("file", cfg.Backtest.DataFile),
		slog.Int("ticks", len(ticks)))

	metrics := &infra.Metrics{}
	runID := storage.NewRunID()

	b := broker.NewBroker(cfg.Backtest.InitialBalance, func(fill broker.Fill) {
		metrics.RecordFill()
		if bootstrap.Journal == nil {
			return
		}
		rec := fillRecord(runID, fill)
		if err := bootstrap.Journal.RecordFill(rec); err != nil {
			metrics.RecordError()
			slog.Error("failed to journal fill", slog.String("order_id", fill.OrderID), slog.Any("error", err))
		}
	})

	var strat strategy.Strategy
	if cfg.Strategy.LongPeriod > 0 {
		strat = strategy.NewSMACrossStrategy(b, cfg.Backtest.Symbol,
			cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod, cfg.Strategy.OrderQty)
	}

	replayer := engine.NewReplayer(b, strat, metrics)
	replayer.LoadData(ticks)

	summary, runErr := replayer.Run(ctx)

	if bootstrap.Journal != nil {
		if err := bootstrap.Journal.RecordRun(runRecord(runID, cfg.Backtest.Symbol, summary)); err != nil {
			slog.Error("failed to journal run", slog.Any("error", err))
		}
	}

	snap := metrics.Snapshot()
	slog.Info("run metrics",
		slog.Uint64("ticks", snap.TicksReplayed),
		slog.Uint64("fills", snap.OrdersFilled),
		slog.Int64("avg_tick_latency_ns", snap.AvgLatencyNs))

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return runErr
}

func fillRecord(runID string, fill broker.Fill) *domain.FillRecord {
	return &domain.FillRecord{
		RunID:          runID,
		OrderID:        fill.OrderID,
		Symbol:         fill.Symbol,
		Side:           fill.Side,
		Quantity:       fill.Quantity,
		Price:          fill.Price,
		RealizedProfit: fill.RealizedProfit,
		TradeTimestamp: fill.Timestamp,
	}
}

func runRecord(runID, symbol string, s *engine.Summary) *domain.RunRecord {
	return &domain.RunRecord{
		ID:               runID,
		Symbol:           symbol,
		StartingBalance:  s.StartingBalance,
		EndingBalance:    s.EndingBalance,
		RealizedProfit:   s.RealizedProfit,
		UnrealizedProfit: s.UnrealizedProfit,
		TicksReplayed:    s.TicksReplayed,
		OrdersSubmitted:  s.OrdersSubmitted,
		OrdersFilled:     s.OrdersFilled,
		OrdersRejected:   s.OrdersRejected,
	}
}
