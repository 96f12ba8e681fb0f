package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewOrder_PriceResolution(t *testing.T) {
	market, err := NewMarketOrder("AAPL", 100, SideLong, d("99"))
	if err != nil {
		t.Fatalf("NewMarketOrder failed: %v", err)
	}
	if !market.Price.Equal(d("99")) {
		t.Errorf("expected price 99, got %s", market.Price)
	}
	if market.ID != "" {
		t.Errorf("expected empty id before submission, got %q", market.ID)
	}
	if market.TimeInForce != "GTC" {
		t.Errorf("expected GTC, got %s", market.TimeInForce)
	}

	limit, err := NewLimitOrder("AAPL", 100, SideLong, d("12.3"))
	if err != nil {
		t.Fatalf("NewLimitOrder failed: %v", err)
	}
	if !limit.Price.Equal(d("12.3")) {
		t.Errorf("expected price 12.3, got %s", limit.Price)
	}

	stop, err := NewStopOrder("AAPL", -100, SideShort, d("15.7"))
	if err != nil {
		t.Fatalf("NewStopOrder failed: %v", err)
	}
	if !stop.Price.Equal(d("15.7")) {
		t.Errorf("expected price 15.7, got %s", stop.Price)
	}
	if !stop.IsClosing() {
		t.Error("negative quantity order should be closing")
	}
}

func TestNewOrder_Validation(t *testing.T) {
	cases := []struct {
		name   string
		typ    OrderType
		prices Prices
	}{
		{"market without market price", OrderTypeMarket, Prices{}},
		{"market with limit price", OrderTypeMarket, Prices{Market: d("10"), Limit: d("10")}},
		{"market with stop price", OrderTypeMarket, Prices{Market: d("10"), Stop: d("10")}},
		{"limit without limit price", OrderTypeLimit, Prices{Market: d("10")}},
		{"limit with stop price", OrderTypeLimit, Prices{Limit: d("10"), Stop: d("10")}},
		{"stop without stop price", OrderTypeStop, Prices{}},
		{"stop with market price", OrderTypeStop, Prices{Stop: d("10"), Market: d("10")}},
		{"unknown type", OrderType("TRAILING"), Prices{Market: d("10")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder("AAPL", 100, tc.typ, SideLong, tc.prices)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestOrder_Amount(t *testing.T) {
	order, err := NewLimitOrder("AAPL", 100, SideLong, d("12.3"))
	if err != nil {
		t.Fatalf("NewLimitOrder failed: %v", err)
	}
	if !order.Amount().Equal(d("1230")) {
		t.Errorf("expected amount 1230, got %s", order.Amount())
	}

	closing, err := NewLimitOrder("AAPL", -50, SideLong, d("10"))
	if err != nil {
		t.Fatalf("NewLimitOrder failed: %v", err)
	}
	if !closing.Amount().Equal(d("-500")) {
		t.Errorf("expected amount -500, got %s", closing.Amount())
	}
}

func TestOrderSide_Opposite(t *testing.T) {
	if SideLong.Opposite() != SideShort {
		t.Error("LONG opposite should be SHORT")
	}
	if SideShort.Opposite() != SideLong {
		t.Error("SHORT opposite should be LONG")
	}
}
