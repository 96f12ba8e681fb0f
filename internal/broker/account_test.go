package broker

import (
	"fmt"
	"testing"

	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustOrder(order *domain.Order, err error) *domain.Order {
	if err != nil {
		panic(fmt.Sprintf("order construction failed: %v", err))
	}
	return order
}

func TestAccount_OpeningFill(t *testing.T) {
	a := NewAccount(d("10000"))
	order := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("12.3")))
	// Simulate the broker's holdback at acceptance.
	a.updateBuyingPower(order.Amount().Neg())
	if !a.BuyingPower().Equal(d("8770")) {
		t.Fatalf("expected buying power 8770 after holdback, got %s", a.BuyingPower())
	}

	realized := a.UpdatePosition(d("12.2"), order)
	if !realized.IsZero() {
		t.Errorf("opening fill should realize nothing, got %s", realized)
	}

	// Actual cost 1220 leaves balance 8780; the 1230 holdback is released,
	// so buying power nets out 10 above balance (reservation slippage).
	if !a.Balance().Equal(d("8780")) {
		t.Errorf("expected balance 8780, got %s", a.Balance())
	}
	if !a.BuyingPower().Equal(d("8780")) {
		t.Errorf("expected buying power 8780, got %s", a.BuyingPower())
	}

	pos := a.GetOpenPosition("AAPL", domain.SideLong)
	if pos == nil {
		t.Fatal("expected open position")
	}
	if pos.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", pos.Quantity)
	}
	if !pos.AvgPrice.Equal(d("12.2")) {
		t.Errorf("expected avg price 12.2, got %s", pos.AvgPrice)
	}
}

func TestAccount_AddingFillRecomputesAverage(t *testing.T) {
	a := NewAccount(d("10000"))
	first := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("12.3")))
	second := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("12.3")))
	a.updateBuyingPower(first.Amount().Neg())
	a.updateBuyingPower(second.Amount().Neg())
	if !a.BuyingPower().Equal(d("7540")) {
		t.Fatalf("expected buying power 7540, got %s", a.BuyingPower())
	}

	a.UpdatePosition(d("12.2"), first)
	a.UpdatePosition(d("12.2"), second)

	if !a.BuyingPower().Equal(d("7560")) {
		t.Errorf("expected buying power 7560, got %s", a.BuyingPower())
	}
	pos := a.GetOpenPosition("AAPL", domain.SideLong)
	if pos == nil {
		t.Fatal("expected open position")
	}
	if pos.Quantity != 200 {
		t.Errorf("expected quantity 200, got %d", pos.Quantity)
	}
	if !pos.AvgPrice.Equal(d("12.2")) {
		t.Errorf("expected avg price 12.2, got %s", pos.AvgPrice)
	}
}

func TestAccount_ClosingLongFill(t *testing.T) {
	a := NewAccount(d("10000"))
	open := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("12.3")))
	a.updateBuyingPower(open.Amount().Neg())
	a.UpdatePosition(d("12.3"), open)

	closing := mustOrder(domain.NewLimitOrder("AAPL", -50, domain.SideLong, d("14.2")))
	realized := a.UpdatePosition(d("14.5"), closing)

	// Realized profit is computed at the execution price: 50*(14.5-12.3).
	if !realized.Equal(d("110")) {
		t.Errorf("expected realized profit 110, got %s", realized)
	}

	pos := a.GetOpenPosition("AAPL", domain.SideLong)
	if pos == nil {
		t.Fatal("expected remaining open position")
	}
	if pos.Quantity != 50 {
		t.Errorf("expected 50 shares left, got %d", pos.Quantity)
	}
	// Average price is untouched by a reducing fill.
	if !pos.AvgPrice.Equal(d("12.3")) {
		t.Errorf("expected avg price 12.3, got %s", pos.AvgPrice)
	}

	closed := a.GetClosedPosition("AAPL", domain.SideLong)
	if closed == nil {
		t.Fatal("expected closed position")
	}
	if closed.Quantity != 50 {
		t.Errorf("expected closed quantity 50, got %d", closed.Quantity)
	}
	if !closed.RealizedProfit.Equal(d("110")) {
		t.Errorf("expected closed realized profit 110, got %s", closed.RealizedProfit)
	}

	// Proceeds 50*14.5 = 725 on both balance and buying power.
	if !a.Balance().Equal(d("9495")) {
		t.Errorf("expected balance 9495, got %s", a.Balance())
	}
	if !a.BuyingPower().Equal(d("9495")) {
		t.Errorf("expected buying power 9495, got %s", a.BuyingPower())
	}
}

func TestAccount_ClosingShortFill(t *testing.T) {
	a := NewAccount(d("10000"))
	open := mustOrder(domain.NewLimitOrder("TSLA", 10, domain.SideShort, d("100")))
	a.updateBuyingPower(open.Amount().Neg())
	a.UpdatePosition(d("100"), open)

	closing := mustOrder(domain.NewLimitOrder("TSLA", -10, domain.SideShort, d("90")))
	realized := a.UpdatePosition(d("90"), closing)

	// 10 * (100 - 90) = 100 profit; proceeds are entry value plus profit.
	if !realized.Equal(d("100")) {
		t.Errorf("expected realized profit 100, got %s", realized)
	}
	if a.GetOpenPosition("TSLA", domain.SideShort) != nil {
		t.Error("fully closed position should be removed from open positions")
	}
	if !a.Balance().Equal(d("10100")) {
		t.Errorf("expected balance 10100, got %s", a.Balance())
	}
	if !a.BuyingPower().Equal(d("10100")) {
		t.Errorf("expected buying power 10100, got %s", a.BuyingPower())
	}
}

func TestAccount_FlatRoundTrip(t *testing.T) {
	// Open and fully close at the same price: zero realized profit, the
	// ledger returns to its starting state.
	a := NewAccount(d("10000"))
	open := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("12.3")))
	a.updateBuyingPower(open.Amount().Neg())
	a.UpdatePosition(d("12.3"), open)

	closing := mustOrder(domain.NewLimitOrder("AAPL", -100, domain.SideLong, d("12.3")))
	realized := a.UpdatePosition(d("12.3"), closing)

	if !realized.IsZero() {
		t.Errorf("expected zero realized profit, got %s", realized)
	}
	if a.GetOpenPosition("AAPL", domain.SideLong) != nil {
		t.Error("expected open position removed")
	}
	closed := a.GetClosedPosition("AAPL", domain.SideLong)
	if closed == nil || !closed.RealizedProfit.IsZero() {
		t.Errorf("expected closed position with zero profit, got %+v", closed)
	}
	if !a.Balance().Equal(d("10000")) {
		t.Errorf("expected balance 10000, got %s", a.Balance())
	}
	if !a.BuyingPower().Equal(d("10000")) {
		t.Errorf("expected buying power 10000, got %s", a.BuyingPower())
	}
}

func TestAccount_ClosedPositionsAccumulate(t *testing.T) {
	a := NewAccount(d("10000"))
	open := mustOrder(domain.NewLimitOrder("AAPL", 100, domain.SideLong, d("10")))
	a.updateBuyingPower(open.Amount().Neg())
	a.UpdatePosition(d("10"), open)

	first := mustOrder(domain.NewLimitOrder("AAPL", -40, domain.SideLong, d("11")))
	a.UpdatePosition(d("11"), first)
	second := mustOrder(domain.NewLimitOrder("AAPL", -60, domain.SideLong, d("12")))
	a.UpdatePosition(d("12"), second)

	closed := a.GetClosedPosition("AAPL", domain.SideLong)
	if closed == nil {
		t.Fatal("expected closed position")
	}
	if closed.Quantity != 100 {
		t.Errorf("expected cumulative closed quantity 100, got %d", closed.Quantity)
	}
	// 40*(11-10) + 60*(12-10) = 160
	if !closed.RealizedProfit.Equal(d("160")) {
		t.Errorf("expected realized profit 160, got %s", closed.RealizedProfit)
	}
	if len(a.ListOpenPositions()) != 0 {
		t.Error("expected no open positions")
	}
	if len(a.ListClosedPositions()) != 1 {
		t.Error("expected one closed position")
	}
}
