package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeTicks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadTrades(t *testing.T) {
	path := writeTicks(t, "symbol,timestamp,price,quantity\n"+
		"AAPL,1677000000,12.3,100\n"+
		"AAPL,1677000001,12.35,50\n"+
		"TSLA,1677000002,200.5,10\n")

	trades, err := LoadTrades(path)
	if err != nil {
		t.Fatalf("LoadTrades failed: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}

	first := trades[0]
	if first.Symbol != "AAPL" {
		t.Errorf("expected AAPL, got %s", first.Symbol)
	}
	if first.Timestamp != 1677000000 {
		t.Errorf("expected timestamp 1677000000, got %d", first.Timestamp)
	}
	if !first.Price.Equal(decimal.RequireFromString("12.3")) {
		t.Errorf("expected price 12.3, got %s", first.Price)
	}
	if first.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", first.Quantity)
	}
	if trades[2].Symbol != "TSLA" {
		t.Errorf("expected TSLA last, got %s", trades[2].Symbol)
	}
}

func TestLoadTrades_HeaderOnly(t *testing.T) {
	path := writeTicks(t, "symbol,timestamp,price,quantity\n")
	trades, err := LoadTrades(path)
	if err != nil {
		t.Fatalf("LoadTrades failed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}

func TestLoadTrades_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTrades(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("bad price", func(t *testing.T) {
		path := writeTicks(t, "symbol,timestamp,price,quantity\nAAPL,1,notaprice,100\n")
		if _, err := LoadTrades(path); err == nil {
			t.Error("expected error for unparseable price")
		}
	})

	t.Run("short row", func(t *testing.T) {
		path := writeTicks(t, "symbol,timestamp,price\nAAPL,1,12.3\n")
		if _, err := LoadTrades(path); err == nil {
			t.Error("expected error for short row")
		}
	})
}
