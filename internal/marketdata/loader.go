package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"ares_go/internal/domain"

	"github.com/shopspring/decimal"
)

// LoadTrades reads a tick file into a trade sequence. The expected format
// is CSV with a header row and columns symbol,timestamp,price,quantity.
// Rows are returned in file order; the replay layer assumes they are
// already time-ordered.
func LoadTrades(path string) ([]domain.Trade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trade file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trade file %s is empty", path)
	}

	// Skip header
	records = records[1:]

	trades := make([]domain.Trade, 0, len(records))
	for i, record := range records {
		trade, err := parseTrade(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func parseTrade(record []string) (domain.Trade, error) {
	if len(record) < 4 {
		return domain.Trade{}, fmt.Errorf("expected 4 columns, got %d", len(record))
	}

	timestamp, err := strconv.ParseInt(record[1], 10, 64)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse timestamp %q: %w", record[1], err)
	}
	price, err := decimal.NewFromString(record[2])
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse price %q: %w", record[2], err)
	}
	quantity, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("parse quantity %q: %w", record[3], err)
	}

	return domain.Trade{
		Symbol:    record[0],
		Timestamp: timestamp,
		Price:     price,
		Quantity:  quantity,
	}, nil
}
