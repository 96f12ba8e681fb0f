package domain

import "github.com/shopspring/decimal"

// Trade is a single observed trade event (tick) delivered to the engine by
// the replay layer. The matching engine only reads Symbol and Price; ticks
// are treated as infinite liquidity at their price.
type Trade struct {
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}
