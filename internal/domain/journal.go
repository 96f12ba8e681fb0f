package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FillRecord is the persisted form of a single fill, one row per executed
// order. RealizedProfit is zero for opening fills.
type FillRecord struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	RunID          string          `gorm:"index" json:"run_id"`
	OrderID        string          `gorm:"index" json:"order_id"`
	Symbol         string          `gorm:"index" json:"symbol"`
	Side           OrderSide       `json:"side"`
	Quantity       int64           `json:"quantity"`
	Price          decimal.Decimal `gorm:"type:numeric" json:"price"`
	RealizedProfit decimal.Decimal `gorm:"type:numeric" json:"realized_profit"`
	TradeTimestamp int64           `json:"trade_timestamp"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RunRecord is the persisted summary of one completed replay run.
type RunRecord struct {
	ID               string          `gorm:"primaryKey" json:"id"`
	Symbol           string          `gorm:"index" json:"symbol"`
	StartingBalance  decimal.Decimal `gorm:"type:numeric" json:"starting_balance"`
	EndingBalance    decimal.Decimal `gorm:"type:numeric" json:"ending_balance"`
	RealizedProfit   decimal.Decimal `gorm:"type:numeric" json:"realized_profit"`
	UnrealizedProfit decimal.Decimal `gorm:"type:numeric" json:"unrealized_profit"`
	TicksReplayed    int64           `json:"ticks_replayed"`
	OrdersSubmitted  int64           `json:"orders_submitted"`
	OrdersFilled     int64           `json:"orders_filled"`
	OrdersRejected   int64           `json:"orders_rejected"`
	CreatedAt        time.Time       `json:"created_at"`
}
