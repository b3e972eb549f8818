package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is the current simulated INR/USDT price. Not persisted.
type RateQuote struct {
	Value   decimal.Decimal `json:"value"`
	ValidAt time.Time       `json:"valid_at"`
}

// PriceAlert fires once when a fresh quote crosses the target rate.
type PriceAlert struct {
	ID          int             `db:"id"           json:"id"`
	CreatedBy   string          `db:"created_by"   json:"created_by"`
	TargetRate  decimal.Decimal `db:"target_rate"  json:"target_rate"`
	Direction   string          `db:"direction"    json:"direction"` // above | below
	Triggered   bool            `db:"triggered"    json:"triggered"`
	CreatedAt   time.Time       `db:"created_at"   json:"created_at"`
	TriggeredAt *time.Time      `db:"triggered_at" json:"triggered_at,omitempty"`
}

const (
	AlertAbove = "above"
	AlertBelow = "below"
)
