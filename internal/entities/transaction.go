package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade direction.
type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

// Transaction lifecycle status. A transaction is inserted as pending inside
// the settlement transaction and finalized before commit, so readers only
// ever observe completed or failed rows.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction represents a settled (or failed) exchange trade.
// Immutable after creation except for status.
type Transaction struct {
	ID         uuid.UUID         `db:"id"          json:"id"`
	CreatedBy  string            `db:"created_by"  json:"created_by"`
	Type       TradeDirection    `db:"type"        json:"type"`
	AmountINR  decimal.Decimal   `db:"amount_inr"  json:"amount_inr"`
	AmountUSDT decimal.Decimal   `db:"amount_usdt" json:"amount_usdt"`
	Rate       decimal.Decimal   `db:"rate"        json:"rate"`
	ServiceFee decimal.Decimal   `db:"service_fee" json:"service_fee"`
	NetworkFee decimal.Decimal   `db:"network_fee" json:"network_fee"`
	TotalFee   decimal.Decimal   `db:"total_fee"   json:"total_fee"`
	NetAmount  decimal.Decimal   `db:"net_amount"  json:"net_amount"`
	Status     TransactionStatus `db:"status"      json:"status"`
	Network    string            `db:"network"     json:"network"`
	CreatedAt  time.Time         `db:"created_at"  json:"created_at"`
}

// Reference returns the short identifier shown to users in notifications.
func (t *Transaction) Reference() string {
	return strings.ToUpper(t.ID.String()[:8])
}

// TransactionFilter narrows history listings. Zero values mean "no filter".
type TransactionFilter struct {
	CreatedBy string
	Type      TradeDirection
	Status    TransactionStatus
	Limit     int
}
