package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the custodial USDT balance held for a user.
type Wallet struct {
	ID             int             `db:"id"              json:"id"`
	CreatedBy      string          `db:"created_by"      json:"created_by"`
	BalanceUSDT    decimal.Decimal `db:"balance_usdt"    json:"balance_usdt"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	DepositAddress string          `db:"deposit_address" json:"deposit_address"`
	CreatedAt      time.Time       `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"      json:"updated_at"`
}
