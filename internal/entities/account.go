package entities

import "time"

// BankAccount is a payout destination for sell settlements.
type BankAccount struct {
	ID            int       `db:"id"             json:"id"`
	CreatedBy     string    `db:"created_by"     json:"created_by"`
	AccountHolder string    `db:"account_holder" json:"account_holder"`
	BankName      string    `db:"bank_name"      json:"bank_name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	IFSCCode      string    `db:"ifsc_code"      json:"ifsc_code"`
	IsPrimary     bool      `db:"is_primary"     json:"is_primary"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}

// BankAccountUpdate carries the fields of a partial update. Nil means leave
// the column unchanged.
type BankAccountUpdate struct {
	AccountHolder *string
	BankName      *string
	IsPrimary     *bool
}

// ExchangeWallet is an external USDT address the user withdraws bought
// tokens to. The network is an opaque token-standard tag.
type ExchangeWallet struct {
	ID        int       `db:"id"         json:"id"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	Label     string    `db:"label"      json:"label"`
	Network   string    `db:"network"    json:"network"`
	Address   string    `db:"address"    json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Supported token networks.
const (
	NetworkTRC20 = "TRC20"
	NetworkERC20 = "ERC20"
	NetworkBEP20 = "BEP20"
)
