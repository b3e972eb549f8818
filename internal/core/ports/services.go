package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// TradeService runs the trade authorization workflow end to end.
type TradeService interface {
	SubmitTrade(ctx context.Context, user entities.User, req entities.TradeRequest) (*entities.Transaction, error)
	History(ctx context.Context, filter entities.TransactionFilter) ([]entities.Transaction, error)
}

// WalletService manages the custodial USDT balance per user.
type WalletService interface {
	Balance(ctx context.Context, user entities.User) (*entities.Wallet, error)
	EnsureWallet(ctx context.Context, user entities.User) (*entities.Wallet, error)
	Credit(ctx context.Context, user entities.User, amount decimal.Decimal) (*entities.Wallet, error)
	DepositAddress(ctx context.Context, user entities.User) (string, error)
}

// KycService resolves and gates on the caller's verification record.
type KycService interface {
	StatusFor(ctx context.Context, user entities.User) (*entities.KycVerification, error)
	Authorize(ctx context.Context, user entities.User) error
}

// AccountService manages bank accounts and external exchange wallets.
type AccountService interface {
	AddBankAccount(ctx context.Context, user entities.User, account entities.BankAccount) (*entities.BankAccount, error)
	ListBankAccounts(ctx context.Context, user entities.User) ([]entities.BankAccount, error)
	SetPrimaryBankAccount(ctx context.Context, user entities.User, id int) error
	DeleteBankAccount(ctx context.Context, user entities.User, id int) error

	AddExchangeWallet(ctx context.Context, user entities.User, wallet entities.ExchangeWallet) (*entities.ExchangeWallet, error)
	ListExchangeWallets(ctx context.Context, user entities.User) ([]entities.ExchangeWallet, error)
	DeleteExchangeWallet(ctx context.Context, user entities.User, id int) error
}

// RateService owns the current simulated quote.
type RateService interface {
	Current() entities.RateQuote
	Refresh() entities.RateQuote
	Subscribe(ch chan<- entities.RateQuote) func()
}

// IdentityProvider resolves the caller behind the request. Logout is the
// auth proxy's concern and has no server-side counterpart here.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (entities.User, bool)
}
