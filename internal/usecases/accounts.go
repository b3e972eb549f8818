package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.openly.dev/pointy"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

type BankAccountsRepository interface {
	InsertBankAccount(ctx context.Context, account *entities.BankAccount) (*entities.BankAccount, error)
	FindBankAccounts(ctx context.Context, email string) ([]entities.BankAccount, error)
	UpdateBankAccount(ctx context.Context, email string, id int, update entities.BankAccountUpdate) error
	ClearPrimary(ctx context.Context, email string) error
	DeleteBankAccount(ctx context.Context, email string, id int) error
}

type ExchangeWalletsRepository interface {
	InsertExchangeWallet(ctx context.Context, wallet *entities.ExchangeWallet) (*entities.ExchangeWallet, error)
	FindExchangeWallets(ctx context.Context, email string) ([]entities.ExchangeWallet, error)
	DeleteExchangeWallet(ctx context.Context, email string, id int) error
}

// AccountService manages payout bank accounts and external exchange wallets.
type AccountService struct {
	logger     *slog.Logger
	banks      BankAccountsRepository
	wallets    ExchangeWalletsRepository
	transactor Transactor
}

func NewAccountService(logger *slog.Logger, banks BankAccountsRepository, wallets ExchangeWalletsRepository, transactor Transactor) *AccountService {
	return &AccountService{
		logger:     logger,
		banks:      banks,
		wallets:    wallets,
		transactor: transactor,
	}
}

// AddBankAccount stores a payout account. The first account a user adds
// becomes the primary payout destination.
func (s *AccountService) AddBankAccount(ctx context.Context, user entities.User, account entities.BankAccount) (*entities.BankAccount, error) {
	if account.AccountHolder == "" || account.BankName == "" || account.AccountNumber == "" {
		return nil, &ValidationError{Field: "bank_account", Reason: "holder, bank name and account number are required"}
	}
	if !validIFSC(account.IFSCCode) {
		return nil, &ValidationError{Field: "ifsc_code", Reason: "must be 11 characters (AAAA0XXXXXX)"}
	}

	existing, err := s.banks.FindBankAccounts(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}

	account.CreatedBy = user.Email
	account.IsPrimary = len(existing) == 0
	account.CreatedAt = time.Now()

	created, err := s.banks.InsertBankAccount(ctx, &account)
	if err != nil {
		return nil, fmt.Errorf("failed to add bank account: %w", err)
	}

	s.logger.Info("Bank account added", "user", user.Email, "bank", created.BankName, "primary", created.IsPrimary)
	return created, nil
}

func (s *AccountService) ListBankAccounts(ctx context.Context, user entities.User) ([]entities.BankAccount, error) {
	return s.banks.FindBankAccounts(ctx, user.Email)
}

// SetPrimaryBankAccount moves the primary flag in one transaction so exactly
// one account holds it at any time.
func (s *AccountService) SetPrimaryBankAccount(ctx context.Context, user entities.User, id int) error {
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.banks.ClearPrimary(ctx, user.Email); err != nil {
			return fmt.Errorf("failed to clear primary flag: %w", err)
		}
		update := entities.BankAccountUpdate{IsPrimary: pointy.Bool(true)}
		if err := s.banks.UpdateBankAccount(ctx, user.Email, id, update); err != nil {
			return fmt.Errorf("failed to set primary bank account: %w", err)
		}
		return nil
	})
}

func (s *AccountService) DeleteBankAccount(ctx context.Context, user entities.User, id int) error {
	if err := s.banks.DeleteBankAccount(ctx, user.Email, id); err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	s.logger.Info("Bank account deleted", "user", user.Email, "id", id)
	return nil
}

// AddExchangeWallet stores an external withdrawal address after a
// format check for the declared network.
func (s *AccountService) AddExchangeWallet(ctx context.Context, user entities.User, wallet entities.ExchangeWallet) (*entities.ExchangeWallet, error) {
	if wallet.Label == "" {
		return nil, &ValidationError{Field: "label", Reason: "is required"}
	}
	if err := ValidateWalletAddress(wallet.Network, wallet.Address); err != nil {
		return nil, err
	}

	wallet.CreatedBy = user.Email
	wallet.CreatedAt = time.Now()

	created, err := s.wallets.InsertExchangeWallet(ctx, &wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to add exchange wallet: %w", err)
	}

	s.logger.Info("Exchange wallet added", "user", user.Email, "network", created.Network)
	return created, nil
}

func (s *AccountService) ListExchangeWallets(ctx context.Context, user entities.User) ([]entities.ExchangeWallet, error) {
	return s.wallets.FindExchangeWallets(ctx, user.Email)
}

func (s *AccountService) DeleteExchangeWallet(ctx context.Context, user entities.User, id int) error {
	if err := s.wallets.DeleteExchangeWallet(ctx, user.Email, id); err != nil {
		return fmt.Errorf("failed to delete exchange wallet: %w", err)
	}
	s.logger.Info("Exchange wallet deleted", "user", user.Email, "id", id)
	return nil
}

func validIFSC(code string) bool {
	if len(code) != 11 || code[4] != '0' {
		return false
	}
	for _, c := range code[:4] {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// ValidateWalletAddress checks the address shape for the token network.
// ERC20 and BEP20 share the EVM hex format; TRC20 addresses are base58 with
// a T prefix. Networks stay opaque beyond this.
func ValidateWalletAddress(network, address string) error {
	switch network {
	case entities.NetworkERC20, entities.NetworkBEP20:
		if !common.IsHexAddress(address) {
			return &ValidationError{Field: "address", Reason: "not a valid " + network + " address"}
		}
	case entities.NetworkTRC20:
		if len(address) != 34 || !strings.HasPrefix(address, "T") {
			return &ValidationError{Field: "address", Reason: "not a valid TRC20 address"}
		}
	default:
		return &ValidationError{Field: "network", Reason: "must be TRC20, ERC20 or BEP20"}
	}
	return nil
}
