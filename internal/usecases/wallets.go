package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// WalletService holds the custodial USDT balance per user and derives the
// per-user BEP20 deposit address from the configured master seed. The
// address is only ever used as a deposit tag; no on-chain calls happen here.
type WalletService struct {
	logger    *slog.Logger
	repo      WalletsRepository
	masterKey *bip32.Key
}

func NewWalletService(logger *slog.Logger, seed string, repo WalletsRepository) (*WalletService, error) {
	seedBytes := bip39.NewSeed(seed, "")
	masterKey, err := bip32.NewMasterKey(seedBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}
	return &WalletService{
		logger:    logger,
		repo:      repo,
		masterKey: masterKey,
	}, nil
}

// Balance returns the caller's wallet, creating an empty one on first use.
func (ws *WalletService) Balance(ctx context.Context, user entities.User) (*entities.Wallet, error) {
	return ws.EnsureWallet(ctx, user)
}

// EnsureWallet returns the existing wallet or creates a zero-balance one.
func (ws *WalletService) EnsureWallet(ctx context.Context, user entities.User) (*entities.Wallet, error) {
	wallet, err := ws.repo.FindWalletByUser(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet, err = ws.repo.UpsertWallet(ctx, &entities.Wallet{
		CreatedBy:      user.Email,
		BalanceUSDT:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	ws.logger.Info("Wallet created", "user", user.Email)
	return wallet, nil
}

// Credit adds confirmed deposited USDT to the balance.
func (ws *WalletService) Credit(ctx context.Context, user entities.User, amount decimal.Decimal) (*entities.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Field: "amount_usdt", Reason: "must be positive"}
	}

	if _, err := ws.EnsureWallet(ctx, user); err != nil {
		return nil, err
	}

	wallet, err := ws.repo.CreditBalance(ctx, user.Email, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	ws.logger.Info("Wallet credited", "user", user.Email, "amount", amount.StringFixed(6))
	return wallet, nil
}

// DepositAddress returns the user's deposit address, deriving and storing it
// on first request. The wallet row id doubles as the HD child index, so the
// same seed always reproduces the same address for a user.
func (ws *WalletService) DepositAddress(ctx context.Context, user entities.User) (string, error) {
	wallet, err := ws.EnsureWallet(ctx, user)
	if err != nil {
		return "", err
	}
	if wallet.DepositAddress != "" {
		return wallet.DepositAddress, nil
	}

	address, err := ws.deriveAddress(uint32(wallet.ID))
	if err != nil {
		return "", err
	}

	wallet.DepositAddress = address
	if _, err = ws.repo.UpsertWallet(ctx, wallet); err != nil {
		return "", fmt.Errorf("failed to store deposit address: %w", err)
	}

	ws.logger.Info("Deposit address assigned", "user", user.Email, "address", address)
	return address, nil
}

func (ws *WalletService) deriveAddress(index uint32) (string, error) {
	childKey, err := ws.masterKey.NewChildKey(index)
	if err != nil {
		return "", fmt.Errorf("failed to derive child key: %w", err)
	}

	privKey, err := crypto.ToECDSA(childKey.Key)
	if err != nil {
		return "", fmt.Errorf("failed to build ECDSA key: %w", err)
	}

	return crypto.PubkeyToAddress(privKey.PublicKey).Hex(), nil
}
