package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/usecases"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"
)

// WalletsRepository persists custodial USDT balances.
type WalletsRepository struct {
	logger     *slog.Logger
	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewWalletsRepository(logger *slog.Logger, pg *database.Postgres) *WalletsRepository {
	return &WalletsRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
	}
}

// FindWalletByUser retrieves a user's wallet, nil when none exists yet.
func (r *WalletsRepository) FindWalletByUser(ctx context.Context, email string) (*entities.Wallet, error) {
	query := `SELECT id, created_by, balance_usdt, total_withdrawn, deposit_address, created_at, updated_at
	            FROM wallets
	           WHERE created_by = $1`

	var wallet entities.Wallet
	err := r.db(ctx).QueryRow(ctx, query, email).Scan(
		&wallet.ID,
		&wallet.CreatedBy,
		&wallet.BalanceUSDT,
		&wallet.TotalWithdrawn,
		&wallet.DepositAddress,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet by user: %w", err)
	}

	return &wallet, nil
}

// UpsertWallet creates the wallet row or updates its mutable fields.
func (r *WalletsRepository) UpsertWallet(ctx context.Context, wallet *entities.Wallet) (*entities.Wallet, error) {
	query := `INSERT INTO wallets (created_by, balance_usdt, total_withdrawn, deposit_address, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (created_by)
	          DO UPDATE SET deposit_address = EXCLUDED.deposit_address, updated_at = EXCLUDED.updated_at
	          RETURNING id, created_by, balance_usdt, total_withdrawn, deposit_address, created_at, updated_at`

	var stored entities.Wallet
	err := r.db(ctx).QueryRow(ctx, query,
		wallet.CreatedBy, wallet.BalanceUSDT, wallet.TotalWithdrawn, wallet.DepositAddress, time.Now()).Scan(
		&stored.ID,
		&stored.CreatedBy,
		&stored.BalanceUSDT,
		&stored.TotalWithdrawn,
		&stored.DepositAddress,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return &stored, nil
}

// CreditBalance adds deposited USDT to the balance.
func (r *WalletsRepository) CreditBalance(ctx context.Context, email string, amount decimal.Decimal) (*entities.Wallet, error) {
	query := `UPDATE wallets
	             SET balance_usdt = balance_usdt + $1, updated_at = NOW()
	           WHERE created_by = $2
	          RETURNING id, created_by, balance_usdt, total_withdrawn, deposit_address, created_at, updated_at`

	var wallet entities.Wallet
	err := r.db(ctx).QueryRow(ctx, query, amount, email).Scan(
		&wallet.ID,
		&wallet.CreatedBy,
		&wallet.BalanceUSDT,
		&wallet.TotalWithdrawn,
		&wallet.DepositAddress,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, usecases.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	return &wallet, nil
}

// DebitForWithdrawal applies a sell settlement: decrement the balance and
// increment total_withdrawn, guarded by a compare-and-set on the balance the
// caller just read. A concurrent mutation makes the update match zero rows.
func (r *WalletsRepository) DebitForWithdrawal(ctx context.Context, email string, amount, expectedBalance decimal.Decimal) error {
	result, err := r.db(ctx).Exec(ctx,
		`UPDATE wallets
		    SET balance_usdt = balance_usdt - $1,
		        total_withdrawn = total_withdrawn + $1,
		        updated_at = NOW()
		  WHERE created_by = $2
		    AND balance_usdt = $3
		    AND balance_usdt >= $1`,
		amount, email, expectedBalance)
	if err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		r.logger.Warn("Wallet debit lost compare-and-set", "user", email)
		return usecases.ErrBalanceConflict
	}

	return nil
}
