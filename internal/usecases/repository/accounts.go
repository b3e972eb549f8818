package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/usecases"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"
)

// AccountsRepository persists bank accounts and external exchange wallets.
type AccountsRepository struct {
	logger *slog.Logger
	db     tx.DBGetter
}

func NewAccountsRepository(logger *slog.Logger, pg *database.Postgres) *AccountsRepository {
	return &AccountsRepository{logger: logger, db: pg.DBGetter}
}

func (r *AccountsRepository) InsertBankAccount(ctx context.Context, account *entities.BankAccount) (*entities.BankAccount, error) {
	query := `INSERT INTO bank_accounts (created_by, account_holder, bank_name, account_number, ifsc_code, is_primary, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := r.db(ctx).QueryRow(ctx, query,
		account.CreatedBy, account.AccountHolder, account.BankName,
		account.AccountNumber, account.IFSCCode, account.IsPrimary, account.CreatedAt).Scan(&account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bank account: %w", err)
	}

	return account, nil
}

func (r *AccountsRepository) FindBankAccounts(ctx context.Context, email string) ([]entities.BankAccount, error) {
	query := `SELECT id, created_by, account_holder, bank_name, account_number, ifsc_code, is_primary, created_at
	            FROM bank_accounts
	           WHERE created_by = $1
	           ORDER BY is_primary DESC, id`

	rows, err := r.db(ctx).Query(ctx, query, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.BankAccount])
	if err != nil {
		r.logger.Error("failed to collect bank account rows", "error", err)
		return nil, err
	}

	return accounts, nil
}

// UpdateBankAccount applies a partial update; nil fields stay untouched.
func (r *AccountsRepository) UpdateBankAccount(ctx context.Context, email string, id int, update entities.BankAccountUpdate) error {
	builder := psql.Update("bank_accounts").
		Where(sq.Eq{"created_by": email, "id": id})

	changed := false
	if update.AccountHolder != nil {
		builder = builder.Set("account_holder", *update.AccountHolder)
		changed = true
	}
	if update.BankName != nil {
		builder = builder.Set("bank_name", *update.BankName)
		changed = true
	}
	if update.IsPrimary != nil {
		builder = builder.Set("is_primary", *update.IsPrimary)
		changed = true
	}
	if !changed {
		return nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bank account update: %w", err)
	}

	result, err := r.db(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update bank account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return usecases.ErrNotFound
	}

	return nil
}

func (r *AccountsRepository) ClearPrimary(ctx context.Context, email string) error {
	_, err := r.db(ctx).Exec(ctx,
		"UPDATE bank_accounts SET is_primary = false WHERE created_by = $1", email)
	if err != nil {
		return fmt.Errorf("failed to clear primary bank account: %w", err)
	}
	return nil
}

func (r *AccountsRepository) DeleteBankAccount(ctx context.Context, email string, id int) error {
	result, err := r.db(ctx).Exec(ctx,
		"DELETE FROM bank_accounts WHERE created_by = $1 AND id = $2", email, id)
	if err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return usecases.ErrNotFound
	}
	return nil
}

func (r *AccountsRepository) InsertExchangeWallet(ctx context.Context, wallet *entities.ExchangeWallet) (*entities.ExchangeWallet, error) {
	query := `INSERT INTO exchange_wallets (created_by, label, network, address, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	err := r.db(ctx).QueryRow(ctx, query,
		wallet.CreatedBy, wallet.Label, wallet.Network, wallet.Address, wallet.CreatedAt).Scan(&wallet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert exchange wallet: %w", err)
	}

	return wallet, nil
}

func (r *AccountsRepository) FindExchangeWallets(ctx context.Context, email string) ([]entities.ExchangeWallet, error) {
	query := `SELECT id, created_by, label, network, address, created_at
	            FROM exchange_wallets
	           WHERE created_by = $1
	           ORDER BY id`

	rows, err := r.db(ctx).Query(ctx, query, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange wallets: %w", err)
	}
	defer rows.Close()

	wallets, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.ExchangeWallet])
	if err != nil {
		r.logger.Error("failed to collect exchange wallet rows", "error", err)
		return nil, err
	}

	return wallets, nil
}

func (r *AccountsRepository) DeleteExchangeWallet(ctx context.Context, email string, id int) error {
	result, err := r.db(ctx).Exec(ctx,
		"DELETE FROM exchange_wallets WHERE created_by = $1 AND id = $2", email, id)
	if err != nil {
		return fmt.Errorf("failed to delete exchange wallet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return usecases.ErrNotFound
	}
	return nil
}
