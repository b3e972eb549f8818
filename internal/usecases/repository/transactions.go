package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/usecases"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"
)

const defaultHistoryLimit = 50

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// TransactionsRepository persists settled trades.
type TransactionsRepository struct {
	logger     *slog.Logger
	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewTransactionsRepository(logger *slog.Logger, pg *database.Postgres) *TransactionsRepository {
	return &TransactionsRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
	}
}

// InsertTransaction stores a new transaction row.
func (r *TransactionsRepository) InsertTransaction(ctx context.Context, txn *entities.Transaction) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO transactions
		     (id, created_by, type, amount_inr, amount_usdt, rate, service_fee, network_fee, total_fee, net_amount, status, network, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		txn.ID, txn.CreatedBy, txn.Type, txn.AmountINR, txn.AmountUSDT, txn.Rate,
		txn.ServiceFee, txn.NetworkFee, txn.TotalFee, txn.NetAmount, txn.Status, txn.Network, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	r.logger.Info("Transaction recorded", "id", txn.ID, "type", txn.Type, "status", txn.Status)
	return nil
}

// FinalizeTransaction flips the status of a pending transaction.
func (r *TransactionsRepository) FinalizeTransaction(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	_, err := r.db(ctx).Exec(ctx,
		"UPDATE transactions SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to finalize transaction: %w", err)
	}
	return nil
}

// FindTransactions lists transactions newest first, with optional type and
// status filters.
func (r *TransactionsRepository) FindTransactions(ctx context.Context, filter entities.TransactionFilter) ([]entities.Transaction, error) {
	builder := psql.
		Select("id", "created_by", "type", "amount_inr", "amount_usdt", "rate",
			"service_fee", "network_fee", "total_fee", "net_amount", "status", "network", "created_at").
		From("transactions").
		OrderBy("created_at DESC")

	if filter.CreatedBy != "" {
		builder = builder.Where(sq.Eq{"created_by": filter.CreatedBy})
	}
	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"type": filter.Type})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	builder = builder.Limit(uint64(limit))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Transaction])
	if err != nil {
		r.logger.Error("failed to collect transaction rows", "error", err)
		return nil, err
	}

	return transactions, nil
}

// CountCompletedTrades counts a user's completed transactions.
func (r *TransactionsRepository) CountCompletedTrades(ctx context.Context, email string) (int, error) {
	var count int
	err := r.db(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE created_by = $1 AND status = 'completed'",
		email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed trades: %w", err)
	}
	return count, nil
}

// CompletedTradesSince counts completed transactions after the given time.
func (r *TransactionsRepository) CompletedTradesSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.db(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE created_by = $1 AND status = 'completed' AND created_at >= $2",
		email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent trades: %w", err)
	}
	return count, nil
}

// TotalTradedINR sums the INR volume of a user's completed transactions.
func (r *TransactionsRepository) TotalTradedINR(ctx context.Context, email string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db(ctx).QueryRow(ctx,
		"SELECT COALESCE(SUM(amount_inr), 0) FROM transactions WHERE created_by = $1 AND status = 'completed'",
		email).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum traded volume: %w", err)
	}
	return total, nil
}

// AggregateEarnings sums platform fees over completed transactions.
func (r *TransactionsRepository) AggregateEarnings(ctx context.Context, from *time.Time) (*usecases.EarningsReport, error) {
	builder := psql.
		Select("COUNT(*)",
			"COALESCE(SUM(service_fee), 0)",
			"COALESCE(SUM(network_fee), 0)",
			"COALESCE(SUM(total_fee), 0)",
			"COALESCE(SUM(amount_inr), 0)").
		From("transactions").
		Where(sq.Eq{"status": entities.TransactionCompleted})

	if from != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *from})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build earnings query: %w", err)
	}

	var report usecases.EarningsReport
	err = r.db(ctx).QueryRow(ctx, query, args...).Scan(
		&report.TransactionCount,
		&report.ServiceFeeINR,
		&report.NetworkFeeINR,
		&report.TotalFeeINR,
		&report.VolumeINR,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}

	return &report, nil
}
