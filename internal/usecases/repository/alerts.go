package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"
)

// AlertsRepository persists one-shot price alerts.
type AlertsRepository struct {
	logger *slog.Logger
	db     tx.DBGetter
}

func NewAlertsRepository(logger *slog.Logger, pg *database.Postgres) *AlertsRepository {
	return &AlertsRepository{logger: logger, db: pg.DBGetter}
}

func (r *AlertsRepository) InsertAlert(ctx context.Context, alert *entities.PriceAlert) (*entities.PriceAlert, error) {
	query := `INSERT INTO price_alerts (created_by, target_rate, direction, triggered, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	err := r.db(ctx).QueryRow(ctx, query,
		alert.CreatedBy, alert.TargetRate, alert.Direction, alert.Triggered, alert.CreatedAt).Scan(&alert.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert price alert: %w", err)
	}

	return alert, nil
}

func (r *AlertsRepository) FindAlerts(ctx context.Context, email string) ([]entities.PriceAlert, error) {
	query := `SELECT id, created_by, target_rate, direction, triggered, created_at, triggered_at
	            FROM price_alerts
	           WHERE created_by = $1
	           ORDER BY created_at DESC`

	return r.collectAlerts(ctx, query, email)
}

func (r *AlertsRepository) FindActiveAlerts(ctx context.Context) ([]entities.PriceAlert, error) {
	query := `SELECT id, created_by, target_rate, direction, triggered, created_at, triggered_at
	            FROM price_alerts
	           WHERE triggered = false`

	return r.collectAlerts(ctx, query)
}

func (r *AlertsRepository) MarkTriggered(ctx context.Context, id int, at time.Time) error {
	_, err := r.db(ctx).Exec(ctx,
		"UPDATE price_alerts SET triggered = true, triggered_at = $1 WHERE id = $2 AND triggered = false",
		at, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert triggered: %w", err)
	}
	return nil
}

func (r *AlertsRepository) collectAlerts(ctx context.Context, query string, args ...any) ([]entities.PriceAlert, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price alerts: %w", err)
	}
	defer rows.Close()

	alerts, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.PriceAlert])
	if err != nil {
		r.logger.Error("failed to collect price alert rows", "error", err)
		return nil, err
	}

	return alerts, nil
}
