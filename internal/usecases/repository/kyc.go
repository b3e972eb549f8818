package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/pkg/database"
)

// KycRepository reads verification records written by the external KYC flow.
type KycRepository struct {
	logger *slog.Logger
	db     tx.DBGetter
}

func NewKycRepository(logger *slog.Logger, pg *database.Postgres) *KycRepository {
	return &KycRepository{logger: logger, db: pg.DBGetter}
}

// FindByUser returns the newest verification record for a user, nil when
// none has been submitted.
func (r *KycRepository) FindByUser(ctx context.Context, email string) (*entities.KycVerification, error) {
	query := `SELECT id, created_by, status, full_name, document_type, created_at, updated_at
	            FROM kyc_verifications
	           WHERE created_by = $1
	           ORDER BY created_at DESC
	           LIMIT 1`

	var record entities.KycVerification
	err := r.db(ctx).QueryRow(ctx, query, email).Scan(
		&record.ID,
		&record.CreatedBy,
		&record.Status,
		&record.FullName,
		&record.DocumentType,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query KYC record: %w", err)
	}

	return &record, nil
}
