package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// EarningsReport aggregates platform revenue over completed transactions.
// Fee structure: 1.5% service fee plus ₹25 flat network fee per transaction.
type EarningsReport struct {
	TransactionCount int             `json:"transaction_count"`
	ServiceFeeINR    decimal.Decimal `json:"service_fee_inr"`
	NetworkFeeINR    decimal.Decimal `json:"network_fee_inr"`
	TotalFeeINR      decimal.Decimal `json:"total_fee_inr"`
	VolumeINR        decimal.Decimal `json:"volume_inr"`
	From             *time.Time      `json:"from,omitempty"`
}

type EarningsRepository interface {
	AggregateEarnings(ctx context.Context, from *time.Time) (*EarningsReport, error)
}

type EarningsService struct {
	logger *slog.Logger
	repo   EarningsRepository
}

func NewEarningsService(logger *slog.Logger, repo EarningsRepository) *EarningsService {
	return &EarningsService{logger: logger, repo: repo}
}

// Report sums fees and volume over completed transactions, optionally
// limited to a start time.
func (s *EarningsService) Report(ctx context.Context, from *time.Time) (*EarningsReport, error) {
	report, err := s.repo.AggregateEarnings(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}
	report.From = from
	return report, nil
}
