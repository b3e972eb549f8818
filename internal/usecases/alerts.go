package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

type PriceAlertsRepository interface {
	InsertAlert(ctx context.Context, alert *entities.PriceAlert) (*entities.PriceAlert, error)
	FindAlerts(ctx context.Context, email string) ([]entities.PriceAlert, error)
	FindActiveAlerts(ctx context.Context) ([]entities.PriceAlert, error)
	MarkTriggered(ctx context.Context, id int, at time.Time) error
}

// AlertService manages one-shot price alerts swept by the rate refresher.
type AlertService struct {
	logger *slog.Logger
	repo   PriceAlertsRepository
}

func NewAlertService(logger *slog.Logger, repo PriceAlertsRepository) *AlertService {
	return &AlertService{logger: logger, repo: repo}
}

func (s *AlertService) Create(ctx context.Context, user entities.User, alert entities.PriceAlert) (*entities.PriceAlert, error) {
	if alert.TargetRate.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Field: "target_rate", Reason: "must be positive"}
	}
	if alert.Direction != entities.AlertAbove && alert.Direction != entities.AlertBelow {
		return nil, &ValidationError{Field: "direction", Reason: "must be above or below"}
	}

	alert.CreatedBy = user.Email
	alert.Triggered = false
	alert.CreatedAt = time.Now()

	created, err := s.repo.InsertAlert(ctx, &alert)
	if err != nil {
		return nil, fmt.Errorf("failed to create price alert: %w", err)
	}
	return created, nil
}

func (s *AlertService) List(ctx context.Context, user entities.User) ([]entities.PriceAlert, error) {
	return s.repo.FindAlerts(ctx, user.Email)
}

// Sweep fires every active alert the fresh quote crosses. Each alert fires
// at most once.
func (s *AlertService) Sweep(ctx context.Context, quote entities.RateQuote) error {
	alerts, err := s.repo.FindActiveAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active alerts: %w", err)
	}

	for _, alert := range alerts {
		if !crossed(alert, quote.Value) {
			continue
		}
		if err := s.repo.MarkTriggered(ctx, alert.ID, quote.ValidAt); err != nil {
			s.logger.Error("Failed to mark alert triggered", "alert_id", alert.ID, "error", err)
			continue
		}
		s.logger.Info("Price alert triggered",
			"alert_id", alert.ID,
			"user", alert.CreatedBy,
			"target", alert.TargetRate.StringFixed(2),
			"rate", quote.Value.StringFixed(2))
	}

	return nil
}

func crossed(alert entities.PriceAlert, rate decimal.Decimal) bool {
	if alert.Direction == entities.AlertAbove {
		return rate.GreaterThanOrEqual(alert.TargetRate)
	}
	return rate.LessThanOrEqual(alert.TargetRate)
}
