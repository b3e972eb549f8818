package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/core/ports"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// AlertSweeper fires the price alerts a fresh quote crosses.
type AlertSweeper interface {
	Sweep(ctx context.Context, quote entities.RateQuote) error
}

// RateRefresher advances the simulated quote on a fixed interval and sweeps
// price alerts against each fresh value. It stops with its context; no
// timer outlives the hosting session.
type RateRefresher struct {
	logger *slog.Logger
	rates  ports.RateService
	alerts AlertSweeper

	refreshInterval time.Duration
}

func NewRateRefresher(
	logger *slog.Logger,
	rates ports.RateService,
	alerts AlertSweeper,
	refreshInterval time.Duration,
) *RateRefresher {
	return &RateRefresher{
		logger:          logger,
		rates:           rates,
		alerts:          alerts,
		refreshInterval: refreshInterval,
	}
}

// Start refreshes once immediately, then on every tick until ctx is done.
func (rr *RateRefresher) Start(ctx context.Context) {
	rr.logger.Info("Starting rate refresher worker", "interval", rr.refreshInterval.String())

	rr.refresh(ctx)

	ticker := time.NewTicker(rr.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rr.logger.Info("Rate refresher worker stopped")
			return
		case <-ticker.C:
			rr.refresh(ctx)
		}
	}
}

func (rr *RateRefresher) refresh(ctx context.Context) {
	quote := rr.rates.Refresh()

	if rr.alerts == nil {
		return
	}
	if err := rr.alerts.Sweep(ctx, quote); err != nil {
		rr.logger.Error("Price alert sweep failed", "error", err)
	}
}
