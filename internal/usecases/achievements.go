package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

var bigSpenderThreshold = decimal.NewFromInt(10000)

// TradeStatsRepository supplies the per-user aggregates the achievement
// rules evaluate against.
type TradeStatsRepository interface {
	CountCompletedTrades(ctx context.Context, email string) (int, error)
	CompletedTradesSince(ctx context.Context, email string, since time.Time) (int, error)
	TotalTradedINR(ctx context.Context, email string) (decimal.Decimal, error)
}

// AchievementsSummary is what the achievements page renders.
type AchievementsSummary struct {
	Achievements []entities.Achievement `json:"achievements"`
	Unlocked     int                    `json:"unlocked"`
	TotalPoints  int                    `json:"total_points"`
}

// AchievementService evaluates the fixed badge catalog against the user's
// stored records instead of hardcoding unlock flags.
type AchievementService struct {
	logger *slog.Logger
	stats  TradeStatsRepository
	kyc    KycRepository
	banks  BankAccountsRepository
}

func NewAchievementService(logger *slog.Logger, stats TradeStatsRepository, kyc KycRepository, banks BankAccountsRepository) *AchievementService {
	return &AchievementService{
		logger: logger,
		stats:  stats,
		kyc:    kyc,
		banks:  banks,
	}
}

// Evaluate computes the unlock state of every badge for the user.
func (s *AchievementService) Evaluate(ctx context.Context, user entities.User) (*AchievementsSummary, error) {
	trades, err := s.stats.CountCompletedTrades(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to count trades: %w", err)
	}

	recent, err := s.stats.CompletedTradesSince(ctx, user.Email, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent trades: %w", err)
	}

	volume, err := s.stats.TotalTradedINR(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sum traded volume: %w", err)
	}

	kycRecord, err := s.kyc.FindByUser(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load KYC record: %w", err)
	}

	banks, err := s.banks.FindBankAccounts(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}

	achievements := []entities.Achievement{
		{
			ID:          "first_transaction",
			Title:       "First Transaction",
			Description: "Complete your first USDT exchange",
			BadgeIcon:   "Star",
			Points:      100,
			Unlocked:    trades >= 1,
		},
		{
			ID:          "big_spender",
			Title:       "Big Spender",
			Description: "Exchange over ₹10,000",
			BadgeIcon:   "Trophy",
			Points:      500,
			Unlocked:    volume.GreaterThan(bigSpenderThreshold),
		},
		{
			ID:          "speed_demon",
			Title:       "Speed Demon",
			Description: "Complete 3 exchanges in 24h",
			BadgeIcon:   "Zap",
			Points:      300,
			Unlocked:    recent >= 3,
		},
		{
			ID:          "secure_pro",
			Title:       "Secure Pro",
			Description: "Pass 10 security verifications",
			BadgeIcon:   "Shield",
			Points:      250,
			Unlocked:    trades >= 10,
		},
		{
			ID:          "verified_master",
			Title:       "Verified Master",
			Description: "Complete KYC and add bank account",
			BadgeIcon:   "Award",
			Points:      200,
			Unlocked:    KycAuthorized(kycRecord) && len(banks) > 0,
		},
	}

	summary := &AchievementsSummary{Achievements: achievements}
	for _, a := range achievements {
		if a.Unlocked {
			summary.Unlocked++
			summary.TotalPoints += a.Points
		}
	}

	return summary, nil
}
