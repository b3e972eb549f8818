package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

type fakeStatsRepo struct {
	completed int
	recent    int
	volume    decimal.Decimal
}

func (f *fakeStatsRepo) CountCompletedTrades(_ context.Context, _ string) (int, error) {
	return f.completed, nil
}

func (f *fakeStatsRepo) CompletedTradesSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.recent, nil
}

func (f *fakeStatsRepo) TotalTradedINR(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.volume, nil
}

func unlockedIDs(summary *AchievementsSummary) []string {
	var ids []string
	for _, a := range summary.Achievements {
		if a.Unlocked {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestEvaluateAchievements(t *testing.T) {
	tests := []struct {
		name       string
		stats      fakeStatsRepo
		kyc        *entities.KycVerification
		bank       bool
		wantIDs    []string
		wantPoints int
	}{
		{
			name:  "fresh account unlocks nothing",
			stats: fakeStatsRepo{volume: decimal.Zero},
		},
		{
			name:       "first completed trade",
			stats:      fakeStatsRepo{completed: 1, recent: 1, volume: decimal.NewFromInt(5000)},
			wantIDs:    []string{"first_transaction"},
			wantPoints: 100,
		},
		{
			name:       "volume over ten thousand",
			stats:      fakeStatsRepo{completed: 2, volume: decimal.NewFromInt(15000)},
			wantIDs:    []string{"first_transaction", "big_spender"},
			wantPoints: 600,
		},
		{
			name:       "volume exactly at threshold stays locked",
			stats:      fakeStatsRepo{completed: 1, volume: decimal.NewFromInt(10000)},
			wantIDs:    []string{"first_transaction"},
			wantPoints: 100,
		},
		{
			name:       "three trades in a day",
			stats:      fakeStatsRepo{completed: 3, recent: 3, volume: decimal.NewFromInt(900)},
			wantIDs:    []string{"first_transaction", "speed_demon"},
			wantPoints: 400,
		},
		{
			name:       "ten verifications",
			stats:      fakeStatsRepo{completed: 10, volume: decimal.NewFromInt(5000)},
			wantIDs:    []string{"first_transaction", "secure_pro"},
			wantPoints: 350,
		},
		{
			name:       "kyc and bank account",
			stats:      fakeStatsRepo{volume: decimal.Zero},
			kyc:        &entities.KycVerification{Status: entities.KycApproved},
			bank:       true,
			wantIDs:    []string{"verified_master"},
			wantPoints: 200,
		},
		{
			name:  "kyc approved without bank account stays locked",
			stats: fakeStatsRepo{volume: decimal.Zero},
			kyc:   &entities.KycVerification{Status: entities.KycApproved},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			banks := &fakeBanksRepo{}
			if tt.bank {
				banks.accounts = []entities.BankAccount{{ID: 1, CreatedBy: testUser.Email, IsPrimary: true}}
			}

			svc := NewAchievementService(testLogger(), &tt.stats, &fakeKycRepo{record: tt.kyc}, banks)

			summary, err := svc.Evaluate(context.Background(), testUser)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, unlockedIDs(summary))
			assert.Equal(t, len(tt.wantIDs), summary.Unlocked)
			assert.Equal(t, tt.wantPoints, summary.TotalPoints)
			assert.Len(t, summary.Achievements, 5)
		})
	}
}
