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

type fakeAlertsRepo struct {
	alerts []entities.PriceAlert
	nextID int
}

func (f *fakeAlertsRepo) InsertAlert(_ context.Context, alert *entities.PriceAlert) (*entities.PriceAlert, error) {
	f.nextID++
	clone := *alert
	clone.ID = f.nextID
	f.alerts = append(f.alerts, clone)
	return &clone, nil
}

func (f *fakeAlertsRepo) FindAlerts(_ context.Context, email string) ([]entities.PriceAlert, error) {
	var out []entities.PriceAlert
	for _, a := range f.alerts {
		if a.CreatedBy == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertsRepo) FindActiveAlerts(_ context.Context) ([]entities.PriceAlert, error) {
	var out []entities.PriceAlert
	for _, a := range f.alerts {
		if !a.Triggered {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertsRepo) MarkTriggered(_ context.Context, id int, at time.Time) error {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Triggered = true
			f.alerts[i].TriggeredAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func TestCrossed(t *testing.T) {
	above := entities.PriceAlert{Direction: entities.AlertAbove, TargetRate: decimal.RequireFromString("89.00")}
	below := entities.PriceAlert{Direction: entities.AlertBelow, TargetRate: decimal.RequireFromString("88.00")}

	assert.True(t, crossed(above, decimal.RequireFromString("89.00")))
	assert.True(t, crossed(above, decimal.RequireFromString("89.25")))
	assert.False(t, crossed(above, decimal.RequireFromString("88.99")))

	assert.True(t, crossed(below, decimal.RequireFromString("88.00")))
	assert.True(t, crossed(below, decimal.RequireFromString("87.60")))
	assert.False(t, crossed(below, decimal.RequireFromString("88.01")))
}

func TestCreateAlertValidation(t *testing.T) {
	svc := NewAlertService(testLogger(), &fakeAlertsRepo{})

	var validationErr *ValidationError

	_, err := svc.Create(context.Background(), testUser, entities.PriceAlert{
		TargetRate: decimal.Zero,
		Direction:  entities.AlertAbove,
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "target_rate", validationErr.Field)

	_, err = svc.Create(context.Background(), testUser, entities.PriceAlert{
		TargetRate: decimal.RequireFromString("89.00"),
		Direction:  "crosses",
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "direction", validationErr.Field)
}

func TestCreateAlertStampsOwnership(t *testing.T) {
	repo := &fakeAlertsRepo{}
	svc := NewAlertService(testLogger(), repo)

	created, err := svc.Create(context.Background(), testUser, entities.PriceAlert{
		TargetRate: decimal.RequireFromString("89.00"),
		Direction:  entities.AlertAbove,
		Triggered:  true, // client cannot pre-trigger an alert
	})
	require.NoError(t, err)

	assert.Equal(t, testUser.Email, created.CreatedBy)
	assert.False(t, created.Triggered)
}

func TestSweepFiresEachAlertOnce(t *testing.T) {
	repo := &fakeAlertsRepo{}
	svc := NewAlertService(testLogger(), repo)

	_, err := svc.Create(context.Background(), testUser, entities.PriceAlert{
		TargetRate: decimal.RequireFromString("89.00"),
		Direction:  entities.AlertAbove,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testUser, entities.PriceAlert{
		TargetRate: decimal.RequireFromString("87.80"),
		Direction:  entities.AlertBelow,
	})
	require.NoError(t, err)

	validAt := time.Now()
	quote := entities.RateQuote{Value: decimal.RequireFromString("89.10"), ValidAt: validAt}
	require.NoError(t, svc.Sweep(context.Background(), quote))

	// The above-alert fired, the below-alert stayed active.
	assert.True(t, repo.alerts[0].Triggered)
	require.NotNil(t, repo.alerts[0].TriggeredAt)
	assert.Equal(t, validAt, *repo.alerts[0].TriggeredAt)
	assert.False(t, repo.alerts[1].Triggered)

	// A second sweep over the same quote fires nothing new.
	require.NoError(t, svc.Sweep(context.Background(), quote))
	assert.False(t, repo.alerts[1].Triggered)

	active, err := repo.FindActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
