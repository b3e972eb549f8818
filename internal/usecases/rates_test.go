package usecases

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextRateStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))

	rate := initialRate
	for range 10000 {
		rate = NextRate(rng, rate)

		assert.True(t, rate.GreaterThanOrEqual(rateFloor), "rate %s fell below floor", rate)
		assert.True(t, rate.LessThanOrEqual(rateCeiling), "rate %s exceeded ceiling", rate)
	}
}

func TestNextRateStepIsBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	maxStep := decimal.NewFromFloat(maxRateStep)

	rate := initialRate
	for range 1000 {
		next := NextRate(rng, rate)

		// Away from the clamp bounds the step never exceeds ±0.15.
		if next.GreaterThan(rateFloor) && next.LessThan(rateCeiling) {
			assert.True(t, next.Sub(rate).Abs().LessThanOrEqual(maxStep))
		}
		rate = next
	}
}

func TestNextRateClampsAtBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))

	// Starting outside the band pulls straight back to the nearest bound.
	above := NextRate(rng, decimal.NewFromInt(95))
	assert.True(t, above.Equal(rateCeiling))

	below := NextRate(rng, decimal.NewFromInt(80))
	assert.True(t, below.Equal(rateFloor))
}

func TestNextRateDeterministicWithSeed(t *testing.T) {
	walk := func() []string {
		rng := rand.New(rand.NewPCG(99, 0))
		rate := initialRate
		out := make([]string, 0, 50)
		for range 50 {
			rate = NextRate(rng, rate)
			out = append(out, rate.String())
		}
		return out
	}

	assert.Equal(t, walk(), walk())
}

func TestRateSimulatorRefreshNotifiesSubscribers(t *testing.T) {
	sim := NewRateSimulator(testLogger(), 5)

	sub := make(chan entities.RateQuote, 1)
	unsubscribe := sim.Subscribe(sub)

	quote := sim.Refresh()

	received := <-sub
	require.True(t, received.Value.Equal(quote.Value))
	assert.True(t, sim.Current().Value.Equal(quote.Value))

	unsubscribe()
	sim.Refresh()

	select {
	case q := <-sub:
		t.Fatalf("unexpected quote after unsubscribe: %s", q.Value)
	default:
	}
}

func TestRateSimulatorStartsAtInitialRate(t *testing.T) {
	sim := NewRateSimulator(testLogger(), 1)
	assert.Equal(t, "88.45", sim.Current().Value.StringFixed(2))
}
