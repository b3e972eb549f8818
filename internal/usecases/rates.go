package usecases

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// Rate walk bounds. Each refresh applies a uniform delta in
// [-maxRateStep, +maxRateStep] and clamps into [rateFloor, rateCeiling].
var (
	rateFloor   = decimal.NewFromFloat(87.5)
	rateCeiling = decimal.NewFromFloat(89.5)
	initialRate = decimal.NewFromFloat(88.45)
)

const maxRateStep = 0.15

// NextRate applies one random-walk step to the previous quote. The caller
// owns storage of the current value; the rand source is injected so tests
// can seed it.
func NextRate(rng *rand.Rand, previous decimal.Decimal) decimal.Decimal {
	delta := decimal.NewFromFloat((rng.Float64() - 0.5) * 2 * maxRateStep)
	next := previous.Add(delta)

	if next.LessThan(rateFloor) {
		return rateFloor
	}
	if next.GreaterThan(rateCeiling) {
		return rateCeiling
	}
	return next
}

// RateSimulator owns the current simulated INR/USDT quote and fans fresh
// quotes out to subscribers.
type RateSimulator struct {
	logger *slog.Logger
	rng    *rand.Rand

	mu      sync.RWMutex
	current entities.RateQuote

	subMu       sync.Mutex
	subscribers map[chan<- entities.RateQuote]struct{}
}

// NewRateSimulator seeds the walk. Seed zero means a time-derived seed.
func NewRateSimulator(logger *slog.Logger, seed int64) *RateSimulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RateSimulator{
		logger: logger,
		rng:    rand.New(rand.NewPCG(uint64(seed), 0)),
		current: entities.RateQuote{
			Value:   initialRate,
			ValidAt: time.Now(),
		},
		subscribers: make(map[chan<- entities.RateQuote]struct{}),
	}
}

// Current returns the latest quote.
func (rs *RateSimulator) Current() entities.RateQuote {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.current
}

// Refresh advances the walk one step and notifies subscribers.
func (rs *RateSimulator) Refresh() entities.RateQuote {
	rs.mu.Lock()
	quote := entities.RateQuote{
		Value:   NextRate(rs.rng, rs.current.Value),
		ValidAt: time.Now(),
	}
	rs.current = quote
	rs.mu.Unlock()

	rs.logger.Debug("Rate refreshed", "rate", quote.Value.StringFixed(2))
	rs.broadcast(quote)
	return quote
}

// Subscribe registers a channel for quote updates and returns the
// unsubscribe function. Slow subscribers are skipped, never blocked on.
func (rs *RateSimulator) Subscribe(ch chan<- entities.RateQuote) func() {
	rs.subMu.Lock()
	rs.subscribers[ch] = struct{}{}
	rs.subMu.Unlock()

	return func() {
		rs.subMu.Lock()
		delete(rs.subscribers, ch)
		rs.subMu.Unlock()
	}
}

func (rs *RateSimulator) broadcast(quote entities.RateQuote) {
	rs.subMu.Lock()
	defer rs.subMu.Unlock()

	for ch := range rs.subscribers {
		select {
		case ch <- quote:
		default:
		}
	}
}
