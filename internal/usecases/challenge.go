package usecases

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// ChallengeMode selects which verification UI the client shows.
type ChallengeMode string

const (
	ChallengePin       ChallengeMode = "pin"
	ChallengeBiometric ChallengeMode = "biometric"
)

// PickChallengeMode chooses uniformly between PIN and biometric on every
// submission. This exists to exercise both verification UIs, not as a
// security policy.
func PickChallengeMode(rng *rand.Rand) ChallengeMode {
	if rng.Float64() > 0.5 {
		return ChallengeBiometric
	}
	return ChallengePin
}

// Challenger suspends the workflow until the user responds or cancels.
// A false result covers failure, cancellation and timeout alike.
type Challenger interface {
	Challenge(ctx context.Context, user entities.User, mode ChallengeMode) (bool, error)
}

// Challenge is a pending verification visible to the client.
type Challenge struct {
	ID        uuid.UUID     `json:"id"`
	User      string        `json:"-"`
	Mode      ChallengeMode `json:"mode"`
	CreatedAt time.Time     `json:"created_at"`

	result chan bool
}

// ChallengeBroker is the rendezvous between the blocked trade workflow and
// the HTTP endpoint that delivers the user's response. One attempt per
// challenge; there is no retry.
type ChallengeBroker struct {
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*Challenge
}

func NewChallengeBroker(logger *slog.Logger, timeout time.Duration) *ChallengeBroker {
	return &ChallengeBroker{
		logger:  logger,
		timeout: timeout,
		pending: make(map[uuid.UUID]*Challenge),
	}
}

// Challenge opens a pending challenge and blocks until it is resolved,
// cancelled, or times out. Any outcome removes the pending entry so no
// challenge state lingers.
func (b *ChallengeBroker) Challenge(ctx context.Context, user entities.User, mode ChallengeMode) (bool, error) {
	ch := &Challenge{
		ID:        uuid.New(),
		User:      user.Email,
		Mode:      mode,
		CreatedAt: time.Now(),
		result:    make(chan bool, 1),
	}

	b.mu.Lock()
	b.pending[ch.ID] = ch
	b.mu.Unlock()

	defer b.remove(ch.ID)

	b.logger.Info("Security challenge opened", "challenge_id", ch.ID, "mode", mode, "user", user.Email)

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case verified := <-ch.result:
		return verified, nil
	case <-timer.C:
		b.logger.Info("Security challenge timed out", "challenge_id", ch.ID)
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve delivers the user's response. Unknown ids are reported so a stale
// client can distinguish "already resolved" from success.
func (b *ChallengeBroker) Resolve(id uuid.UUID, verified bool) bool {
	b.mu.Lock()
	ch, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !ok {
		return false
	}

	ch.result <- verified
	return true
}

// PendingFor returns the open challenge for a user, if any. The workflow
// holds at most one per user thanks to the trade re-entrancy guard.
func (b *ChallengeBroker) PendingFor(email string) (*Challenge, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.pending {
		if ch.User == email {
			return ch, true
		}
	}
	return nil, false
}

func (b *ChallengeBroker) remove(id uuid.UUID) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
