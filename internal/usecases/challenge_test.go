package usecases

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

func TestPickChallengeModeCoversBothModes(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 0))

	seen := map[ChallengeMode]int{}
	for range 100 {
		mode := PickChallengeMode(rng)
		require.Contains(t, []ChallengeMode{ChallengePin, ChallengeBiometric}, mode)
		seen[mode]++
	}

	assert.Positive(t, seen[ChallengePin])
	assert.Positive(t, seen[ChallengeBiometric])
}

func TestChallengeBrokerResolve(t *testing.T) {
	broker := NewChallengeBroker(testLogger(), time.Second)
	user := entities.User{Email: "trader@example.com"}

	for _, verified := range []bool{true, false} {
		done := make(chan bool, 1)
		go func() {
			ok, _ := broker.Challenge(context.Background(), user, ChallengePin)
			done <- ok
		}()

		challenge := waitForPending(t, broker, user.Email)
		require.True(t, broker.Resolve(challenge.ID, verified))

		assert.Equal(t, verified, <-done)

		// The pending entry is gone either way.
		_, found := broker.PendingFor(user.Email)
		assert.False(t, found)
	}
}

func TestChallengeBrokerTimeoutYieldsFalse(t *testing.T) {
	broker := NewChallengeBroker(testLogger(), 20*time.Millisecond)

	ok, err := broker.Challenge(context.Background(), entities.User{Email: "t@example.com"}, ChallengeBiometric)

	require.NoError(t, err)
	assert.False(t, ok)

	_, found := broker.PendingFor("t@example.com")
	assert.False(t, found)
}

func TestChallengeBrokerContextCancellation(t *testing.T) {
	broker := NewChallengeBroker(testLogger(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := broker.Challenge(ctx, entities.User{Email: "t@example.com"}, ChallengePin)

	require.Error(t, err)
	assert.False(t, ok)
}

func TestChallengeBrokerResolveUnknownID(t *testing.T) {
	broker := NewChallengeBroker(testLogger(), time.Second)
	assert.False(t, broker.Resolve(uuid.New(), true))
}

func waitForPending(t *testing.T, broker *ChallengeBroker, email string) *Challenge {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if challenge, found := broker.PendingFor(email); found {
			return challenge
		}
		time.Sleep(time.Millisecond)
	}

	t.Fatal("challenge never became pending")
	return nil
}
