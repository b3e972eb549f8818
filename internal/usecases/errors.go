package usecases

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

var (
	// ErrTradeInFlight rejects a submission while the same user already has
	// an active workflow instance.
	ErrTradeInFlight = errors.New("another trade is already in progress")

	// ErrChallengeFailed covers a failed, cancelled or timed-out security
	// challenge. The message is deliberately generic.
	ErrChallengeFailed = errors.New("security verification failed or cancelled")

	// ErrBalanceConflict signals a lost compare-and-set on the wallet
	// balance; the caller may re-read and resubmit.
	ErrBalanceConflict = errors.New("wallet balance changed concurrently")

	ErrNotFound = errors.New("record not found")
)

// ValidationError rejects a trade request before the workflow starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// KycNotApprovedError carries the specific gate reason so the user sees why
// trading is blocked.
type KycNotApprovedError struct {
	Status  entities.KycStatus
	Message string
}

func (e *KycNotApprovedError) Error() string {
	return e.Message
}

// InsufficientBalanceError rejects a sell that would drive the custodial
// balance negative.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s USDT, available %s USDT",
		e.Requested.StringFixed(6), e.Available.StringFixed(6))
}

// PersistenceError wraps a failed store call. Safe to retry by resubmitting
// a fresh trade request; no automatic retry is performed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
