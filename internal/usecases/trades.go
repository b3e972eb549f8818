package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// TradeState is the position of a trade attempt in the authorization
// workflow. Every attempt ends in Completed or Failed.
type TradeState string

const (
	StateIdle              TradeState = "idle"
	StateKycCheck          TradeState = "kyc_check"
	StateAwaitingChallenge TradeState = "awaiting_challenge"
	StateSettling          TradeState = "settling"
	StateCompleted         TradeState = "completed"
	StateFailed            TradeState = "failed"
)

type TransactionsRepository interface {
	InsertTransaction(ctx context.Context, txn *entities.Transaction) error
	FinalizeTransaction(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error
	FindTransactions(ctx context.Context, filter entities.TransactionFilter) ([]entities.Transaction, error)
}

type WalletsRepository interface {
	FindWalletByUser(ctx context.Context, email string) (*entities.Wallet, error)
	DebitForWithdrawal(ctx context.Context, email string, amount, expectedBalance decimal.Decimal) error
	UpsertWallet(ctx context.Context, wallet *entities.Wallet) (*entities.Wallet, error)
	CreditBalance(ctx context.Context, email string, amount decimal.Decimal) (*entities.Wallet, error)
}

// Transactor runs a function inside one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type kycGate interface {
	Authorize(ctx context.Context, user entities.User) error
}

// TradeService drives a trade attempt through
// idle → kyc_check → awaiting_challenge → settling → completed | failed.
// At most one attempt per user is in flight at any time.
type TradeService struct {
	logger       *slog.Logger
	transactions TransactionsRepository
	wallets      WalletsRepository
	kyc          kycGate
	challenger   Challenger
	transactor   Transactor

	rngMu sync.Mutex
	rng   *rand.Rand

	flightMu sync.Mutex
	inFlight map[string]struct{}
}

func NewTradeService(
	logger *slog.Logger,
	transactions TransactionsRepository,
	wallets WalletsRepository,
	kyc kycGate,
	challenger Challenger,
	transactor Transactor,
	rng *rand.Rand,
) *TradeService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &TradeService{
		logger:       logger,
		transactions: transactions,
		wallets:      wallets,
		kyc:          kyc,
		challenger:   challenger,
		transactor:   transactor,
		rng:          rng,
		inFlight:     make(map[string]struct{}),
	}
}

// SubmitTrade runs one authorization attempt end to end. On any terminal
// failure the system state is exactly as before the submission, except that
// an insufficient-balance sell leaves a failed transaction row for the
// history view; the wallet is never touched on failure.
func (s *TradeService) SubmitTrade(ctx context.Context, user entities.User, req entities.TradeRequest) (*entities.Transaction, error) {
	attempt := &tradeAttempt{user: user, state: StateIdle, logger: s.logger}

	txn, err := s.normalize(user, req)
	if err != nil {
		return nil, err
	}

	if !s.acquire(user.Email) {
		return nil, ErrTradeInFlight
	}
	defer s.release(user.Email)

	attempt.transition(StateKycCheck)
	if err = s.kyc.Authorize(ctx, user); err != nil {
		attempt.transition(StateFailed)
		return nil, err
	}

	attempt.transition(StateAwaitingChallenge)
	mode := s.pickMode()
	verified, err := s.challenger.Challenge(ctx, user, mode)
	if err != nil {
		attempt.transition(StateFailed)
		return nil, fmt.Errorf("challenge aborted: %w", err)
	}
	if !verified {
		attempt.transition(StateFailed)
		return nil, ErrChallengeFailed
	}

	attempt.transition(StateSettling)
	if err = s.settle(ctx, user, txn); err != nil {
		attempt.transition(StateFailed)
		return nil, err
	}

	attempt.transition(StateCompleted)
	s.logger.Info("Trade completed",
		"user", user.Email,
		"type", txn.Type,
		"reference", txn.Reference(),
		"amount_inr", txn.AmountINR.StringFixed(2),
		"amount_usdt", txn.AmountUSDT.StringFixed(6))

	return txn, nil
}

// History lists the caller's transactions, newest first.
func (s *TradeService) History(ctx context.Context, filter entities.TransactionFilter) ([]entities.Transaction, error) {
	return s.transactions.FindTransactions(ctx, filter)
}

// normalize validates the request and recomputes every derived amount
// server-side. Client-supplied fee fields are never trusted.
func (s *TradeService) normalize(user entities.User, req entities.TradeRequest) (*entities.Transaction, error) {
	if req.Type != entities.TradeBuy && req.Type != entities.TradeSell {
		return nil, &ValidationError{Field: "type", Reason: "must be buy or sell"}
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Field: "rate", Reason: "must be positive"}
	}

	txn := &entities.Transaction{
		ID:        uuid.New(),
		CreatedBy: user.Email,
		Type:      req.Type,
		Rate:      req.Rate,
		Status:    entities.TransactionPending,
		Network:   req.Network,
		CreatedAt: time.Now(),
	}

	switch req.Type {
	case entities.TradeBuy:
		// Fee charged in INR on top; the full amount converts.
		txn.AmountINR = req.AmountINR
		txn.AmountUSDT = ConvertToUSDT(req.AmountINR, req.Rate)
	case entities.TradeSell:
		if req.AmountUSDT.LessThanOrEqual(decimal.Zero) {
			return nil, &ValidationError{Field: "amount_usdt", Reason: "must be positive"}
		}
		txn.AmountUSDT = req.AmountUSDT
		txn.AmountINR = GrossINR(req.AmountUSDT, req.Rate)
	}

	fee, err := ComputeFee(txn.AmountINR)
	if err != nil {
		return nil, err
	}

	txn.ServiceFee = fee.ServiceFee
	txn.NetworkFee = fee.NetworkFee
	txn.TotalFee = fee.TotalFee

	switch req.Type {
	case entities.TradeBuy:
		txn.NetAmount = txn.AmountUSDT
	case entities.TradeSell:
		txn.NetAmount = NetPayout(txn.AmountINR, fee)
	}

	return txn, nil
}

// settle persists the transaction and, for a sell, the balance mutation in
// one database transaction. A sell that would drive the balance negative
// commits a failed transaction row and leaves the wallet untouched; any
// store error rolls everything back.
func (s *TradeService) settle(ctx context.Context, user entities.User, txn *entities.Transaction) error {
	var settleErr error

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.transactions.InsertTransaction(ctx, txn); err != nil {
			return &PersistenceError{Op: "insert transaction", Err: err}
		}

		if txn.Type == entities.TradeSell {
			wallet, err := s.wallets.FindWalletByUser(ctx, user.Email)
			if err != nil {
				return &PersistenceError{Op: "read wallet", Err: err}
			}

			available := decimal.Zero
			if wallet != nil {
				available = wallet.BalanceUSDT
			}

			if wallet == nil || available.LessThan(txn.AmountUSDT) {
				settleErr = &InsufficientBalanceError{Requested: txn.AmountUSDT, Available: available}
				txn.Status = entities.TransactionFailed
				if err = s.transactions.FinalizeTransaction(ctx, txn.ID, entities.TransactionFailed); err != nil {
					return &PersistenceError{Op: "finalize transaction", Err: err}
				}
				return nil
			}

			// Compare-and-set keyed on the balance just read; a concurrent
			// sell loses the race instead of overwriting.
			if err = s.wallets.DebitForWithdrawal(ctx, user.Email, txn.AmountUSDT, available); err != nil {
				if errors.Is(err, ErrBalanceConflict) {
					settleErr = err
					txn.Status = entities.TransactionFailed
					if err = s.transactions.FinalizeTransaction(ctx, txn.ID, entities.TransactionFailed); err != nil {
						return &PersistenceError{Op: "finalize transaction", Err: err}
					}
					return nil
				}
				return &PersistenceError{Op: "debit wallet", Err: err}
			}
		}

		txn.Status = entities.TransactionCompleted
		if err := s.transactions.FinalizeTransaction(ctx, txn.ID, entities.TransactionCompleted); err != nil {
			return &PersistenceError{Op: "finalize transaction", Err: err}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Trade settlement failed", "user", user.Email, "error", err)
		return err
	}

	return settleErr
}

func (s *TradeService) pickMode() ChallengeMode {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return PickChallengeMode(s.rng)
}

func (s *TradeService) acquire(email string) bool {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()

	if _, busy := s.inFlight[email]; busy {
		return false
	}
	s.inFlight[email] = struct{}{}
	return true
}

func (s *TradeService) release(email string) {
	s.flightMu.Lock()
	delete(s.inFlight, email)
	s.flightMu.Unlock()
}

// tradeAttempt tracks the workflow position for one submission, mostly so
// transitions show up in the logs.
type tradeAttempt struct {
	user   entities.User
	state  TradeState
	logger *slog.Logger
}

func (a *tradeAttempt) transition(next TradeState) {
	a.logger.Debug("Trade state transition", "user", a.user.Email, "from", a.state, "to", next)
	a.state = next
}
