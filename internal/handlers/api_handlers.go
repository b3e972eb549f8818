package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/core/ports"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/usecases"
)

var _ ports.TradeService = (*usecases.TradeService)(nil)

type HTTPHandler struct {
	logger       *slog.Logger
	rates        ports.RateService
	trades       ports.TradeService
	wallets      ports.WalletService
	kyc          ports.KycService
	accounts     ports.AccountService
	alerts       *usecases.AlertService
	achievements *usecases.AchievementService
	earnings     *usecases.EarningsService
	challenges   *usecases.ChallengeBroker
}

func NewHTTPHandler(
	logger *slog.Logger,
	rates ports.RateService,
	trades ports.TradeService,
	wallets ports.WalletService,
	kyc ports.KycService,
	accounts ports.AccountService,
	alerts *usecases.AlertService,
	achievements *usecases.AchievementService,
	earnings *usecases.EarningsService,
	challenges *usecases.ChallengeBroker,
) *HTTPHandler {
	return &HTTPHandler{
		logger:       logger,
		rates:        rates,
		trades:       trades,
		wallets:      wallets,
		kyc:          kyc,
		accounts:     accounts,
		alerts:       alerts,
		achievements: achievements,
		earnings:     earnings,
		challenges:   challenges,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	// Quotes
	router.HandleFunc("/rate", h.GetRate).Methods("GET")

	// Trades
	router.HandleFunc("/trades", h.SubmitTrade).Methods("POST")
	router.HandleFunc("/trades/quote", h.QuoteTrade).Methods("POST")
	router.HandleFunc("/transactions", h.GetTransactions).Methods("GET")

	// Security challenges
	router.HandleFunc("/challenges/pending", h.GetPendingChallenge).Methods("GET")
	router.HandleFunc("/challenges/{id}", h.ResolveChallenge).Methods("POST")

	// Wallet
	router.HandleFunc("/wallet", h.GetWallet).Methods("GET")
	router.HandleFunc("/wallet/deposit-address", h.GetDepositAddress).Methods("POST")
	router.HandleFunc("/wallet/credit", h.CreditWallet).Methods("POST")

	// KYC
	router.HandleFunc("/kyc/status", h.GetKycStatus).Methods("GET")

	// Bank accounts and exchange wallets
	router.HandleFunc("/bank-accounts", h.ListBankAccounts).Methods("GET")
	router.HandleFunc("/bank-accounts", h.AddBankAccount).Methods("POST")
	router.HandleFunc("/bank-accounts/{id:[0-9]+}/primary", h.SetPrimaryBankAccount).Methods("POST")
	router.HandleFunc("/bank-accounts/{id:[0-9]+}", h.DeleteBankAccount).Methods("DELETE")
	router.HandleFunc("/exchange-wallets", h.ListExchangeWallets).Methods("GET")
	router.HandleFunc("/exchange-wallets", h.AddExchangeWallet).Methods("POST")
	router.HandleFunc("/exchange-wallets/{id:[0-9]+}", h.DeleteExchangeWallet).Methods("DELETE")

	// Price alerts
	router.HandleFunc("/alerts", h.ListAlerts).Methods("GET")
	router.HandleFunc("/alerts", h.CreateAlert).Methods("POST")

	// Achievements
	router.HandleFunc("/achievements", h.GetAchievements).Methods("GET")

	// Admin
	router.HandleFunc("/admin/earnings", h.GetEarnings).Methods("GET")
}

func (h *HTTPHandler) GetRate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.rates.Current())
}

// QuoteTrade previews the fee breakdown and conversion for an amount
// without starting the workflow.
func (h *HTTPHandler) QuoteTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AmountINR decimal.Decimal `json:"amount_inr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fee, err := usecases.ComputeFee(req.AmountINR)
	if err != nil {
		h.writeError(w, err)
		return
	}

	quote := h.rates.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"rate":        quote.Value,
		"amount_inr":  req.AmountINR,
		"amount_usdt": usecases.ConvertToUSDT(req.AmountINR, quote.Value),
		"service_fee": fee.ServiceFee,
		"network_fee": fee.NetworkFee,
		"total_fee":   fee.TotalFee,
		"net_amount":  usecases.NetPayout(req.AmountINR, fee),
	})
}

// SubmitTrade runs the full authorization workflow. The request blocks
// through the security challenge; the client resolves the challenge through
// POST /challenges/{id} from its verification dialog.
func (h *HTTPHandler) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req entities.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	txn, err := h.trades.SubmitTrade(r.Context(), user, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	message := fmt.Sprintf("USDT purchase completed successfully! Transaction ID: %s", txn.Reference())
	if txn.Type == entities.TradeSell {
		message = fmt.Sprintf("USDT sold successfully! ₹%s will be transferred to your bank. Transaction ID: %s",
			txn.NetAmount.StringFixed(2), txn.Reference())
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     message,
		"transaction": txn,
	})
}

func (h *HTTPHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := entities.TransactionFilter{
		CreatedBy: user.Email,
		Type:      entities.TradeDirection(r.URL.Query().Get("type")),
		Status:    entities.TransactionStatus(r.URL.Query().Get("status")),
	}
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	transactions, err := h.trades.History(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *HTTPHandler) GetPendingChallenge(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	challenge, found := h.challenges.PendingFor(user.Email)
	if !found {
		http.Error(w, "no pending challenge", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (h *HTTPHandler) ResolveChallenge(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid challenge id", http.StatusBadRequest)
		return
	}

	var req struct {
		Verified bool `json:"verified"`
	}
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !h.challenges.Resolve(id, req.Verified) {
		http.Error(w, "challenge not found or already resolved", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "resolved"})
}

func (h *HTTPHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.wallets.Balance(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (h *HTTPHandler) GetDepositAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	address, err := h.wallets.DepositAddress(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"address": address, "network": entities.NetworkBEP20})
}

// CreditWallet records a confirmed USDT deposit. In production this is
// called by the deposit-confirmation pipeline, not end users.
func (h *HTTPHandler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		AmountUSDT decimal.Decimal `json:"amount_usdt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	wallet, err := h.wallets.Credit(r.Context(), user, req.AmountUSDT)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (h *HTTPHandler) GetKycStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	record, err := h.kyc.StatusFor(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record":  record,
		"message": usecases.DescribeKyc(record),
		"allowed": usecases.KycAuthorized(record),
	})
}

func (h *HTTPHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListBankAccounts(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *HTTPHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var account entities.BankAccount
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.accounts.AddBankAccount(r.Context(), user, account)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) SetPrimaryBankAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.accounts.SetPrimaryBankAccount(r.Context(), user, id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (h *HTTPHandler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.accounts.DeleteBankAccount(r.Context(), user, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListExchangeWallets(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	wallets, err := h.accounts.ListExchangeWallets(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

func (h *HTTPHandler) AddExchangeWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var wallet entities.ExchangeWallet
	if err := json.NewDecoder(r.Body).Decode(&wallet); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.accounts.AddExchangeWallet(r.Context(), user, wallet)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) DeleteExchangeWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.accounts.DeleteExchangeWallet(r.Context(), user, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	alerts, err := h.alerts.List(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *HTTPHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var alert entities.PriceAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.alerts.Create(r.Context(), user, alert)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.achievements.Evaluate(r.Context(), user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if user.Role != entities.RoleAdmin {
		http.Error(w, "admin access required", http.StatusForbidden)
		return
	}

	var from *time.Time
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		parsed, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			http.Error(w, "invalid from timestamp", http.StatusBadRequest)
			return
		}
		from = &parsed
	}

	report, err := h.earnings.Report(r.Context(), from)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeError maps the error taxonomy onto HTTP statuses. Challenge failures
// stay generic on purpose.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr  *usecases.ValidationError
		kycErr         *usecases.KycNotApprovedError
		balanceErr     *usecases.InsufficientBalanceError
		persistenceErr *usecases.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &kycErr):
		http.Error(w, kycErr.Message, http.StatusForbidden)
	case errors.As(err, &balanceErr):
		http.Error(w, balanceErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, usecases.ErrChallengeFailed):
		http.Error(w, usecases.ErrChallengeFailed.Error(), http.StatusForbidden)
	case errors.Is(err, usecases.ErrTradeInFlight):
		http.Error(w, usecases.ErrTradeInFlight.Error(), http.StatusConflict)
	case errors.Is(err, usecases.ErrBalanceConflict):
		http.Error(w, usecases.ErrBalanceConflict.Error(), http.StatusConflict)
	case errors.Is(err, usecases.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &persistenceErr):
		h.logger.Error("Persistence failure", "error", err)
		http.Error(w, "operation failed, please try again", http.StatusInternalServerError)
	default:
		h.logger.Error("Unhandled error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
