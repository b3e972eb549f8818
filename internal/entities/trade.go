package entities

import "github.com/shopspring/decimal"

// TradeRequest is what the form layer submits. It is consumed once by the
// trade workflow and discarded after the attempt resolves.
type TradeRequest struct {
	Type       TradeDirection  `json:"type"`
	AmountINR  decimal.Decimal `json:"amount_inr"`
	AmountUSDT decimal.Decimal `json:"amount_usdt"`
	Rate       decimal.Decimal `json:"rate"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	NetworkFee decimal.Decimal `json:"network_fee"`
	TotalFee   decimal.Decimal `json:"total_fee"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	Network    string          `json:"network"`
}
