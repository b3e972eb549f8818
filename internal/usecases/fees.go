package usecases

// Fee policy: the service fee (1.5%) and the flat network fee (₹25) are
// charged in INR on top of the trade. For a buy the full INR amount converts
// at the quoted rate; the fee never reduces the USDT received. For a sell
// the net bank payout is the gross INR minus the total fee.

import (
	"github.com/shopspring/decimal"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/core/ports"
)

var (
	serviceFeeRate = decimal.NewFromFloat(0.015)
	networkFeeINR  = decimal.NewFromInt(25)
	minAmountINR   = decimal.NewFromInt(100)
)

// FeeBreakdown is the INR-denominated cost of a trade.
type FeeBreakdown struct {
	ServiceFee decimal.Decimal `json:"service_fee"`
	NetworkFee decimal.Decimal `json:"network_fee"`
	TotalFee   decimal.Decimal `json:"total_fee"`
}

// ComputeFee calculates the fee for an INR trade amount. The service fee is
// rounded to paise before summing so the breakdown always adds up to the
// total shown to the user.
func ComputeFee(amountINR decimal.Decimal) (FeeBreakdown, error) {
	if err := ValidateAmount(amountINR); err != nil {
		return FeeBreakdown{}, err
	}

	serviceFee := amountINR.Mul(serviceFeeRate).Round(ports.INRScale)
	return FeeBreakdown{
		ServiceFee: serviceFee,
		NetworkFee: networkFeeINR,
		TotalFee:   serviceFee.Add(networkFeeINR),
	}, nil
}

// ValidateAmount enforces the positive-amount and minimum-amount rules.
func ValidateAmount(amountINR decimal.Decimal) error {
	if amountINR.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount_inr", Reason: "must be positive"}
	}
	if amountINR.LessThan(minAmountINR) {
		return &ValidationError{Field: "amount_inr", Reason: "below minimum of ₹100"}
	}
	return nil
}

// ConvertToUSDT converts an INR amount at the given rate, rounded to the
// six-place USDT precision.
func ConvertToUSDT(amountINR, rate decimal.Decimal) decimal.Decimal {
	return amountINR.DivRound(rate, ports.USDTScale)
}

// GrossINR is the INR value of a USDT amount at the given rate, rounded to
// paise.
func GrossINR(amountUSDT, rate decimal.Decimal) decimal.Decimal {
	return amountUSDT.Mul(rate).Round(ports.INRScale)
}

// NetPayout is the bank payout for a sell: gross INR minus the total fee.
func NetPayout(amountINR decimal.Decimal, fee FeeBreakdown) decimal.Decimal {
	return amountINR.Sub(fee.TotalFee)
}
