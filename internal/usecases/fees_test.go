package usecases

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFee(t *testing.T) {
	tests := []struct {
		name        string
		amountINR   string
		wantService string
		wantNetwork string
		wantTotal   string
	}{
		{name: "minimum amount", amountINR: "100", wantService: "1.50", wantNetwork: "25.00", wantTotal: "26.50"},
		{name: "round amount", amountINR: "10000", wantService: "150.00", wantNetwork: "25.00", wantTotal: "175.00"},
		{name: "sell gross with rounding", amountINR: "4422.50", wantService: "66.34", wantNetwork: "25.00", wantTotal: "91.34"},
		{name: "large amount", amountINR: "50000", wantService: "750.00", wantNetwork: "25.00", wantTotal: "775.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := ComputeFee(decimal.RequireFromString(tt.amountINR))
			require.NoError(t, err)

			assert.Equal(t, tt.wantService, fee.ServiceFee.StringFixed(2))
			assert.Equal(t, tt.wantNetwork, fee.NetworkFee.StringFixed(2))
			assert.Equal(t, tt.wantTotal, fee.TotalFee.StringFixed(2))

			// The breakdown always adds up.
			assert.True(t, fee.TotalFee.Equal(fee.ServiceFee.Add(fee.NetworkFee)))
		})
	}
}

func TestComputeFeeRejectsInvalidAmounts(t *testing.T) {
	for _, amount := range []string{"0", "-1", "99.99", "-10000"} {
		_, err := ComputeFee(decimal.RequireFromString(amount))

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "amount %s", amount)
	}
}

func TestConvertToUSDT(t *testing.T) {
	// ₹10,000 at 88.45 converts in full; the fee is charged in INR on top.
	usdt := ConvertToUSDT(decimal.NewFromInt(10000), decimal.RequireFromString("88.45"))
	assert.Equal(t, "113.058225", usdt.StringFixed(6))
}

func TestNetPayout(t *testing.T) {
	// Sell of 50 USDT at 88.45: gross 4422.50, fee 66.34 + 25, net 4331.16.
	gross := GrossINR(decimal.NewFromInt(50), decimal.RequireFromString("88.45"))
	assert.Equal(t, "4422.50", gross.StringFixed(2))

	fee, err := ComputeFee(gross)
	require.NoError(t, err)

	net := NetPayout(gross, fee)
	assert.Equal(t, "4331.16", net.StringFixed(2))
}
