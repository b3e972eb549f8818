package usecases

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "crater canvas limb early tiger feature reward gentle scene exhibit pave guilt"

func newWalletService(t *testing.T) (*WalletService, *fakeWalletsRepo) {
	t.Helper()
	repo := &fakeWalletsRepo{}
	svc, err := NewWalletService(testLogger(), testSeed, repo)
	require.NoError(t, err)
	return svc, repo
}

func TestBalanceCreatesWalletOnFirstUse(t *testing.T) {
	svc, repo := newWalletService(t)

	wallet, err := svc.Balance(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, testUser.Email, wallet.CreatedBy)
	assert.True(t, wallet.BalanceUSDT.IsZero())
	require.NotNil(t, repo.wallet)

	// A second call returns the stored wallet, not a fresh one.
	again, err := svc.Balance(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	svc, _ := newWalletService(t)

	for _, amount := range []string{"0", "-3"} {
		_, err := svc.Credit(context.Background(), testUser, decimal.RequireFromString(amount))

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "amount %s", amount)
	}
}

func TestCreditAddsToBalance(t *testing.T) {
	svc, repo := newWalletService(t)

	wallet, err := svc.Credit(context.Background(), testUser, decimal.RequireFromString("25.5"))
	require.NoError(t, err)
	assert.Equal(t, "25.500000", wallet.BalanceUSDT.StringFixed(6))

	wallet, err = svc.Credit(context.Background(), testUser, decimal.RequireFromString("4.5"))
	require.NoError(t, err)
	assert.Equal(t, "30.000000", wallet.BalanceUSDT.StringFixed(6))
	assert.Equal(t, "30.000000", repo.wallet.BalanceUSDT.StringFixed(6))
}

func TestDepositAddressIsStableAndValid(t *testing.T) {
	svc, repo := newWalletService(t)

	address, err := svc.DepositAddress(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, common.IsHexAddress(address))
	assert.Equal(t, address, repo.wallet.DepositAddress)

	// Repeat calls return the stored address without re-deriving.
	again, err := svc.DepositAddress(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, address, again)

	// A fresh service with the same seed derives the same address for the
	// same wallet id.
	other, otherRepo := newWalletService(t)
	otherRepo.wallet = nil
	rederived, err := other.DepositAddress(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, address, rederived)
}

func TestDepositAddressDiffersAcrossSeeds(t *testing.T) {
	svc, _ := newWalletService(t)
	address, err := svc.DepositAddress(context.Background(), testUser)
	require.NoError(t, err)

	otherSvc, err := NewWalletService(testLogger(),
		"legal winner thank year wave sausage worth useful legal winner thank yellow",
		&fakeWalletsRepo{})
	require.NoError(t, err)

	otherAddress, err := otherSvc.DepositAddress(context.Background(), testUser)
	require.NoError(t, err)
	assert.NotEqual(t, address, otherAddress)
}
