package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

func TestKycAuthorized(t *testing.T) {
	tests := []struct {
		name   string
		record *entities.KycVerification
		want   bool
	}{
		{name: "absent record", record: nil, want: false},
		{name: "none", record: &entities.KycVerification{Status: entities.KycNone}, want: false},
		{name: "under review", record: &entities.KycVerification{Status: entities.KycUnderReview}, want: false},
		{name: "rejected", record: &entities.KycVerification{Status: entities.KycRejected}, want: false},
		{name: "approved", record: &entities.KycVerification{Status: entities.KycApproved}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KycAuthorized(tt.record))
		})
	}
}

func TestDescribeKyc(t *testing.T) {
	assert.Equal(t, kycMsgNone, DescribeKyc(nil))
	assert.Equal(t, kycMsgNone, DescribeKyc(&entities.KycVerification{Status: entities.KycNone}))
	assert.Equal(t, kycMsgUnderReview, DescribeKyc(&entities.KycVerification{Status: entities.KycUnderReview}))
	assert.Equal(t, kycMsgRejected, DescribeKyc(&entities.KycVerification{Status: entities.KycRejected}))
	assert.Equal(t, kycMsgApproved, DescribeKyc(&entities.KycVerification{Status: entities.KycApproved}))
}

type fakeKycRepo struct {
	record *entities.KycVerification
	err    error
}

func (f *fakeKycRepo) FindByUser(_ context.Context, _ string) (*entities.KycVerification, error) {
	return f.record, f.err
}

func TestKycServiceAuthorize(t *testing.T) {
	user := entities.User{Email: "trader@example.com"}

	t.Run("approved passes", func(t *testing.T) {
		svc := NewKycService(testLogger(), &fakeKycRepo{
			record: &entities.KycVerification{Status: entities.KycApproved},
		})
		require.NoError(t, svc.Authorize(context.Background(), user))
	})

	t.Run("under review blocks with reason", func(t *testing.T) {
		svc := NewKycService(testLogger(), &fakeKycRepo{
			record: &entities.KycVerification{Status: entities.KycUnderReview},
		})

		err := svc.Authorize(context.Background(), user)

		var kycErr *KycNotApprovedError
		require.ErrorAs(t, err, &kycErr)
		assert.Equal(t, entities.KycUnderReview, kycErr.Status)
		assert.Equal(t, kycMsgUnderReview, kycErr.Message)
	})

	t.Run("absent record blocks as none", func(t *testing.T) {
		svc := NewKycService(testLogger(), &fakeKycRepo{})

		err := svc.Authorize(context.Background(), user)

		var kycErr *KycNotApprovedError
		require.ErrorAs(t, err, &kycErr)
		assert.Equal(t, entities.KycNone, kycErr.Status)
	})
}
