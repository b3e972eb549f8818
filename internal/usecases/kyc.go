package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// Gate messages, one per KYC state.
const (
	kycMsgNone        = "KYC verification required! Please complete your KYC to trade USDT."
	kycMsgUnderReview = "Your KYC documents are under review. Please wait for approval to trade USDT."
	kycMsgRejected    = "Your KYC was rejected. Please resubmit with correct documents to trade USDT."
	kycMsgApproved    = "Your KYC is approved. You can trade USDT."
)

// KycAuthorized reports whether the record allows trading. An absent record
// is treated the same as any non-approved status.
func KycAuthorized(record *entities.KycVerification) bool {
	return record != nil && record.Status == entities.KycApproved
}

// DescribeKyc returns the fixed user-facing explanation for a record's state.
func DescribeKyc(record *entities.KycVerification) string {
	if record == nil {
		return kycMsgNone
	}
	switch record.Status {
	case entities.KycApproved:
		return kycMsgApproved
	case entities.KycUnderReview:
		return kycMsgUnderReview
	case entities.KycRejected:
		return kycMsgRejected
	default:
		return kycMsgNone
	}
}

type KycRepository interface {
	FindByUser(ctx context.Context, email string) (*entities.KycVerification, error)
}

type KycService struct {
	logger *slog.Logger
	repo   KycRepository
}

func NewKycService(logger *slog.Logger, repo KycRepository) *KycService {
	return &KycService{logger: logger, repo: repo}
}

// StatusFor returns the caller's verification record, nil when none exists.
func (s *KycService) StatusFor(ctx context.Context, user entities.User) (*entities.KycVerification, error) {
	record, err := s.repo.FindByUser(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load KYC record: %w", err)
	}
	return record, nil
}

// Authorize returns a KycNotApprovedError with the gate reason unless the
// caller's record is approved.
func (s *KycService) Authorize(ctx context.Context, user entities.User) error {
	record, err := s.StatusFor(ctx, user)
	if err != nil {
		return err
	}

	if !KycAuthorized(record) {
		status := entities.KycNone
		if record != nil {
			status = record.Status
		}
		s.logger.Info("Trade blocked by KYC gate", "user", user.Email, "status", status)
		return &KycNotApprovedError{Status: status, Message: DescribeKyc(record)}
	}

	return nil
}
