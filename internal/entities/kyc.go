package entities

import "time"

// KYC verification status. A user with no record at all is treated the same
// as any non-approved status.
type KycStatus string

const (
	KycNone        KycStatus = "none"
	KycUnderReview KycStatus = "under_review"
	KycApproved    KycStatus = "approved"
	KycRejected    KycStatus = "rejected"
)

// KycVerification is created by the external verification flow and read-only
// to the trading workflow.
type KycVerification struct {
	ID           int       `db:"id"            json:"id"`
	CreatedBy    string    `db:"created_by"    json:"created_by"`
	Status       KycStatus `db:"status"        json:"status"`
	FullName     string    `db:"full_name"     json:"full_name"`
	DocumentType string    `db:"document_type" json:"document_type"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}
