package model

import "time"

// VerificationKind distinguishes personal (KYC) from business (KYB) verification.
type VerificationKind string

const (
	KindKYC VerificationKind = "KYC"
	KindKYB VerificationKind = "KYB"
)

// VerificationStatus is the review state of a single submission.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// KYCVerification is one identity document submission and its review outcome.
type KYCVerification struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Kind            VerificationKind   `json:"kind"`
	DocumentType    string             `json:"document_type"`
	DocumentKey     string             `json:"-"`
	BusinessName    string             `json:"business_name,omitempty"`
	Status          VerificationStatus `json:"status"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ReviewedBy      *string            `json:"reviewed_by,omitempty"`
	SubmittedAt     time.Time          `json:"submitted_at"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
}

// ProfileStatus maps a review outcome onto the profile-level KYC status.
func (s VerificationStatus) ProfileStatus() KYCStatus {
	switch s {
	case VerificationApproved:
		return KYCApproved
	case VerificationRejected:
		return KYCRejected
	default:
		return KYCPending
	}
}
