package model

import "time"

// KYCStatus is the identity verification state recorded on a profile.
type KYCStatus string

const (
	KYCNotStarted KYCStatus = "NOT_STARTED"
	KYCPending    KYCStatus = "PENDING"
	KYCApproved   KYCStatus = "APPROVED"
	KYCRejected   KYCStatus = "REJECTED"
)

// Profile is an account in the system. PasswordHash is never serialised.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	KYCStatus    KYCStatus `json:"kyc_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
