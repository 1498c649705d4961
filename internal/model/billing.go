package model

import "time"

// BillingInterval is how often a package is charged.
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "MONTHLY"
	IntervalYearly  BillingInterval = "YEARLY"
)

// Valid reports whether i is a known billing interval.
func (i BillingInterval) Valid() bool {
	return i == IntervalMonthly || i == IntervalYearly
}

// Package is a subscription plan offered to customers.
type Package struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	PriceCents      int64           `json:"price_cents"`
	Interval        BillingInterval `json:"interval"`
	MonthlyScans    int             `json:"monthly_scans"`
	MonthlyForwards int             `json:"monthly_forwards"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SubscriptionStatus mirrors the payment provider's view of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionPastDue, SubscriptionCanceled, SubscriptionExpired:
		return true
	}
	return false
}

// Subscription links a profile to a package. ExternalID is the payment provider's id.
type Subscription struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	PackageID        string             `json:"package_id"`
	ExternalID       string             `json:"external_id"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd time.Time          `json:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
