// Package repository contains data access abstractions. Implementations live in
// subpackages (postgres) and contain no business rules beyond row-level guards.
package repository

import (
	"context"
	"errors"
	"time"

	"mailroom/internal/model"
)

// ErrLastCluster is returned when a delete would leave a location without clusters.
var ErrLastCluster = errors.New("repository: location must keep at least one cluster")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

// ProfileRepository stores accounts.
type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context, role model.Role, pq PageQuery) (*PageResult[model.Profile], error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
	// Delete removes the profile and releases any mailbox it holds in one transaction.
	Delete(ctx context.Context, id string) error
}

// KYCRepository stores identity verification submissions.
type KYCRepository interface {
	// Create inserts a PENDING submission and marks the profile PENDING atomically.
	Create(ctx context.Context, v *model.KYCVerification) (*model.KYCVerification, error)
	FindByID(ctx context.Context, id string) (*model.KYCVerification, error)
	LatestForUser(ctx context.Context, userID string) (*model.KYCVerification, error)
	ListByStatus(ctx context.Context, status model.VerificationStatus, pq PageQuery) (*PageResult[model.KYCVerification], error)
	// Review moves a PENDING submission to status and copies the outcome to the profile.
	// It returns sql.ErrNoRows when the submission is no longer PENDING.
	Review(ctx context.Context, id string, status model.VerificationStatus, reviewerID, reason string, at time.Time) (*model.KYCVerification, error)
}

// LocationRepository stores locations and their clusters.
type LocationRepository interface {
	// CreateWithClusters inserts the location and every named cluster in one transaction.
	CreateWithClusters(ctx context.Context, loc *model.Location, clusterNames []string) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
	FindByID(ctx context.Context, id string) (*model.Location, error)
	AddCluster(ctx context.Context, c *model.Cluster) (*model.Cluster, error)
	FindCluster(ctx context.Context, id string) (*model.Cluster, error)
	CountClusters(ctx context.Context, locationID string) (int, error)
	CountMailboxes(ctx context.Context, clusterID string) (int, error)
	// DeleteCluster serializes on the parent location and returns ErrLastCluster
	// instead of removing its only cluster.
	DeleteCluster(ctx context.Context, id string) error
}

// MailboxFilter narrows mailbox listings. Empty fields match everything.
type MailboxFilter struct {
	ClusterID string
	Status    model.MailboxStatus
}

// MailboxRepository stores mailboxes.
type MailboxRepository interface {
	Create(ctx context.Context, m *model.Mailbox) (*model.Mailbox, error)
	FindByID(ctx context.Context, id string) (*model.Mailbox, error)
	FindByUser(ctx context.Context, userID string) (*model.Mailbox, error)
	List(ctx context.Context, f MailboxFilter, pq PageQuery) (*PageResult[model.Mailbox], error)
	Update(ctx context.Context, m *model.Mailbox) (*model.Mailbox, error)
	// Assign sets the renter on an AVAILABLE mailbox; sql.ErrNoRows when it is not available.
	Assign(ctx context.Context, id, userID string) (*model.Mailbox, error)
	Release(ctx context.Context, id string) (*model.Mailbox, error)
	Address(ctx context.Context, id string) (*model.MailboxAddress, error)
}

// PackageRepository stores subscription plans.
type PackageRepository interface {
	Create(ctx context.Context, p *model.Package) (*model.Package, error)
	FindByID(ctx context.Context, id string) (*model.Package, error)
	List(ctx context.Context, activeOnly bool) ([]model.Package, error)
	Update(ctx context.Context, p *model.Package) (*model.Package, error)
	Delete(ctx context.Context, id string) error
	CountActiveSubscriptions(ctx context.Context, id string) (int, error)
}

// SubscriptionRepository stores the local mirror of payment provider subscriptions.
type SubscriptionRepository interface {
	// Upsert inserts or updates by ExternalID.
	Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Subscription, error)
	LatestByUser(ctx context.Context, userID string) (*model.Subscription, error)
	List(ctx context.Context, status model.SubscriptionStatus, pq PageQuery) (*PageResult[model.Subscription], error)
	// ExpireEndedBefore marks ACTIVE subscriptions ending before cutoff as EXPIRED.
	ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MailFilter narrows mail listings. Empty fields match everything.
type MailFilter struct {
	UserID    string
	MailboxID string
	Status    model.MailStatus
}

// MailItemRepository stores received mail.
type MailItemRepository interface {
	Create(ctx context.Context, m *model.MailItem) (*model.MailItem, error)
	FindByID(ctx context.Context, id string) (*model.MailItem, error)
	List(ctx context.Context, f MailFilter, pq PageQuery) (*PageResult[model.MailItem], error)
}

// ActionFilter narrows action request listings. Empty fields match everything.
type ActionFilter struct {
	UserID     string
	MailItemID string
	Status     model.RequestStatus
	Action     model.ActionType
}

// StatusChange describes a guarded transition of an action request.
type StatusChange struct {
	From        model.RequestStatus
	To          model.RequestStatus
	ProcessedBy string
	Notes       string
	At          time.Time
}

// Completion carries the mail item side effects of completing a request.
type Completion struct {
	ProcessedBy    string
	MailStatus     model.MailStatus
	ScanKey        string
	Carrier        string
	TrackingNumber string
	At             time.Time
}

// ActionRepository stores mail action requests.
type ActionRepository interface {
	// Create inserts a PENDING request. A concurrent open request on the same item
	// surfaces as a unique violation.
	Create(ctx context.Context, r *model.MailActionRequest) (*model.MailActionRequest, error)
	FindByID(ctx context.Context, id string) (*model.MailActionRequest, error)
	HasActionable(ctx context.Context, mailItemID string) (bool, error)
	List(ctx context.Context, f ActionFilter, pq PageQuery) (*PageResult[model.MailActionRequest], error)
	// Transition applies the change only if the request is still in c.From; otherwise sql.ErrNoRows.
	Transition(ctx context.Context, id string, c StatusChange) (*model.MailActionRequest, error)
	// Complete moves an IN_PROGRESS request to COMPLETED and updates its mail item in one transaction.
	Complete(ctx context.Context, id string, c Completion) (*model.MailActionRequest, error)
}

// ActivityFilter narrows activity log listings. Empty fields match everything.
type ActivityFilter struct {
	ActorID    string
	EntityType string
	RequestID  string
}

// ActivityRepository stores the audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, l *model.ActivityLog) error
	List(ctx context.Context, f ActivityFilter, pq PageQuery) (*PageResult[model.ActivityLog], error)
}

// AllowedIPRepository stores the admin IP allowlist.
type AllowedIPRepository interface {
	Create(ctx context.Context, ip *model.AllowedIP) (*model.AllowedIP, error)
	List(ctx context.Context) ([]model.AllowedIP, error)
	// Delete returns sql.ErrNoRows when nothing was removed.
	Delete(ctx context.Context, id string) error
}
