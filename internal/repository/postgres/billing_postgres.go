package postgres

import (
	"context"
	"database/sql"
	"time"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// PackagePostgres is a PostgreSQL implementation of repository.PackageRepository.
type PackagePostgres struct {
	db *sql.DB
}

// NewPackagePostgres creates a new PackagePostgres repository.
func NewPackagePostgres(db *sql.DB) *PackagePostgres {
	return &PackagePostgres{db: db}
}

var _ repository.PackageRepository = (*PackagePostgres)(nil)

const packageColumns = `id, name, description, price_cents, billing_interval, monthly_scans, monthly_forwards,
	active, created_at, updated_at`

func scanPackage(s scanner) (*model.Package, error) {
	var p model.Package
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Interval,
		&p.MonthlyScans,
		&p.MonthlyForwards,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a package.
func (r *PackagePostgres) Create(ctx context.Context, p *model.Package) (*model.Package, error) {
	q := `
		INSERT INTO packages (id, name, description, price_cents, billing_interval, monthly_scans, monthly_forwards, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + packageColumns
	return scanPackage(r.db.QueryRowContext(ctx, q,
		p.ID, p.Name, p.Description, p.PriceCents, p.Interval, p.MonthlyScans, p.MonthlyForwards, p.Active, p.CreatedAt,
	))
}

// FindByID fetches a package by id.
func (r *PackagePostgres) FindByID(ctx context.Context, id string) (*model.Package, error) {
	return scanPackage(r.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
}

// List returns packages ordered by price.
func (r *PackagePostgres) List(ctx context.Context, activeOnly bool) ([]model.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY price_cents, name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Update overwrites the mutable fields of a package.
func (r *PackagePostgres) Update(ctx context.Context, p *model.Package) (*model.Package, error) {
	q := `
		UPDATE packages
		SET name = $2, description = $3, price_cents = $4, billing_interval = $5,
		    monthly_scans = $6, monthly_forwards = $7, active = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + packageColumns
	return scanPackage(r.db.QueryRowContext(ctx, q,
		p.ID, p.Name, p.Description, p.PriceCents, p.Interval, p.MonthlyScans, p.MonthlyForwards, p.Active,
	))
}

// Delete removes a package.
func (r *PackagePostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}

// CountActiveSubscriptions counts ACTIVE subscriptions on a package.
func (r *PackagePostgres) CountActiveSubscriptions(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE package_id = $1 AND status = 'ACTIVE'`, id,
	).Scan(&n)
	return n, err
}

// SubscriptionPostgres is a PostgreSQL implementation of repository.SubscriptionRepository.
type SubscriptionPostgres struct {
	db *sql.DB
}

// NewSubscriptionPostgres creates a new SubscriptionPostgres repository.
func NewSubscriptionPostgres(db *sql.DB) *SubscriptionPostgres {
	return &SubscriptionPostgres{db: db}
}

var _ repository.SubscriptionRepository = (*SubscriptionPostgres)(nil)

const subscriptionColumns = `id, user_id, package_id, external_id, status, current_period_end, created_at, updated_at`

func scanSubscription(s scanner) (*model.Subscription, error) {
	var sub model.Subscription
	if err := s.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PackageID,
		&sub.ExternalID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert inserts a subscription or updates the existing row with the same external id.
func (r *SubscriptionPostgres) Upsert(ctx context.Context, s *model.Subscription) (*model.Subscription, error) {
	q := `
		INSERT INTO subscriptions (id, user_id, package_id, external_id, status, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (external_id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    package_id = EXCLUDED.package_id,
		    status = EXCLUDED.status,
		    current_period_end = EXCLUDED.current_period_end,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + subscriptionColumns
	return scanSubscription(r.db.QueryRowContext(ctx, q,
		s.ID, s.UserID, s.PackageID, s.ExternalID, s.Status, s.CurrentPeriodEnd, s.UpdatedAt,
	))
}

// FindActiveByUser returns the user's ACTIVE subscription with the latest period end.
func (r *SubscriptionPostgres) FindActiveByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1 AND status = 'ACTIVE'
		ORDER BY current_period_end DESC LIMIT 1`
	return scanSubscription(r.db.QueryRowContext(ctx, q, userID))
}

// LatestByUser returns the most recently updated subscription of a user.
func (r *SubscriptionPostgres) LatestByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1`
	return scanSubscription(r.db.QueryRowContext(ctx, q, userID))
}

// List returns subscriptions newest first, optionally filtered by status.
func (r *SubscriptionPostgres) List(ctx context.Context, status model.SubscriptionStatus, pq repository.PageQuery) (*repository.PageResult[model.Subscription], error) {
	var w where
	w.eq("status", string(status))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions`+w.String()+` ORDER BY updated_at DESC, id DESC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Subscription]{Items: items, Total: total}, nil
}

// ExpireEndedBefore expires ACTIVE subscriptions whose period ended before cutoff.
// PAST_DUE rows are left to the payment provider's own dunning events.
func (r *SubscriptionPostgres) ExpireEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'EXPIRED', updated_at = now()
		 WHERE status = 'ACTIVE' AND current_period_end < $1`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
