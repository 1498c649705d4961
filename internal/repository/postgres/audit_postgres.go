package postgres

import (
	"context"
	"database/sql"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// ActivityPostgres is a PostgreSQL implementation of repository.ActivityRepository.
type ActivityPostgres struct {
	db *sql.DB
}

// NewActivityPostgres creates a new ActivityPostgres repository.
func NewActivityPostgres(db *sql.DB) *ActivityPostgres {
	return &ActivityPostgres{db: db}
}

var _ repository.ActivityRepository = (*ActivityPostgres)(nil)

const activityColumns = `id, actor_id, action, entity_type, entity_id, details, ip, request_id, created_at`

func scanActivity(s scanner) (*model.ActivityLog, error) {
	var (
		l       model.ActivityLog
		details []byte
	)
	if err := s.Scan(&l.ID, &l.ActorID, &l.Action, &l.EntityType, &l.EntityID, &details, &l.IP, &l.RequestID, &l.CreatedAt); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		l.Details = details
	}
	return &l, nil
}

// Create appends an activity entry.
func (r *ActivityPostgres) Create(ctx context.Context, l *model.ActivityLog) error {
	var details any
	if len(l.Details) > 0 {
		details = []byte(l.Details)
	}
	actor := ""
	if l.ActorID != nil {
		actor = *l.ActorID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, actor_id, action, entity_type, entity_id, details, ip, request_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, nullIfEmpty(actor), l.Action, l.EntityType, l.EntityID, details, l.IP, l.RequestID, l.CreatedAt,
	)
	return err
}

// List returns activity newest first.
func (r *ActivityPostgres) List(ctx context.Context, f repository.ActivityFilter, pq repository.PageQuery) (*repository.PageResult[model.ActivityLog], error) {
	var w where
	w.eq("actor_id", f.ActorID)
	w.eq("entity_type", f.EntityType)
	w.eq("request_id", f.RequestID)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activity_logs`+w.String()+` ORDER BY created_at DESC, id DESC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ActivityLog, 0)
	for rows.Next() {
		l, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ActivityLog]{Items: items, Total: total}, nil
}

// AllowedIPPostgres is a PostgreSQL implementation of repository.AllowedIPRepository.
type AllowedIPPostgres struct {
	db *sql.DB
}

// NewAllowedIPPostgres creates a new AllowedIPPostgres repository.
func NewAllowedIPPostgres(db *sql.DB) *AllowedIPPostgres {
	return &AllowedIPPostgres{db: db}
}

var _ repository.AllowedIPRepository = (*AllowedIPPostgres)(nil)

const allowedIPColumns = `id, cidr::text, label, created_by, created_at`

func scanAllowedIP(s scanner) (*model.AllowedIP, error) {
	var ip model.AllowedIP
	if err := s.Scan(&ip.ID, &ip.CIDR, &ip.Label, &ip.CreatedBy, &ip.CreatedAt); err != nil {
		return nil, err
	}
	return &ip, nil
}

// Create inserts an allowlist entry. The cidr must already be canonical.
func (r *AllowedIPPostgres) Create(ctx context.Context, ip *model.AllowedIP) (*model.AllowedIP, error) {
	createdBy := ""
	if ip.CreatedBy != nil {
		createdBy = *ip.CreatedBy
	}
	return scanAllowedIP(r.db.QueryRowContext(ctx,
		`INSERT INTO allowed_ips (id, cidr, label, created_by, created_at)
		 VALUES ($1, $2::cidr, $3, $4, $5)
		 RETURNING `+allowedIPColumns,
		ip.ID, ip.CIDR, ip.Label, nullIfEmpty(createdBy), ip.CreatedAt,
	))
}

// List returns every allowlist entry.
func (r *AllowedIPPostgres) List(ctx context.Context) ([]model.AllowedIP, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+allowedIPColumns+` FROM allowed_ips ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AllowedIP, 0)
	for rows.Next() {
		ip, err := scanAllowedIP(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ip)
	}
	return items, rows.Err()
}

// Delete removes an allowlist entry.
func (r *AllowedIPPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allowed_ips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}
