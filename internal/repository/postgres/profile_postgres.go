package postgres

import (
	"context"
	"database/sql"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

const profileColumns = `id, email, password_hash, full_name, phone, role, kyc_status, created_at, updated_at`

func scanProfile(s scanner) (*model.Profile, error) {
	var p model.Profile
	if err := s.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FullName,
		&p.Phone,
		&p.Role,
		&p.KYCStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a profile and returns the stored row.
func (r *ProfilePostgres) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	q := `
		INSERT INTO profiles (id, email, password_hash, full_name, phone, role, kyc_status, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + profileColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Email,
		p.PasswordHash,
		p.FullName,
		p.Phone,
		p.Role,
		p.KYCStatus,
		p.CreatedAt,
	)
	return scanProfile(row)
}

// FindByID fetches a profile by id.
func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a profile by email, ignoring case.
func (r *ProfilePostgres) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE email = lower($1)`
	return scanProfile(r.db.QueryRowContext(ctx, q, email))
}

// List returns profiles newest first, optionally filtered by role.
func (r *ProfilePostgres) List(ctx context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.Profile], error) {
	var w where
	w.eq("role", string(role))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles`+w.String()+` ORDER BY created_at DESC, id DESC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Profile]{Items: items, Total: total}, nil
}

// UpdateRole changes a profile's role.
func (r *ProfilePostgres) UpdateRole(ctx context.Context, id string, role model.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}

// Delete releases the profile's mailbox and removes the profile.
func (r *ProfilePostgres) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE mailboxes SET status = 'AVAILABLE', user_id = NULL, updated_at = now() WHERE user_id = $1`, id,
		); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return affectedOrNoRows(res)
	})
}
