package postgres

import (
	"context"
	"database/sql"
	"time"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// KYCPostgres is a PostgreSQL implementation of repository.KYCRepository.
type KYCPostgres struct {
	db *sql.DB
}

// NewKYCPostgres creates a new KYCPostgres repository.
func NewKYCPostgres(db *sql.DB) *KYCPostgres {
	return &KYCPostgres{db: db}
}

var _ repository.KYCRepository = (*KYCPostgres)(nil)

const kycColumns = `id, user_id, kind, document_type, document_key, business_name, status,
	rejection_reason, reviewed_by, submitted_at, reviewed_at`

func scanKYC(s scanner) (*model.KYCVerification, error) {
	var v model.KYCVerification
	if err := s.Scan(
		&v.ID,
		&v.UserID,
		&v.Kind,
		&v.DocumentType,
		&v.DocumentKey,
		&v.BusinessName,
		&v.Status,
		&v.RejectionReason,
		&v.ReviewedBy,
		&v.SubmittedAt,
		&v.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func setProfileKYC(ctx context.Context, ex execer, userID string, status model.KYCStatus) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE profiles SET kyc_status = $2, updated_at = now() WHERE id = $1`, userID, status)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}

// Create inserts a pending submission and flags the profile as pending.
func (r *KYCPostgres) Create(ctx context.Context, v *model.KYCVerification) (*model.KYCVerification, error) {
	var out *model.KYCVerification
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `
			INSERT INTO kyc_verifications (id, user_id, kind, document_type, document_key, business_name, status, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + kycColumns
		stored, err := scanKYC(tx.QueryRowContext(ctx, q,
			v.ID,
			v.UserID,
			v.Kind,
			v.DocumentType,
			v.DocumentKey,
			v.BusinessName,
			model.VerificationPending,
			v.SubmittedAt,
		))
		if err != nil {
			return err
		}
		if err := setProfileKYC(ctx, tx, v.UserID, model.KYCPending); err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a submission by id.
func (r *KYCPostgres) FindByID(ctx context.Context, id string) (*model.KYCVerification, error) {
	return scanKYC(r.db.QueryRowContext(ctx, `SELECT `+kycColumns+` FROM kyc_verifications WHERE id = $1`, id))
}

// LatestForUser returns the most recent submission of a user.
func (r *KYCPostgres) LatestForUser(ctx context.Context, userID string) (*model.KYCVerification, error) {
	q := `SELECT ` + kycColumns + ` FROM kyc_verifications WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`
	return scanKYC(r.db.QueryRowContext(ctx, q, userID))
}

// ListByStatus returns submissions oldest first so reviewers work the queue in order.
func (r *KYCPostgres) ListByStatus(ctx context.Context, status model.VerificationStatus, pq repository.PageQuery) (*repository.PageResult[model.KYCVerification], error) {
	var w where
	w.eq("status", string(status))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kyc_verifications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+kycColumns+` FROM kyc_verifications`+w.String()+` ORDER BY submitted_at ASC, id ASC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.KYCVerification, 0)
	for rows.Next() {
		v, err := scanKYC(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.KYCVerification]{Items: items, Total: total}, nil
}

// Review records the decision on a pending submission and mirrors it onto the profile.
func (r *KYCPostgres) Review(ctx context.Context, id string, status model.VerificationStatus, reviewerID, reason string, at time.Time) (*model.KYCVerification, error) {
	var out *model.KYCVerification
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `
			UPDATE kyc_verifications
			SET status = $2, reviewed_by = $3, rejection_reason = $4, reviewed_at = $5
			WHERE id = $1 AND status = 'PENDING'
			RETURNING ` + kycColumns
		v, err := scanKYC(tx.QueryRowContext(ctx, q, id, status, nullIfEmpty(reviewerID), reason, at))
		if err != nil {
			return err
		}
		if err := setProfileKYC(ctx, tx, v.UserID, status.ProfileStatus()); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
