package postgres

import (
	"context"
	"database/sql"
	"time"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// MailItemPostgres is a PostgreSQL implementation of repository.MailItemRepository.
type MailItemPostgres struct {
	db *sql.DB
}

// NewMailItemPostgres creates a new MailItemPostgres repository.
func NewMailItemPostgres(db *sql.DB) *MailItemPostgres {
	return &MailItemPostgres{db: db}
}

var _ repository.MailItemRepository = (*MailItemPostgres)(nil)

const mailItemColumns = `id, user_id, mailbox_id, sender, kind, width_cm::float8, height_cm::float8, depth_cm::float8,
	weight_grams, oversized, status, envelope_key, scan_key, received_at, updated_at`

func scanMailItem(s scanner) (*model.MailItem, error) {
	var m model.MailItem
	if err := s.Scan(
		&m.ID,
		&m.UserID,
		&m.MailboxID,
		&m.Sender,
		&m.Kind,
		&m.Size.Width,
		&m.Size.Height,
		&m.Size.Depth,
		&m.WeightGrams,
		&m.Oversized,
		&m.Status,
		&m.EnvelopeKey,
		&m.ScanKey,
		&m.ReceivedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Decorate()
	return &m, nil
}

// Create inserts a received mail item.
func (r *MailItemPostgres) Create(ctx context.Context, m *model.MailItem) (*model.MailItem, error) {
	q := `
		INSERT INTO mail_items (id, user_id, mailbox_id, sender, kind, width_cm, height_cm, depth_cm,
		                        weight_grams, oversized, status, envelope_key, received_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING ` + mailItemColumns
	return scanMailItem(r.db.QueryRowContext(ctx, q,
		m.ID,
		m.UserID,
		m.MailboxID,
		m.Sender,
		m.Kind,
		m.Size.Width,
		m.Size.Height,
		m.Size.Depth,
		m.WeightGrams,
		m.Oversized,
		m.Status,
		m.EnvelopeKey,
		m.ReceivedAt,
	))
}

// FindByID fetches a mail item by id.
func (r *MailItemPostgres) FindByID(ctx context.Context, id string) (*model.MailItem, error) {
	return scanMailItem(r.db.QueryRowContext(ctx, `SELECT `+mailItemColumns+` FROM mail_items WHERE id = $1`, id))
}

// List returns mail items newest first.
func (r *MailItemPostgres) List(ctx context.Context, f repository.MailFilter, pq repository.PageQuery) (*repository.PageResult[model.MailItem], error) {
	var w where
	w.eq("user_id", f.UserID)
	w.eq("mailbox_id", f.MailboxID)
	w.eq("status", string(f.Status))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mail_items`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mailItemColumns+` FROM mail_items`+w.String()+` ORDER BY received_at DESC, id DESC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MailItem, 0)
	for rows.Next() {
		m, err := scanMailItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.MailItem]{Items: items, Total: total}, nil
}

// ActionPostgres is a PostgreSQL implementation of repository.ActionRepository.
type ActionPostgres struct {
	db *sql.DB
}

// NewActionPostgres creates a new ActionPostgres repository.
func NewActionPostgres(db *sql.DB) *ActionPostgres {
	return &ActionPostgres{db: db}
}

var _ repository.ActionRepository = (*ActionPostgres)(nil)

const actionColumns = `id, mail_item_id, user_id, action, status, forward_address, notes, carrier, tracking_number,
	processed_by, created_at, updated_at, completed_at`

func scanAction(s scanner) (*model.MailActionRequest, error) {
	var a model.MailActionRequest
	if err := s.Scan(
		&a.ID,
		&a.MailItemID,
		&a.UserID,
		&a.Action,
		&a.Status,
		&a.ForwardAddress,
		&a.Notes,
		&a.Carrier,
		&a.TrackingNumber,
		&a.ProcessedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a PENDING action request.
func (r *ActionPostgres) Create(ctx context.Context, a *model.MailActionRequest) (*model.MailActionRequest, error) {
	q := `
		INSERT INTO mail_action_requests (id, mail_item_id, user_id, action, status, forward_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + actionColumns
	return scanAction(r.db.QueryRowContext(ctx, q,
		a.ID, a.MailItemID, a.UserID, a.Action, model.RequestPending, a.ForwardAddress, a.Notes, a.CreatedAt,
	))
}

// FindByID fetches an action request by id.
func (r *ActionPostgres) FindByID(ctx context.Context, id string) (*model.MailActionRequest, error) {
	return scanAction(r.db.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM mail_action_requests WHERE id = $1`, id))
}

// HasActionable reports whether the mail item has an open request.
func (r *ActionPostgres) HasActionable(ctx context.Context, mailItemID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM mail_action_requests
		 WHERE mail_item_id = $1 AND status IN ('PENDING','APPROVED','IN_PROGRESS'))`, mailItemID,
	).Scan(&exists)
	return exists, err
}

// List returns action requests oldest first, which is the order operators work them.
func (r *ActionPostgres) List(ctx context.Context, f repository.ActionFilter, pq repository.PageQuery) (*repository.PageResult[model.MailActionRequest], error) {
	var w where
	w.eq("user_id", f.UserID)
	w.eq("mail_item_id", f.MailItemID)
	w.eq("status", string(f.Status))
	w.eq("action", string(f.Action))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mail_action_requests`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+actionColumns+` FROM mail_action_requests`+w.String()+` ORDER BY created_at ASC, id ASC`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MailActionRequest, 0)
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.MailActionRequest]{Items: items, Total: total}, nil
}

// Transition moves a request from c.From to c.To if nobody else moved it first.
func (r *ActionPostgres) Transition(ctx context.Context, id string, c repository.StatusChange) (*model.MailActionRequest, error) {
	q := `
		UPDATE mail_action_requests
		SET status = $3,
		    processed_by = COALESCE($4, processed_by),
		    notes = CASE WHEN $5::text = '' THEN notes ELSE $5::text END,
		    updated_at = $6
		WHERE id = $1 AND status = $2
		RETURNING ` + actionColumns
	return scanAction(r.db.QueryRowContext(ctx, q, id, c.From, c.To, nullIfEmpty(c.ProcessedBy), c.Notes, c.At))
}

// Complete closes an IN_PROGRESS request and applies its result to the mail item.
func (r *ActionPostgres) Complete(ctx context.Context, id string, c repository.Completion) (*model.MailActionRequest, error) {
	var out *model.MailActionRequest
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `
			UPDATE mail_action_requests
			SET status = 'COMPLETED',
			    processed_by = COALESCE($2, processed_by),
			    carrier = $3,
			    tracking_number = $4,
			    updated_at = $5,
			    completed_at = $5
			WHERE id = $1 AND status = 'IN_PROGRESS'
			RETURNING ` + actionColumns
		a, err := scanAction(tx.QueryRowContext(ctx, q, id, nullIfEmpty(c.ProcessedBy), c.Carrier, c.TrackingNumber, c.At))
		if err != nil {
			return err
		}
		if err := updateMailStatus(ctx, tx, a.MailItemID, c.MailStatus, c.ScanKey, c.At); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func updateMailStatus(ctx context.Context, ex execer, itemID string, status model.MailStatus, scanKey string, at time.Time) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE mail_items
		 SET status = $2, scan_key = CASE WHEN $3::text = '' THEN scan_key ELSE $3::text END, updated_at = $4
		 WHERE id = $1`,
		itemID, status, scanKey, at,
	)
	if err != nil {
		return err
	}
	return affectedOrNoRows(res)
}
