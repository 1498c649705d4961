package postgres

import (
	"context"
	"database/sql"

	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// MailboxPostgres is a PostgreSQL implementation of repository.MailboxRepository.
type MailboxPostgres struct {
	db *sql.DB
}

// NewMailboxPostgres creates a new MailboxPostgres repository.
func NewMailboxPostgres(db *sql.DB) *MailboxPostgres {
	return &MailboxPostgres{db: db}
}

var _ repository.MailboxRepository = (*MailboxPostgres)(nil)

const mailboxColumns = `id, cluster_id, box_number, width_cm::float8, height_cm::float8, depth_cm::float8,
	status, user_id, created_at, updated_at`

func scanMailbox(s scanner) (*model.Mailbox, error) {
	var m model.Mailbox
	if err := s.Scan(
		&m.ID,
		&m.ClusterID,
		&m.BoxNumber,
		&m.Size.Width,
		&m.Size.Height,
		&m.Size.Depth,
		&m.Status,
		&m.UserID,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a mailbox.
func (r *MailboxPostgres) Create(ctx context.Context, m *model.Mailbox) (*model.Mailbox, error) {
	q := `
		INSERT INTO mailboxes (id, cluster_id, box_number, width_cm, height_cm, depth_cm, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING ` + mailboxColumns
	return scanMailbox(r.db.QueryRowContext(ctx, q,
		m.ID, m.ClusterID, m.BoxNumber, m.Size.Width, m.Size.Height, m.Size.Depth, m.Status, m.CreatedAt,
	))
}

// FindByID fetches a mailbox by id.
func (r *MailboxPostgres) FindByID(ctx context.Context, id string) (*model.Mailbox, error) {
	return scanMailbox(r.db.QueryRowContext(ctx, `SELECT `+mailboxColumns+` FROM mailboxes WHERE id = $1`, id))
}

// FindByUser fetches the mailbox rented by a user.
func (r *MailboxPostgres) FindByUser(ctx context.Context, userID string) (*model.Mailbox, error) {
	return scanMailbox(r.db.QueryRowContext(ctx, `SELECT `+mailboxColumns+` FROM mailboxes WHERE user_id = $1`, userID))
}

// List returns mailboxes ordered by cluster and box number.
func (r *MailboxPostgres) List(ctx context.Context, f repository.MailboxFilter, pq repository.PageQuery) (*repository.PageResult[model.Mailbox], error) {
	var w where
	w.eq("cluster_id", f.ClusterID)
	w.eq("status", string(f.Status))

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mailboxes`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(pq.Limit, pq.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mailboxColumns+` FROM mailboxes`+w.String()+` ORDER BY cluster_id, box_number`+limit,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Mailbox, 0)
	for rows.Next() {
		m, err := scanMailbox(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Mailbox]{Items: items, Total: total}, nil
}

// Update writes box number, dimensions and status.
func (r *MailboxPostgres) Update(ctx context.Context, m *model.Mailbox) (*model.Mailbox, error) {
	q := `
		UPDATE mailboxes
		SET box_number = $2, width_cm = $3, height_cm = $4, depth_cm = $5, status = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + mailboxColumns
	return scanMailbox(r.db.QueryRowContext(ctx, q,
		m.ID, m.BoxNumber, m.Size.Width, m.Size.Height, m.Size.Depth, m.Status,
	))
}

// Assign hands an available mailbox to a user.
func (r *MailboxPostgres) Assign(ctx context.Context, id, userID string) (*model.Mailbox, error) {
	q := `
		UPDATE mailboxes
		SET status = 'ASSIGNED', user_id = $2, updated_at = now()
		WHERE id = $1 AND status = 'AVAILABLE'
		RETURNING ` + mailboxColumns
	return scanMailbox(r.db.QueryRowContext(ctx, q, id, userID))
}

// Release makes a mailbox available again.
func (r *MailboxPostgres) Release(ctx context.Context, id string) (*model.Mailbox, error) {
	q := `
		UPDATE mailboxes
		SET status = 'AVAILABLE', user_id = NULL, updated_at = now()
		WHERE id = $1
		RETURNING ` + mailboxColumns
	return scanMailbox(r.db.QueryRowContext(ctx, q, id))
}

// Address joins a mailbox with its cluster and location.
func (r *MailboxPostgres) Address(ctx context.Context, id string) (*model.MailboxAddress, error) {
	const q = `
		SELECT m.id, m.cluster_id, m.box_number, m.width_cm::float8, m.height_cm::float8, m.depth_cm::float8,
		       m.status, m.user_id, m.created_at, m.updated_at,
		       c.id, c.location_id, c.name, c.created_at,
		       l.id, l.name, l.address_line, l.city, l.state, l.postal_code, l.country, l.created_at
		FROM mailboxes m
		JOIN clusters c ON c.id = m.cluster_id
		JOIN locations l ON l.id = c.location_id
		WHERE m.id = $1`
	var a model.MailboxAddress
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.Mailbox.ID, &a.Mailbox.ClusterID, &a.Mailbox.BoxNumber,
		&a.Mailbox.Size.Width, &a.Mailbox.Size.Height, &a.Mailbox.Size.Depth,
		&a.Mailbox.Status, &a.Mailbox.UserID, &a.Mailbox.CreatedAt, &a.Mailbox.UpdatedAt,
		&a.Cluster.ID, &a.Cluster.LocationID, &a.Cluster.Name, &a.Cluster.CreatedAt,
		&a.Location.ID, &a.Location.Name, &a.Location.AddressLine, &a.Location.City,
		&a.Location.State, &a.Location.PostalCode, &a.Location.Country, &a.Location.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
