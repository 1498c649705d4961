package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"mailroom/internal/database"
	"mailroom/internal/model"
	"mailroom/internal/repository"
)

// LocationPostgres is a PostgreSQL implementation of repository.LocationRepository.
type LocationPostgres struct {
	db *sql.DB
}

// NewLocationPostgres creates a new LocationPostgres repository.
func NewLocationPostgres(db *sql.DB) *LocationPostgres {
	return &LocationPostgres{db: db}
}

var _ repository.LocationRepository = (*LocationPostgres)(nil)

const (
	locationColumns = `id, name, address_line, city, state, postal_code, country, created_at`
	clusterColumns  = `id, location_id, name, created_at`
)

func scanLocation(s scanner) (*model.Location, error) {
	var l model.Location
	if err := s.Scan(&l.ID, &l.Name, &l.AddressLine, &l.City, &l.State, &l.PostalCode, &l.Country, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanCluster(s scanner) (*model.Cluster, error) {
	var c model.Cluster
	if err := s.Scan(&c.ID, &c.LocationID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateWithClusters inserts a location together with its initial clusters.
func (r *LocationPostgres) CreateWithClusters(ctx context.Context, loc *model.Location, clusterNames []string) (*model.Location, error) {
	var out *model.Location
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		q := `
			INSERT INTO locations (id, name, address_line, city, state, postal_code, country, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + locationColumns
		stored, err := scanLocation(tx.QueryRowContext(ctx, q,
			loc.ID, loc.Name, loc.AddressLine, loc.City, loc.State, loc.PostalCode, loc.Country, loc.CreatedAt,
		))
		if err != nil {
			return err
		}

		stored.Clusters = make([]model.Cluster, 0, len(clusterNames))
		for _, name := range clusterNames {
			c, err := scanCluster(tx.QueryRowContext(ctx,
				`INSERT INTO clusters (id, location_id, name, created_at) VALUES ($1, $2, $3, $4) RETURNING `+clusterColumns,
				uuid.NewString(), stored.ID, name, loc.CreatedAt,
			))
			if err != nil {
				return err
			}
			stored.Clusters = append(stored.Clusters, *c)
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every location with its clusters, ordered by name.
func (r *LocationPostgres) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locs := make([]model.Location, 0)
	index := make(map[string]int)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		l.Clusters = make([]model.Cluster, 0)
		index[l.ID] = len(locs)
		locs = append(locs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := r.db.QueryContext(ctx, `SELECT `+clusterColumns+` FROM clusters ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		c, err := scanCluster(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[c.LocationID]; ok {
			locs[i].Clusters = append(locs[i].Clusters, *c)
		}
	}
	return locs, crows.Err()
}

// FindByID fetches a location and its clusters.
func (r *LocationPostgres) FindByID(ctx context.Context, id string) (*model.Location, error) {
	l, err := scanLocation(r.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+clusterColumns+` FROM clusters WHERE location_id = $1 ORDER BY name, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	l.Clusters = make([]model.Cluster, 0)
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, err
		}
		l.Clusters = append(l.Clusters, *c)
	}
	return l, rows.Err()
}

// AddCluster inserts a cluster into an existing location.
func (r *LocationPostgres) AddCluster(ctx context.Context, c *model.Cluster) (*model.Cluster, error) {
	return scanCluster(r.db.QueryRowContext(ctx,
		`INSERT INTO clusters (id, location_id, name, created_at) VALUES ($1, $2, $3, $4) RETURNING `+clusterColumns,
		c.ID, c.LocationID, c.Name, c.CreatedAt,
	))
}

// FindCluster fetches a cluster by id.
func (r *LocationPostgres) FindCluster(ctx context.Context, id string) (*model.Cluster, error) {
	return scanCluster(r.db.QueryRowContext(ctx, `SELECT `+clusterColumns+` FROM clusters WHERE id = $1`, id))
}

// CountClusters counts the clusters of a location.
func (r *LocationPostgres) CountClusters(ctx context.Context, locationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clusters WHERE location_id = $1`, locationID).Scan(&n)
	return n, err
}

// CountMailboxes counts the mailboxes of a cluster.
func (r *LocationPostgres) CountMailboxes(ctx context.Context, clusterID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mailboxes WHERE cluster_id = $1`, clusterID).Scan(&n)
	return n, err
}

// DeleteCluster removes a cluster unless it is the last one of its location.
// The parent location row is locked so concurrent deletes see each other's result.
func (r *LocationPostgres) DeleteCluster(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locationID string
		if err := tx.QueryRowContext(ctx, `SELECT location_id FROM clusters WHERE id = $1`, id).Scan(&locationID); err != nil {
			return err
		}

		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM locations WHERE id = $1 FOR UPDATE`, locationID).Scan(&one); err != nil {
			return err
		}

		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clusters WHERE location_id = $1`, locationID).Scan(&n); err != nil {
			return err
		}
		if n <= 1 {
			return repository.ErrLastCluster
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM clusters WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return affectedOrNoRows(res)
	})
}
