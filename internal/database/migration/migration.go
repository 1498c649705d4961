package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS profiles (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  full_name     TEXT        NOT NULL DEFAULT '',
  phone         TEXT        NOT NULL DEFAULT '',
  role          TEXT        NOT NULL DEFAULT 'USER' CHECK (role IN ('USER','OPERATOR','ADMIN')),
  kyc_status    TEXT        NOT NULL DEFAULT 'NOT_STARTED'
                CHECK (kyc_status IN ('NOT_STARTED','PENDING','APPROVED','REJECTED')),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_kyc_verifications",
		SQL: `CREATE TABLE IF NOT EXISTS kyc_verifications (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id          UUID        NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  kind             TEXT        NOT NULL CHECK (kind IN ('KYC','KYB')),
  document_type    TEXT        NOT NULL,
  document_key     TEXT        NOT NULL,
  business_name    TEXT        NOT NULL DEFAULT '',
  status           TEXT        NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','APPROVED','REJECTED')),
  rejection_reason TEXT        NOT NULL DEFAULT '',
  reviewed_by      UUID        REFERENCES profiles(id) ON DELETE SET NULL,
  submitted_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  reviewed_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_kyc_one_pending_per_user",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_kyc_pending_user ON kyc_verifications (user_id) WHERE status = 'PENDING';`,
	},
	{
		Name: "create_table_locations",
		SQL: `CREATE TABLE IF NOT EXISTS locations (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name         TEXT        NOT NULL,
  address_line TEXT        NOT NULL,
  city         TEXT        NOT NULL,
  state        TEXT        NOT NULL DEFAULT '',
  postal_code  TEXT        NOT NULL,
  country      TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_clusters",
		SQL: `CREATE TABLE IF NOT EXISTS clusters (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  location_id UUID        NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
  name        TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_clusters_location_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_clusters_location_name ON clusters (location_id, lower(name));`,
	},
	{
		Name: "create_table_mailboxes",
		SQL: `CREATE TABLE IF NOT EXISTS mailboxes (
  id         UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  cluster_id UUID          NOT NULL REFERENCES clusters(id) ON DELETE RESTRICT,
  box_number TEXT          NOT NULL,
  width_cm   NUMERIC(8,2)  NOT NULL CHECK (width_cm > 0),
  height_cm  NUMERIC(8,2)  NOT NULL CHECK (height_cm > 0),
  depth_cm   NUMERIC(8,2)  NOT NULL CHECK (depth_cm > 0),
  status     TEXT          NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE','ASSIGNED','DISABLED')),
  user_id    UUID          UNIQUE REFERENCES profiles(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ   NOT NULL DEFAULT now(),
  UNIQUE (cluster_id, box_number),
  CHECK ((status = 'ASSIGNED') = (user_id IS NOT NULL))
);`,
	},
	{
		Name: "create_table_packages",
		SQL: `CREATE TABLE IF NOT EXISTS packages (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name             TEXT        NOT NULL UNIQUE,
  description      TEXT        NOT NULL DEFAULT '',
  price_cents      BIGINT      NOT NULL CHECK (price_cents >= 0),
  billing_interval TEXT        NOT NULL CHECK (billing_interval IN ('MONTHLY','YEARLY')),
  monthly_scans    INTEGER     NOT NULL DEFAULT 0 CHECK (monthly_scans >= 0),
  monthly_forwards INTEGER     NOT NULL DEFAULT 0 CHECK (monthly_forwards >= 0),
  active           BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_subscriptions",
		SQL: `CREATE TABLE IF NOT EXISTS subscriptions (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id            UUID        NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  package_id         UUID        NOT NULL REFERENCES packages(id) ON DELETE RESTRICT,
  external_id        TEXT        NOT NULL UNIQUE,
  status             TEXT        NOT NULL CHECK (status IN ('ACTIVE','PAST_DUE','CANCELED','EXPIRED')),
  current_period_end TIMESTAMPTZ NOT NULL,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_subscriptions_user_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_subscriptions_user_status ON subscriptions (user_id, status);`,
	},
	{
		Name: "create_table_mail_items",
		SQL: `CREATE TABLE IF NOT EXISTS mail_items (
  id           UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id      UUID         NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  mailbox_id   UUID         NOT NULL REFERENCES mailboxes(id) ON DELETE RESTRICT,
  sender       TEXT         NOT NULL DEFAULT '',
  kind         TEXT         NOT NULL CHECK (kind IN ('LETTER','PARCEL')),
  width_cm     NUMERIC(8,2) NOT NULL CHECK (width_cm > 0),
  height_cm    NUMERIC(8,2) NOT NULL CHECK (height_cm > 0),
  depth_cm     NUMERIC(8,2) NOT NULL CHECK (depth_cm > 0),
  weight_grams INTEGER      NOT NULL DEFAULT 0 CHECK (weight_grams >= 0),
  oversized    BOOLEAN      NOT NULL DEFAULT FALSE,
  status       TEXT         NOT NULL DEFAULT 'RECEIVED'
               CHECK (status IN ('RECEIVED','SCANNED','FORWARDED','SHREDDED','HELD')),
  envelope_key TEXT         NOT NULL DEFAULT '',
  scan_key     TEXT         NOT NULL DEFAULT '',
  received_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_mail_items_user_received",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_mail_items_user_received ON mail_items (user_id, received_at DESC);`,
	},
	{
		Name: "create_table_mail_action_requests",
		SQL: `CREATE TABLE IF NOT EXISTS mail_action_requests (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  mail_item_id    UUID        NOT NULL REFERENCES mail_items(id) ON DELETE CASCADE,
  user_id         UUID        NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  action          TEXT        NOT NULL CHECK (action IN ('OPEN_AND_SCAN','FORWARD','SHRED','HOLD')),
  status          TEXT        NOT NULL DEFAULT 'PENDING'
                  CHECK (status IN ('PENDING','APPROVED','IN_PROGRESS','COMPLETED','REJECTED','CANCELED')),
  forward_address TEXT        NOT NULL DEFAULT '',
  notes           TEXT        NOT NULL DEFAULT '',
  carrier         TEXT        NOT NULL DEFAULT '',
  tracking_number TEXT        NOT NULL DEFAULT '',
  processed_by    UUID        REFERENCES profiles(id) ON DELETE SET NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  completed_at    TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_action_one_open_per_item",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_action_open_item ON mail_action_requests (mail_item_id)
  WHERE status IN ('PENDING','APPROVED','IN_PROGRESS');`,
	},
	{
		Name: "create_index_action_status_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_action_status_created ON mail_action_requests (status, created_at);`,
	},
	{
		Name: "create_table_activity_logs",
		SQL: `CREATE TABLE IF NOT EXISTS activity_logs (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  actor_id    UUID        REFERENCES profiles(id) ON DELETE SET NULL,
  action      TEXT        NOT NULL,
  entity_type TEXT        NOT NULL,
  entity_id   TEXT        NOT NULL DEFAULT '',
  details     JSONB,
  ip          TEXT        NOT NULL DEFAULT '',
  request_id  TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_activity_logs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activity_logs_created_at ON activity_logs (created_at DESC);`,
	},
	{
		Name: "create_table_allowed_ips",
		SQL: `CREATE TABLE IF NOT EXISTS allowed_ips (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  cidr       CIDR        NOT NULL UNIQUE,
  label      TEXT        NOT NULL DEFAULT '',
  created_by UUID        REFERENCES profiles(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations, in order.
// Each step and its ledger row are committed together.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to create migration ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		log.Error("db_migration_failed", zap.String("status", "error"), zap.Error(err))
		return err
	}

	pending := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		pending++
		stepStart := time.Now()
		if err := applyStep(ctx, db, step); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if pending == 0 {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema up to date"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps_applied", pending),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
