package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/filegate/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDBTimeout = 5 * time.Second

type schemaStep struct {
	name string
	sql  string
}

var schemaSteps = []schemaStep{
	{
		name: "create_table_file_metadata",
		sql: `CREATE TABLE IF NOT EXISTS file_metadata (
  id              UUID        PRIMARY KEY,
  uid             TEXT        NOT NULL,
  user_storage_id TEXT        NOT NULL,
  bucket          TEXT        NOT NULL,
  object_key      TEXT        NOT NULL UNIQUE,
  original_name   TEXT        NOT NULL,
  mime_type       TEXT        NOT NULL,
  size            BIGINT      NULL CHECK (size IS NULL OR size >= 0),
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		name: "create_index_file_metadata_uid",
		sql:  `CREATE INDEX IF NOT EXISTS idx_file_metadata_uid ON file_metadata (uid);`,
	},
	{
		name: "create_table_metadata_probes",
		sql: `CREATE TABLE IF NOT EXISTS metadata_probes (
  id         UUID        PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// NewPostgresPool connects to the PostgreSQL metadata store using pgx.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the metadata tables when they are missing. Every step is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, step := range schemaSteps {
		if _, err := pool.Exec(ctx, step.sql); err != nil {
			return fmt.Errorf("schema step %s: %w", step.name, err)
		}
	}
	return nil
}
