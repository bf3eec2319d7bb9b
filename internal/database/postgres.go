package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, config Config) (*DB, error) {
	pgPool, err := pgxpool.New(ctx, config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("Failed to connect to database, Error: %w", err)
	}

	return &DB{
		Pool: pgPool,
	}, nil
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
}

const workflowRunsTable = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	run_id     TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const workflowRunsStatusIndex = `CREATE INDEX IF NOT EXISTS workflow_runs_status_idx ON workflow_runs (status)`

// Migrate creates the tables used by the run repository.
func (db *DB) Migrate(ctx context.Context) error {
	for _, statement := range []string{workflowRunsTable, workflowRunsStatusIndex} {
		if _, err := db.Pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("Failed to apply migration, error: %w", err)
		}
	}

	log.Info().Msg("Database schema is up to date")
	return nil
}
