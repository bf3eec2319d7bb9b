package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	run_id     TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteRepository is a single-file run store for local and CLI use.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database %s: %w", path, err)
	}
	// A single connection serialises writers; sqlite allows only one at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create sqlite schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, state *models.RunState) error {
	payload, err := encode(state)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO workflow_runs (run_id, status, state, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (run_id) DO UPDATE
	SET status = excluded.status, state = excluded.state, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, state.ID, string(state.Status), string(payload)); err != nil {
		return fmt.Errorf("failed to store run %s: %w", state.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, runID string) (*models.RunState, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM workflow_runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	return decode(runID, []byte(payload))
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
