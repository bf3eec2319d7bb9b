package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/database"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

// PostgresRepository keeps runs in the workflow_runs table as JSONB.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, state *models.RunState) error {
	payload, err := encode(state)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO workflow_runs (run_id, status, state, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (run_id) DO UPDATE
	SET status = EXCLUDED.status, state = EXCLUDED.state, updated_at = NOW()`

	if _, err := r.db.Pool.Exec(ctx, query, state.ID, string(state.Status), payload); err != nil {
		return fmt.Errorf("Failed to store run %s, error: %w", state.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, runID string) (*models.RunState, error) {
	query := `SELECT state FROM workflow_runs WHERE run_id = $1`

	var payload []byte
	err := r.db.Pool.QueryRow(ctx, query, runID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to load run %s, error: %w", runID, err)
	}

	return decode(runID, payload)
}
