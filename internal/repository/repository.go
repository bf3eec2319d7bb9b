package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

var ErrRunNotFound = errors.New("workflow run not found")

// RunRepository keeps the latest record of each workflow run, keyed by run id.
type RunRepository interface {
	Put(ctx context.Context, state *models.RunState) error
	Get(ctx context.Context, runID string) (*models.RunState, error)
}

func encode(state *models.RunState) ([]byte, error) {
	if state == nil || state.ID == "" {
		return nil, fmt.Errorf("run state must have an id")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize run %s: %w", state.ID, err)
	}
	return payload, nil
}

func decode(runID string, payload []byte) (*models.RunState, error) {
	var state models.RunState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unable to deserialize run %s: %w", runID, err)
	}
	return &state, nil
}
