package repository

import (
	"context"
	"sync"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

// MemoryRepository is the in-process run registry. Records are lost on restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]*models.RunState
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs: make(map[string]*models.RunState),
	}
}

func (r *MemoryRepository) Put(_ context.Context, state *models.RunState) error {
	// Same serialisation checks as the persistent backends.
	if _, err := encode(state); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[state.ID] = snapshot(state)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, runID string) (*models.RunState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return snapshot(state), nil
}

// snapshot copies the record and its stage list so callers never share a slice with
// the registry.
func snapshot(state *models.RunState) *models.RunState {
	clone := *state
	clone.Stages = append([]models.StageRun(nil), state.Stages...)
	return &clone
}
