package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/redis/go-redis/v9"
)

const runKeyPrefix = "workflow:run:"

// RedisRepository stores each run as a JSON value that expires after ttl.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisRepository) Put(ctx context.Context, state *models.RunState) error {
	payload, err := encode(state)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, runKey(state.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run %s: %w", state.ID, err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, runID string) (*models.RunState, error) {
	payload, err := r.client.Get(ctx, runKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	return decode(runID, payload)
}

func runKey(runID string) string {
	return runKeyPrefix + runID
}
