package stream

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	red "github.com/povarna/generative-ai-agents/workflow-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/results"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stream/redis"
	"github.com/rs/zerolog"
)

type StreamConfig struct {
	Provider    string // only redis today
	RedisConfig *redis.RedisStreamConfig
}

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	exec *executor.Executor,
	repo repository.RunRepository,
	writer *results.Writer,
	logger *zerolog.Logger,
) (StreamConsumer, error) {

	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = "redis"
	}

	switch provider {
	case "redis":
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := red.ConnectRedis(ctx, cfg.RedisConfig.RedisAddr, cfg.RedisConfig.RedisPassword, 5)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(client, cfg.RedisConfig, exec, repo, writer, logger), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
