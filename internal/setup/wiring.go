package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/config"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/database"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/results"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stages"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/tokens"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string

	RunStore      string
	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration
	Database      database.Config
	SQLitePath    string

	ResultsDir string
	LogLevel   string
	APIPort    string
}

type Dependencies struct {
	Executor   *executor.Executor
	Repository repository.RunRepository
	Writer     *results.Writer
	Logger     *zerolog.Logger

	closers []func()
}

// Close releases the connections opened for the run repository.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		RunStore:        getEnv("RUN_STORE", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTTL:        getEnvDuration("REDIS_TTL", 24*time.Hour),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "workflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SQLitePath: getEnv("SQLITE_PATH", "workflow_runs.db"),
		ResultsDir: getEnv("RESULTS_DIR", "./runs"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		APIPort:    getEnv("WORKFLOW_API_PORT", "18082"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	return WireWithClient(ctx, cfg, llmClient, logger)
}

// WireWithClient builds everything downstream of the backend client.
func WireWithClient(ctx context.Context, cfg *Config, llmClient llm.LLMClient, logger *zerolog.Logger) (*Dependencies, error) {
	// Load stage prompts from YAML
	stagesConfig, err := config.LoadStagesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load stages config: %w", err)
	}

	workflowStages, err := stages.Build(stagesConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build stages from config: %w", err)
	}

	deps := &Dependencies{
		Executor: executor.NewExecutor(llmClient, workflowStages, tokens.NewTiktokenCounter(), logger),
		Writer:   results.NewWriter(cfg.ResultsDir, logger),
		Logger:   logger,
	}

	deps.Repository, err = deps.createRepository(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create %s run store: %w", cfg.RunStore, err)
	}

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Str("runStore", cfg.RunStore).
		Int("stages", len(workflowStages)).
		Msg("Dependencies wired")

	return deps, nil
}

func (d *Dependencies) createRepository(ctx context.Context, cfg *Config) (repository.RunRepository, error) {
	switch cfg.RunStore {
	case "", "memory":
		return repository.NewMemoryRepository(), nil
	case "redis":
		client, err := redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 3)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { client.Close() })
		return repository.NewRedisRepository(client, cfg.RedisTTL), nil
	case "postgres":
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return nil, err
		}
		return repository.NewPostgresRepository(db), nil
	case "sqlite":
		repo, err := repository.NewSQLiteRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { repo.Close() })
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported run store: %s", cfg.RunStore)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
