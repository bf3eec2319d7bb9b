package redis

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/config"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	red "github.com/povarna/generative-ai-agents/workflow-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stages"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

// Custom flag for running stream tests against a real redis server
var runIntegration = flag.Bool("integration", false, "Run stream tests against a real redis server")

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name      string
		values    map[string]any
		wantRunID string
		wantQuery string
		wantErr   bool
	}{
		{
			name:      "Run id and query",
			values:    map[string]any{"payload": `{"run_id": "run-42", "query": "ARGs in soils"}`},
			wantRunID: "run-42",
			wantQuery: "ARGs in soils",
		},
		{
			name:      "Generated run id",
			values:    map[string]any{"payload": `{"query": "ARGs in rivers"}`},
			wantQuery: "ARGs in rivers",
		},
		{"Missing payload", map[string]any{"data": "{}"}, "", "", true},
		{"Payload is not a string", map[string]any{"payload": 42}, "", "", true},
		{"Malformed json", map[string]any{"payload": `{"query":`}, "", "", true},
		{"Blank query", map[string]any{"payload": `{"run_id": "r", "query": "  "}`}, "", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			message, err := decodeMessage(test.values)
			if test.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", message)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeMessage() failed: %v", err)
			}
			if message.Query != test.wantQuery {
				t.Errorf("Query = %q, want %q", message.Query, test.wantQuery)
			}
			if test.wantRunID != "" && message.RunID != test.wantRunID {
				t.Errorf("RunID = %q, want %q", message.RunID, test.wantRunID)
			}
			if message.RunID == "" {
				t.Error("expected a run id")
			}
		})
	}
}

func TestNewRedisStreamConfig_Defaults(t *testing.T) {
	cfg := NewRedisStreamConfig("localhost:6379", "", "", "", "")
	if cfg.Stream != DefaultStream || cfg.Group != DefaultGroup {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.ConsumerName == "" {
		t.Error("expected a consumer name")
	}
}

func TestConsumer_ProcessesPublishedRequest(t *testing.T) {
	if !*runIntegration {
		t.Skip("Skipping integration test - use 'go test -integration' to run against redis")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := red.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 1)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	cfg := NewRedisStreamConfig(addr, "", "workflow-requests-test", "workflow-group-test", "test-consumer")

	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockLLMClient(ctrl)
	mockClient.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		Return(&llm.LLMResponse{Content: "no structured output"}, nil).
		AnyTimes()

	built, err := stages.Build(&config.StagesConfig{
		Stages: config.StagesSection{
			Definitions: []config.StageConfiguration{
				{Name: stages.SamplingDesign, SystemPrompt: "s", UserPrompt: "###USER_QUERY###"},
				{Name: stages.WetLabProtocol, SystemPrompt: "w", UserPrompt: "###SAMPLING_OUTPUT###"},
				{Name: stages.BioinformaticsPipeline, SystemPrompt: "b", UserPrompt: "###WETLAB_OUTPUT###"},
				{Name: stages.StatisticalAnalysis, SystemPrompt: "a", UserPrompt: "###BIOINFO_OUTPUT###"},
			},
		},
	}, nopLogger())
	if err != nil {
		t.Fatalf("failed to build stages: %v", err)
	}

	repo := repository.NewMemoryRepository()
	exec := executor.NewExecutor(mockClient, built, charCounter{}, nopLogger())
	consumer := NewConsumer(client, cfg, exec, repo, nil, nopLogger())
	defer consumer.Stop()
	defer client.Del(context.Background(), cfg.Stream)

	if err := consumer.Setup(ctx); err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if err := consumer.Setup(ctx); err != nil {
		t.Fatalf("Setup() must tolerate an existing group: %v", err)
	}

	if _, err := Publish(ctx, client, cfg.Stream, models.WorkflowMessage{RunID: "stream-run-1", Query: "ARGs in soils"}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Start(consumeCtx) }()

	var state *models.RunState
	for state == nil || state.Status == models.StatusRunning {
		select {
		case <-ctx.Done():
			t.Fatal("timed out waiting for the run")
		case <-time.After(100 * time.Millisecond):
		}
		state, _ = repo.Get(ctx, "stream-run-1")
	}
	stop()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	// The wet-lab stage has no JSON to extract, so the run halts there.
	if state.Status != models.StatusError || len(state.Stages) != 2 {
		t.Errorf("unexpected run %s with %d stages", state.Status, len(state.Stages))
	}
}

type charCounter struct{}

func (charCounter) Count(text string) int {
	return len(text)
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
