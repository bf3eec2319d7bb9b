package repository

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/database"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/redis"
)

// Custom flag for running repository tests against real redis and postgres servers
var runIntegration = flag.Bool("integration", false, "Run repository tests against real redis and postgres")

func sampleRun(id string) *models.RunState {
	state := models.NewRunState(id, "ARGs in river sediments")
	report := models.GuardrailReport{Violations: []string{"Contains Docker execution command"}, RiskTier: models.RiskMedium, Message: "Some execution patterns detected (1 issues)"}
	state.Record(models.StageOutput{
		StageName:   "sampling_design",
		StageIndex:  1,
		RawText:     "```json\n{\"hypotheses\": []}\n```",
		Structured:  map[string]any{"hypotheses": []any{}},
		StageStatus: models.StageSuccess,
	}, models.ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{"Missing recommended key: qc_strategy"}})
	state.Record(models.StageOutput{
		StageName:       "bioinformatics_pipeline",
		StageIndex:      2,
		RawText:         "```bash\ndocker run x\n```",
		Structured:      map[string]string{"pipeline_script": "docker run x"},
		GuardrailReport: &report,
		StageStatus:     models.StageWarning,
	}, models.ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}})
	state.Warn()
	state.Finish()
	return state
}

// exerciseRepository runs the behaviour shared by every backend.
func exerciseRepository(t *testing.T, repo RunRepository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing-run"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	running := models.NewRunState("run-repo-1", "query")
	if err := repo.Put(ctx, running); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := repo.Get(ctx, "run-repo-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Status != models.StatusRunning || len(got.Stages) != 0 {
		t.Errorf("unexpected running record %+v", got)
	}

	final := sampleRun("run-repo-1")
	if err := repo.Put(ctx, final); err != nil {
		t.Fatalf("Put() replace failed: %v", err)
	}

	got, err = repo.Get(ctx, "run-repo-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Status != models.StatusWarning {
		t.Errorf("Status = %s, want warning", got.Status)
	}
	if len(got.Stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(got.Stages))
	}
	second, _ := got.Stage(2)
	if second.Output.GuardrailReport.ViolationCount() != 1 {
		t.Errorf("guardrail report not preserved: %+v", second.Output.GuardrailReport)
	}
	if !second.Output.HasStructuredOutput() {
		t.Error("structured payload not preserved")
	}
	if got.CompletedAt == nil {
		t.Error("completion time not preserved")
	}

	if err := repo.Put(ctx, &models.RunState{}); err == nil {
		t.Error("expected error for a run without id")
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	state := sampleRun("run-copy")
	if err := repo.Put(ctx, state); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	state.Status = models.StatusError
	state.Stages = state.Stages[:1]

	got, _ := repo.Get(ctx, "run-copy")
	if got.Status != models.StatusWarning || len(got.Stages) != 2 {
		t.Errorf("stored record changed through the caller's pointer: %+v", got)
	}
}

func TestMemoryRepository_RejectsRunWithoutID(t *testing.T) {
	repo := NewMemoryRepository()

	if err := repo.Put(context.Background(), models.NewRunState("", "q")); err == nil {
		t.Error("expected error for a run without an id")
	}
	if err := repo.Put(context.Background(), nil); err == nil {
		t.Error("expected error for a nil run")
	}
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() failed: %v", err)
	}
	defer repo.Close()

	exerciseRepository(t, repo)
}

func TestRedisRepository(t *testing.T) {
	if !*runIntegration {
		t.Skip("Skipping integration test - use 'go test -integration' to run against redis")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()
	client, err := redis.ConnectRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 1)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	defer client.Close()
	defer client.Del(ctx, runKey("run-repo-1"))

	exerciseRepository(t, NewRedisRepository(client, time.Minute))
}

func TestPostgresRepository(t *testing.T) {
	if !*runIntegration {
		t.Skip("Skipping integration test - use 'go test -integration' to run against postgres")
	}

	ctx := context.Background()
	db, err := database.New(ctx, database.Config{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "postgres"),
		Password: getenv("DB_PASSWORD", "postgres"),
		Database: getenv("DB_NAME", "workflow"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	defer db.Pool.Exec(ctx, `DELETE FROM workflow_runs WHERE run_id = $1`, "run-repo-1")

	exerciseRepository(t, NewPostgresRepository(db))
}

func getenv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
