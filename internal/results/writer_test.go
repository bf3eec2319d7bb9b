package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testRun() *models.RunState {
	state := models.NewRunState("3f2c9a10-0000-4000-8000-000000000000", "Track ARGs across a treatment plant")

	state.Record(models.StageOutput{
		StageName:   "sampling_design",
		StageIndex:  1,
		RawText:     "```json\n{\"hypotheses\": [\"h1\"]}\n```",
		Structured:  map[string]any{"hypotheses": []any{"h1"}},
		StageStatus: models.StageSuccess,
	}, models.ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}})

	report := guardrails.WetLabDetector.Check("Incubate at 37°C for 30 minutes with 250 µL")
	state.Record(models.StageOutput{
		StageName:       "wetlab_protocol",
		StageIndex:      2,
		RawText:         "Incubate at 37°C for 30 minutes with 250 µL",
		GuardrailReport: &report,
		StageStatus:     models.StageWarning,
	}, models.ValidationReport{Valid: false, Errors: []string{"No structured output found"}, Warnings: []string{}})

	state.Fail("wetlab_protocol validation failed: No structured output found")
	state.Finish()
	return state
}

func TestWriter_Save(t *testing.T) {
	baseDir := t.TempDir()
	writer := NewWriter(baseDir, newTestLogger())
	writer.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }

	runDir, err := writer.Save(testRun())
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if want := filepath.Join(baseDir, "20260314_092653_3f2c9a10"); runDir != want {
		t.Errorf("runDir = %s, want %s", runDir, want)
	}

	for _, name := range []string{"A1.md", "A1.json", "A2.md", "A2_guardrails.json", "validation_reports.json", "full_state.json", "SUMMARY.md"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	for _, name := range []string{"A2.json", "A1_guardrails.json", "A3.md"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err == nil {
			t.Errorf("unexpected file %s", name)
		}
	}

	markdown, _ := os.ReadFile(filepath.Join(runDir, "A2.md"))
	if !strings.Contains(string(markdown), "WARNING: Guardrail violations detected") {
		t.Error("high risk markdown should carry the warning header")
	}

	var validations map[string]models.ValidationReport
	byes, _ := os.ReadFile(filepath.Join(runDir, "validation_reports.json"))
	if err := json.Unmarshal(byes, &validations); err != nil {
		t.Fatalf("invalid validation_reports.json: %v", err)
	}
	if len(validations) != 2 || validations["a2"].Valid {
		t.Errorf("unexpected validations %+v", validations)
	}

	var full models.RunState
	byes, _ = os.ReadFile(filepath.Join(runDir, "full_state.json"))
	if err := json.Unmarshal(byes, &full); err != nil {
		t.Fatalf("invalid full_state.json: %v", err)
	}
	for _, stage := range full.Stages {
		if stage.Output.RawText != "" {
			t.Errorf("raw text of %s should be stripped", stage.Output.StageName)
		}
	}
	if full.Status != models.StatusError {
		t.Errorf("Status = %s", full.Status)
	}

	summary, _ := os.ReadFile(filepath.Join(runDir, "SUMMARY.md"))
	for _, want := range []string{"**Status:** error", "**Error:** wetlab_protocol validation failed", "A2 wetlab_protocol**: warning (4 guardrail violations)", "`full_state.json`"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("SUMMARY.md missing %q", want)
		}
	}
}

func TestWriter_SaveKeepsCallerState(t *testing.T) {
	state := testRun()
	if _, err := NewWriter(t.TempDir(), newTestLogger()).Save(state); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if state.Stages[0].Output.RawText == "" {
		t.Error("Save must not strip raw text from the caller's record")
	}
}

func TestRunDirName(t *testing.T) {
	if got := runDirName("20260101_000000", ""); got != "20260101_000000" {
		t.Errorf("runDirName() = %s", got)
	}
	if got := runDirName("20260101_000000", "abc"); got != "20260101_000000_abc" {
		t.Errorf("runDirName() = %s", got)
	}
}
