package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/rs/zerolog"
)

const timestampLayout = "20060102_150405"

// Writer persists finished runs under a base directory, one sub-directory per run.
type Writer struct {
	baseDir string
	logger  *zerolog.Logger
	now     func() time.Time
}

func NewWriter(baseDir string, logger *zerolog.Logger) *Writer {
	return &Writer{
		baseDir: baseDir,
		logger:  logger,
		now:     time.Now,
	}
}

// Save writes the run's artifacts and returns the directory holding them.
func (w *Writer) Save(state *models.RunState) (string, error) {
	timestamp := w.now().Format(timestampLayout)
	runDir := filepath.Join(w.baseDir, runDirName(timestamp, state.ID))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create results directory %s: %w", runDir, err)
	}

	validations := map[string]models.ValidationReport{}
	for _, stage := range state.Stages {
		key := fmt.Sprintf("a%d", stage.Output.StageIndex)
		validations[key] = stage.Validation

		if err := w.saveStage(runDir, stage.Output); err != nil {
			return "", err
		}
	}

	if err := writeJSON(filepath.Join(runDir, "validation_reports.json"), validations); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "full_state.json"), compact(state)); err != nil {
		return "", err
	}
	if err := w.writeSummary(runDir, timestamp, state); err != nil {
		return "", err
	}

	w.logger.Info().Str("runID", state.ID).Str("dir", runDir).Msg("results saved")
	return runDir, nil
}

func (w *Writer) saveStage(runDir string, output models.StageOutput) error {
	prefix := fmt.Sprintf("A%d", output.StageIndex)

	if output.RawText != "" {
		text := guardrails.Sanitize(output.RawText, output.GuardrailReport)
		if err := os.WriteFile(filepath.Join(runDir, prefix+".md"), []byte(text), 0o644); err != nil {
			return fmt.Errorf("unable to write %s.md: %w", prefix, err)
		}
	}

	if output.HasStructuredOutput() {
		if err := writeJSON(filepath.Join(runDir, prefix+".json"), output.Structured); err != nil {
			return err
		}
	}

	if output.GuardrailReport.ViolationCount() > 0 {
		w.logger.Warn().
			Str("stage", output.StageName).
			Int("violations", output.GuardrailReport.ViolationCount()).
			Msg("saving guardrail report")
		if err := writeJSON(filepath.Join(runDir, prefix+"_guardrails.json"), output.GuardrailReport); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeSummary(runDir string, timestamp string, state *models.RunState) error {
	var b strings.Builder
	b.WriteString("# Research Workflow Run\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n\n", state.ID)
	fmt.Fprintf(&b, "**Timestamp:** %s\n\n", timestamp)
	fmt.Fprintf(&b, "**Status:** %s\n\n", state.Status)
	if state.ErrorMessage != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", state.ErrorMessage)
	}
	fmt.Fprintf(&b, "## Query\n\n%s\n\n", state.Query)

	b.WriteString("## Stage Outputs\n\n")
	for _, stage := range state.Stages {
		fmt.Fprintf(&b, "- **A%d %s**: %s", stage.Output.StageIndex, stage.Output.StageName, stage.Output.StageStatus)
		if n := stage.Output.GuardrailReport.ViolationCount(); n > 0 {
			fmt.Fprintf(&b, " (%d guardrail violations)", n)
		}
		b.WriteString("\n")
	}

	entries, err := os.ReadDir(runDir)
	if err != nil {
		return fmt.Errorf("unable to list %s: %w", runDir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	b.WriteString("\n## Files Generated\n\n")
	for _, name := range files {
		fmt.Fprintf(&b, "- `%s`\n", name)
	}

	if err := os.WriteFile(filepath.Join(runDir, "SUMMARY.md"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("unable to write SUMMARY.md: %w", err)
	}
	return nil
}

// compact drops the raw text of every stage; it is already saved as markdown.
func compact(state *models.RunState) *models.RunState {
	clone := *state
	clone.Stages = make([]models.StageRun, len(state.Stages))
	for i, stage := range state.Stages {
		stage.Output.RawText = ""
		clone.Stages[i] = stage
	}
	return &clone
}

func runDirName(timestamp string, runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	if runID == "" {
		return timestamp
	}
	return timestamp + "_" + runID
}

func writeJSON(path string, value any) error {
	byes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to serialize %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, byes, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
