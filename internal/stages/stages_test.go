package stages

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/config"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/extract"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testConfig() *config.StagesConfig {
	return &config.StagesConfig{
		Stages: config.StagesSection{
			Definitions: []config.StageConfiguration{
				{Name: SamplingDesign, SystemPrompt: "s1", UserPrompt: "Q: ###USER_QUERY###"},
				{Name: WetLabProtocol, SystemPrompt: "s2", UserPrompt: "D: ###SAMPLING_OUTPUT###"},
				{Name: BioinformaticsPipeline, SystemPrompt: "s3", UserPrompt: "W: ###WETLAB_OUTPUT###"},
				{Name: StatisticalAnalysis, SystemPrompt: "s4", UserPrompt: "B: ###BIOINFO_OUTPUT###"},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	stages, err := Build(testConfig(), newTestLogger())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	expected := []struct {
		name        string
		temperature float64
		maxTokens   int
		mode        extract.Mode
		guarded     bool
	}{
		{SamplingDesign, 0.3, 4000, extract.ModeJSON, false},
		{WetLabProtocol, 0.3, 5000, extract.ModeJSON, true},
		{BioinformaticsPipeline, 0.2, 6000, extract.ModeSections, true},
		{StatisticalAnalysis, 0.2, 6000, extract.ModeSections, true},
	}

	if len(stages) != len(expected) {
		t.Fatalf("expected %d stages, got %d", len(expected), len(stages))
	}
	for i, want := range expected {
		stage := stages[i]
		if stage.Index != i+1 {
			t.Errorf("stage %d: Index = %d", i, stage.Index)
		}
		if stage.Name != want.name {
			t.Errorf("stage %d: Name = %s, want %s", i, stage.Name, want.name)
		}
		if stage.Temperature != want.temperature || stage.MaxTokens != want.maxTokens {
			t.Errorf("stage %s: params = %.1f/%d", stage.Name, stage.Temperature, stage.MaxTokens)
		}
		if stage.Mode != want.mode {
			t.Errorf("stage %s: Mode = %s", stage.Name, stage.Mode)
		}
		if stage.Guarded() != want.guarded {
			t.Errorf("stage %s: Guarded = %v", stage.Name, stage.Guarded())
		}
	}
}

func TestBuild_ModelOverride(t *testing.T) {
	cfg := testConfig()
	temperature := 0.0
	cfg.Stages.Definitions[2].Model = config.ModelParams{MaxTokens: 8000, Temperature: &temperature}

	stages, err := Build(cfg, newTestLogger())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if stages[2].MaxTokens != 8000 || stages[2].Temperature != 0 {
		t.Errorf("override not applied: %d/%.1f", stages[2].MaxTokens, stages[2].Temperature)
	}
	if stages[3].MaxTokens != 6000 {
		t.Errorf("override leaked into another stage: %d", stages[3].MaxTokens)
	}
}

func TestBuild_MissingStage(t *testing.T) {
	cfg := testConfig()
	cfg.Stages.Definitions = cfg.Stages.Definitions[:3]

	_, err := Build(cfg, newTestLogger())
	if !errors.Is(err, config.ErrMissingPrompt) {
		t.Errorf("expected ErrMissingPrompt, got %v", err)
	}
}

func TestBuild_MissingPlaceholder(t *testing.T) {
	cfg := testConfig()
	cfg.Stages.Definitions[1].UserPrompt = "no placeholder here"

	if _, err := Build(cfg, newTestLogger()); err == nil {
		t.Error("expected error for missing placeholder")
	}
}

func TestBuild_ShippedConfig(t *testing.T) {
	cfg, err := config.LoadStagesConfigFile(filepath.Join("..", "..", "configs", "stages.yaml"))
	if err != nil {
		t.Fatalf("failed to load shipped config: %v", err)
	}
	if _, err := Build(cfg, newTestLogger()); err != nil {
		t.Errorf("shipped config does not build: %v", err)
	}
}

func TestPrompt(t *testing.T) {
	stage := &Stage{UserTemplate: "Design:\n###SAMPLING_OUTPUT###\nEnd", Placeholder: "###SAMPLING_OUTPUT###"}

	got := stage.Prompt(`{"a": 1}`)
	if got != "Design:\n{\"a\": 1}\nEnd" {
		t.Errorf("Prompt() = %q", got)
	}
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"Absent payload", nil, "{}"},
		{"Keys are sorted", map[string]any{"b": 1.0, "a": "x"}, "{\n  \"a\": \"x\",\n  \"b\": 1\n}"},
		{"Sections keep shell operators", map[string]string{"pipeline_script": "a && b > c"}, "{\n  \"pipeline_script\": \"a && b > c\"\n}"},
		{"Array payload", []any{"x"}, "[\n  \"x\"\n]"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Serialize(test.payload); got != test.want {
				t.Errorf("Serialize() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		ref   string
		index int
		ok    bool
	}{
		{"a1", 1, true},
		{"A4", 4, true},
		{"3", 3, true},
		{" wetlab_protocol ", 2, true},
		{"a5", 0, false},
		{"0", 0, false},
		{"", 0, false},
		{"sampling", 0, false},
	}

	for _, test := range tests {
		index, ok := ParseIndex(test.ref)
		if index != test.index || ok != test.ok {
			t.Errorf("ParseIndex(%q) = %d, %v; want %d, %v", test.ref, index, ok, test.index, test.ok)
		}
	}
}

func TestNames(t *testing.T) {
	got := strings.Join(Names(), ",")
	want := "sampling_design,wetlab_protocol,bioinformatics_pipeline,statistical_analysis"
	if got != want {
		t.Errorf("Names() = %s", got)
	}
}
