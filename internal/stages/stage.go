package stages

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/extract"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/guardrails"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/validator"
)

// Stage is the static configuration of one workflow step.
type Stage struct {
	Name         string
	Index        int
	SystemPrompt string
	UserTemplate string
	Placeholder  string
	Temperature  float64
	MaxTokens    int
	Mode         extract.Mode
	Extractor    extract.Extractor
	Schema       validator.Schema
	Detector     *guardrails.Detector
}

// Prompt fills the placeholder of the user template with input.
func (s *Stage) Prompt(input string) string {
	return strings.ReplaceAll(s.UserTemplate, s.Placeholder, input)
}

// Guarded reports whether the stage's raw text goes through a content detector.
func (s *Stage) Guarded() bool {
	return s.Detector != nil
}

const emptyPayload = "{}"

// Serialize renders a structured payload as indented JSON with sorted keys, the form
// handed to the next stage. An absent payload renders as an empty object.
func Serialize(payload any) string {
	if payload == nil {
		return emptyPayload
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return emptyPayload
	}
	return strings.TrimRight(buf.String(), "\n")
}
