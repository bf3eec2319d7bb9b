package validator

import (
	"fmt"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

const noStructuredOutput = "No structured output found"

// AnyOf requires the mapping stored under Key to hold at least one of Alternatives.
type AnyOf struct {
	Key          string
	Alternatives []string
	Message      string
}

// Schema is the static shape expected from one stage. Keys are soft: a missing key is
// a warning, never an error. Sections switches the warning wording to the one used for
// named text sections, where an empty section counts as missing.
type Schema struct {
	Keys     []string
	Sections bool
	AnyOf    *AnyOf
}

// Validate checks a structured payload against schema. It never fails: problems are
// reported as errors (payload unusable) or warnings (payload usable).
func Validate(payload any, schema Schema, guardrail *models.GuardrailReport) models.ValidationReport {
	report := models.ValidationReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if models.IsEmptyPayload(payload) {
		report.Valid = false
		report.Errors = append(report.Errors, noStructuredOutput)
		return report
	}

	for _, key := range schema.Keys {
		if present(payload, key) {
			continue
		}
		if schema.Sections {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Missing or empty section: %s", key))
		} else {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Missing recommended key: %s", key))
		}
	}

	if schema.AnyOf != nil && !schema.AnyOf.satisfied(payload) {
		report.Warnings = append(report.Warnings, schema.AnyOf.Message)
	}

	if n := guardrail.ViolationCount(); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Guardrail violations detected: %d issues", n))
	}

	return report
}

func present(payload any, key string) bool {
	switch p := payload.(type) {
	case map[string]any:
		_, ok := p[key]
		return ok
	case map[string]string:
		return p[key] != ""
	default:
		return false
	}
}

// satisfied only applies when the nested key exists; its absence is already reported
// as a missing key.
func (a *AnyOf) satisfied(payload any) bool {
	mapping, ok := payload.(map[string]any)
	if !ok {
		return true
	}
	value, ok := mapping[a.Key]
	if !ok {
		return true
	}

	nested, ok := value.(map[string]any)
	if !ok {
		return false
	}
	for _, alternative := range a.Alternatives {
		if _, ok := nested[alternative]; ok {
			return true
		}
	}
	return false
}
