package models

import (
	"time"
)

type Status string

const (
	StatusRunning  Status = "running"
	StatusWarning  Status = "warning"
	StatusError    Status = "error"
	StatusComplete Status = "complete"
)

type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageWarning StageStatus = "warning"
)

type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// GuardrailReport is the content-safety classification of one stage's raw text.
type GuardrailReport struct {
	Violations []string `json:"violations"`
	RiskTier   RiskTier `json:"risk_tier"`
	Message    string   `json:"message"`
}

func (g *GuardrailReport) ViolationCount() int {
	if g == nil {
		return 0
	}
	return len(g.Violations)
}

type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// StageOutput is produced once per stage invocation and never mutated afterwards.
//
// Structured holds either a decoded JSON value (map[string]any or []any) or a
// map[string]string of named sections. A nil Structured means extraction failed.
type StageOutput struct {
	StageName       string           `json:"stage_name"`
	StageIndex      int              `json:"stage_index"`
	RawText         string           `json:"raw_text"`
	Structured      any              `json:"structured,omitempty"`
	GuardrailReport *GuardrailReport `json:"guardrail_report,omitempty"`
	StageStatus     StageStatus      `json:"stage_status"`
	PromptTokens    int              `json:"prompt_tokens"`
	Duration        time.Duration    `json:"duration_ns"`
}

func (o *StageOutput) HasStructuredOutput() bool {
	return !IsEmptyPayload(o.Structured)
}

// StageRun pairs a stage output with the validation report derived from it.
type StageRun struct {
	Output     StageOutput      `json:"output"`
	Validation ValidationReport `json:"validation"`
}

// IsEmptyPayload reports whether a structured payload is absent or carries nothing.
func IsEmptyPayload(payload any) bool {
	switch p := payload.(type) {
	case nil:
		return true
	case map[string]any:
		return len(p) == 0
	case []any:
		return len(p) == 0
	case map[string]string:
		return len(p) == 0
	default:
		return false
	}
}
