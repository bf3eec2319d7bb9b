package models

import (
	"time"
)

// RunState is the record threaded through one workflow execution. It is owned by a
// single executor invocation and must not be shared between concurrent runs.
type RunState struct {
	ID           string     `json:"run_id"`
	Query        string     `json:"query"`
	Status       Status     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Stages       []StageRun `json:"stages,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func NewRunState(id string, query string) *RunState {
	return &RunState{
		ID:        id,
		Query:     query,
		Status:    StatusRunning,
		Stages:    []StageRun{},
		CreatedAt: time.Now(),
	}
}

// Stage returns the record of the 1-based stage index, if that stage ran.
func (r *RunState) Stage(index int) (*StageRun, bool) {
	if index < 1 || index > len(r.Stages) {
		return nil, false
	}
	return &r.Stages[index-1], true
}

// Record appends the next stage. Stages are only ever appended in order, which keeps
// the populated indexes a contiguous prefix.
func (r *RunState) Record(output StageOutput, validation ValidationReport) {
	r.Stages = append(r.Stages, StageRun{Output: output, Validation: validation})
}

// Fail moves the run to Error. The first error message wins.
func (r *RunState) Fail(message string) {
	if r.Status == StatusError {
		return
	}
	r.Status = StatusError
	r.ErrorMessage = message
}

// Warn downgrades the run to Warning unless it already failed.
func (r *RunState) Warn() {
	if r.Status == StatusError {
		return
	}
	r.Status = StatusWarning
}

// Complete marks a terminal success unless the run already failed.
func (r *RunState) Complete() {
	if r.Status == StatusError {
		return
	}
	r.Status = StatusComplete
}

func (r *RunState) Failed() bool {
	return r.Status == StatusError
}

func (r *RunState) Finish() {
	now := time.Now()
	r.CompletedAt = &now
}

// Run output contract

type StageSummary struct {
	StageIndex          int         `json:"stage_index" jsonschema:"1-based position of the stage in the workflow"`
	StageName           string      `json:"stage_name" jsonschema:"stage identifier"`
	StageStatus         StageStatus `json:"stage_status" jsonschema:"success or warning"`
	HasStructuredOutput bool        `json:"has_structured_output" jsonschema:"whether a structured payload was extracted"`
	ViolationCount      int         `json:"violation_count" jsonschema:"number of guardrail violations"`
}

type RunSummary struct {
	RunID        string         `json:"run_id" jsonschema:"workflow run identifier"`
	Query        string         `json:"query" jsonschema:"original research question"`
	Status       Status         `json:"status" jsonschema:"running, warning, error or complete"`
	ErrorMessage string         `json:"error_message,omitempty" jsonschema:"first error observed by the run"`
	Stages       []StageSummary `json:"stages" jsonschema:"populated stages in execution order"`
}

func (r *RunState) Summary() RunSummary {
	summary := RunSummary{
		RunID:        r.ID,
		Query:        r.Query,
		Status:       r.Status,
		ErrorMessage: r.ErrorMessage,
		Stages:       make([]StageSummary, 0, len(r.Stages)),
	}

	for _, stage := range r.Stages {
		summary.Stages = append(summary.Stages, StageSummary{
			StageIndex:          stage.Output.StageIndex,
			StageName:           stage.Output.StageName,
			StageStatus:         stage.Output.StageStatus,
			HasStructuredOutput: stage.Output.HasStructuredOutput(),
			ViolationCount:      stage.Output.GuardrailReport.ViolationCount(),
		})
	}

	return summary
}
