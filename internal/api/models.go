package api

import (
	"strings"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

type WorkflowRequest struct {
	Query string `json:"query" description:"Research question that seeds the workflow"`
	Save  bool   `json:"save,omitempty" description:"Persist the run artifacts to the results directory"`
}

func (w *WorkflowRequest) Validate() error {
	if strings.TrimSpace(w.Query) == "" {
		return middleware.ErrEmptyQuery
	}
	return nil
}

type WorkflowResponse struct {
	RunID        string                `json:"run_id" description:"Workflow run identifier"`
	Status       models.Status         `json:"status" description:"running, warning, error or complete"`
	ErrorMessage string                `json:"error_message,omitempty" description:"First error observed by the run"`
	Stages       []models.StageSummary `json:"stages" description:"Executed stages in order"`
	ResultsDir   string                `json:"results_dir,omitempty" description:"Directory holding the saved artifacts"`
}

type AsyncResponse struct {
	RunID  string        `json:"run_id" description:"Workflow run identifier"`
	Status models.Status `json:"status" description:"Run status at the time of the call"`
}

type StatusResponse struct {
	RunID           string        `json:"run_id" description:"Workflow run identifier"`
	Status          models.Status `json:"status" description:"running, warning, error or complete"`
	ErrorMessage    string        `json:"error_message,omitempty" description:"First error observed by the run"`
	CompletedStages []string      `json:"completed_stages" description:"Names of the stages that produced an output"`
}

type StageDetailResponse struct {
	RunID           string                  `json:"run_id" description:"Workflow run identifier"`
	StageIndex      int                     `json:"stage_index" description:"1-based stage position"`
	StageName       string                  `json:"stage_name" description:"Stage identifier"`
	StageStatus     models.StageStatus      `json:"stage_status" description:"success or warning"`
	RawText         string                  `json:"raw_text" description:"Unmodified backend response"`
	Structured      any                     `json:"structured,omitempty" description:"Extracted payload"`
	GuardrailReport *models.GuardrailReport `json:"guardrail_report,omitempty" description:"Content safety classification"`
	Validation      models.ValidationReport `json:"validation" description:"Schema validation result"`
}

func newWorkflowResponse(state *models.RunState) WorkflowResponse {
	summary := state.Summary()
	return WorkflowResponse{
		RunID:        summary.RunID,
		Status:       summary.Status,
		ErrorMessage: summary.ErrorMessage,
		Stages:       summary.Stages,
	}
}

func newStatusResponse(state *models.RunState) StatusResponse {
	completed := make([]string, 0, len(state.Stages))
	for _, stage := range state.Stages {
		completed = append(completed, stage.Output.StageName)
	}

	return StatusResponse{
		RunID:           state.ID,
		Status:          state.Status,
		ErrorMessage:    state.ErrorMessage,
		CompletedStages: completed,
	}
}

func newStageDetailResponse(runID string, stage *models.StageRun) StageDetailResponse {
	return StageDetailResponse{
		RunID:           runID,
		StageIndex:      stage.Output.StageIndex,
		StageName:       stage.Output.StageName,
		StageStatus:     stage.Output.StageStatus,
		RawText:         stage.Output.RawText,
		Structured:      stage.Output.Structured,
		GuardrailReport: stage.Output.GuardrailReport,
		Validation:      stage.Validation,
	}
}
