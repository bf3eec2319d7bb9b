package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/workflow-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stages"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/validator"
	"github.com/rs/zerolog"
)

// TokenCounter estimates the size of the instructions sent to the backend
type TokenCounter interface {
	Count(text string) int
}

type role int

const (
	entry role = iota
	interior
	terminal
)

// roleOf derives a stage's escalation role from its position.
func roleOf(position int, total int) role {
	switch {
	case position == 0:
		return entry
	case position == total-1:
		return terminal
	default:
		return interior
	}
}

type Executor struct {
	llmClient llm.LLMClient
	stages    []*stages.Stage
	counter   TokenCounter
	logger    *zerolog.Logger
}

func NewExecutor(
	llmClient llm.LLMClient,
	stages []*stages.Stage,
	counter TokenCounter,
	logger *zerolog.Logger,
) *Executor {
	return &Executor{
		llmClient: llmClient,
		stages:    stages,
		counter:   counter,
		logger:    logger,
	}
}

// Execute runs every stage in order against a fresh run record. Each call owns its
// record, so concurrent calls never share state.
func (e *Executor) Execute(ctx context.Context, runID string, query string) *models.RunState {
	state := models.NewRunState(runID, query)
	e.logger.Info().Str("runID", runID).Int("stages", len(e.stages)).Msg("starting workflow")

	input := query
	for position, stage := range e.stages {
		if state.Failed() {
			e.logger.Warn().
				Str("runID", runID).
				Str("stage", stage.Name).
				Msg("skipping stage due to previous error")
			break
		}

		output, err := e.invoke(ctx, stage, input)
		if err != nil {
			e.logger.Error().Err(err).Str("runID", runID).Str("stage", stage.Name).Msg("stage invocation failed")
			state.Fail(err.Error())
			break
		}

		stageRole := roleOf(position, len(e.stages))
		if isBlank(output.RawText) && stageRole != entry {
			err := &BackendError{Stage: stage.Name, Err: ErrEmptyResponse}
			e.logger.Error().Err(err).Str("runID", runID).Str("stage", stage.Name).Msg("stage returned no text")
			state.Fail(err.Error())
			break
		}

		validation := validator.Validate(output.Structured, stage.Schema, output.GuardrailReport)
		state.Record(*output, validation)
		e.escalate(state, stage, stageRole, output, validation)

		e.logger.Info().
			Str("runID", runID).
			Str("stage", stage.Name).
			Str("stageStatus", string(output.StageStatus)).
			Bool("valid", validation.Valid).
			Int("warnings", len(validation.Warnings)).
			Int("violations", output.GuardrailReport.ViolationCount()).
			Dur("duration", output.Duration).
			Msg("stage complete")

		input = stages.Serialize(output.Structured)
	}

	state.Finish()
	e.logger.Info().
		Str("runID", runID).
		Str("status", string(state.Status)).
		Str("error", state.ErrorMessage).
		Msg("workflow complete")

	return state
}

func (e *Executor) invoke(ctx context.Context, stage *stages.Stage, input string) (*models.StageOutput, error) {
	prompt := stage.Prompt(input)
	e.logger.Debug().Str("stage", stage.Name).Int("promptLength", len(prompt)).Msg("invoking stage")

	start := time.Now()
	response, err := e.llmClient.InvokeModel(ctx, llm.LLMRequest{
		SystemPrompt: stage.SystemPrompt,
		Prompt:       prompt,
		MaxTokens:    stage.MaxTokens,
		Temperature:  stage.Temperature,
	})
	if err != nil {
		return nil, &BackendError{Stage: stage.Name, Err: err}
	}

	output := &models.StageOutput{
		StageName:    stage.Name,
		StageIndex:   stage.Index,
		PromptTokens: e.counter.Count(stage.SystemPrompt + "\n" + prompt),
		Duration:     time.Since(start),
	}
	if response != nil {
		output.RawText = response.Content
	}

	output.Structured = stage.Extractor.Extract(output.RawText)
	if stage.Guarded() {
		report := stage.Detector.Check(output.RawText)
		output.GuardrailReport = &report
	}
	output.StageStatus = stageStatus(output)

	return output, nil
}

// escalate applies the per-role status policy after a stage has been recorded.
// The terminal stage completes the run only when its report is valid with no
// warnings; a guardrail hit adds a summary warning, so a fully sectioned final
// payload with a violation still ends as Warning.
func (e *Executor) escalate(state *models.RunState, stage *stages.Stage, stageRole role, output *models.StageOutput, validation models.ValidationReport) {
	switch stageRole {
	case entry:
		if isBlank(output.RawText) {
			state.Fail(fmt.Sprintf("%s produced no output", stage.Name))
			return
		}
		if !validation.Valid {
			state.Warn()
		}
	case interior:
		if !validation.Valid {
			state.Fail(fmt.Sprintf("%s validation failed: %s", stage.Name, strings.Join(validation.Errors, "; ")))
		}
	case terminal:
		if !validation.Valid || len(validation.Warnings) > 0 {
			state.Warn()
			return
		}
		state.Complete()
	}
}

func stageStatus(output *models.StageOutput) models.StageStatus {
	if !output.HasStructuredOutput() || output.GuardrailReport.ViolationCount() > 0 {
		return models.StageWarning
	}
	return models.StageSuccess
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
