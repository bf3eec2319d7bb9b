package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/results"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/stages"
	"github.com/rs/zerolog"
)

type Handler struct {
	executor   *executor.Executor
	repository repository.RunRepository
	writer     *results.Writer
	logger     *zerolog.Logger

	newID func() string
	async sync.WaitGroup
}

// NewHandler wires the workflow endpoints. A nil writer disables saving.
func NewHandler(exec *executor.Executor, repo repository.RunRepository, writer *results.Writer, logger *zerolog.Logger) *Handler {
	return &Handler{
		executor:   exec,
		repository: repo,
		writer:     writer,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// POST /api/v1/workflow/run
// Body: WorkflowRequest
// Returns: WorkflowResponse
func (h *Handler) RunWorkflow(req *restful.Request, resp *restful.Response) {
	var workflowRequest WorkflowRequest
	if err := req.ReadEntity(&workflowRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if err := workflowRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	runID := h.newID()
	h.logger.Info().Str("runID", runID).Bool("save", workflowRequest.Save).Msg("Start workflow")

	state := h.executor.Execute(req.Request.Context(), runID, workflowRequest.Query)
	h.store(req.Request.Context(), state)

	response := newWorkflowResponse(state)
	if workflowRequest.Save {
		response.ResultsDir = h.save(state)
	}

	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// POST /api/v1/workflow/run-async
// Stores the run as running and executes it in the background.
func (h *Handler) RunWorkflowAsync(req *restful.Request, resp *restful.Response) {
	var workflowRequest WorkflowRequest
	if err := req.ReadEntity(&workflowRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if err := workflowRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	runID := h.newID()
	pending := models.NewRunState(runID, workflowRequest.Query)
	if err := h.repository.Put(ctx, pending); err != nil {
		h.logger.Error().Err(err).Str("runID", runID).Msg("Failed to register run")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	runCtx := context.WithoutCancel(ctx)
	h.async.Add(1)
	go func() {
		defer h.async.Done()

		state := h.executor.Execute(runCtx, runID, workflowRequest.Query)
		h.store(runCtx, state)
		if workflowRequest.Save {
			h.save(state)
		}
	}()

	h.logger.Info().Str("runID", runID).Msg("Workflow accepted")
	resp.WriteHeaderAndEntity(http.StatusAccepted, AsyncResponse{RunID: runID, Status: pending.Status})
}

// GET /api/v1/workflow/status/{run_id}
func (h *Handler) Status(req *restful.Request, resp *restful.Response) {
	state, ok := h.lookup(req, resp)
	if !ok {
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, newStatusResponse(state))
}

// GET /api/v1/workflow/output/{run_id}
// Returns 202 with the current status while the run is still executing.
func (h *Handler) Output(req *restful.Request, resp *restful.Response) {
	state, ok := h.lookup(req, resp)
	if !ok {
		return
	}

	if state.Status == models.StatusRunning {
		resp.WriteHeaderAndEntity(http.StatusAccepted, AsyncResponse{RunID: state.ID, Status: state.Status})
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, state.Summary())
}

// GET /api/v1/workflow/{run_id}/stages/{stage}
func (h *Handler) StageDetail(req *restful.Request, resp *restful.Response) {
	index, valid := stages.ParseIndex(req.PathParameter("stage"))
	if !valid {
		middleware.HandleError(resp, middleware.ErrInvalidStage, http.StatusBadRequest)
		return
	}

	state, ok := h.lookup(req, resp)
	if !ok {
		return
	}

	stage, executed := state.Stage(index)
	if !executed {
		middleware.HandleError(resp, middleware.ErrStageNotExecuted, http.StatusNotFound)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, newStageDetailResponse(state.ID, stage))
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

// Wait blocks until every background run has been stored.
func (h *Handler) Wait() {
	h.async.Wait()
}

func (h *Handler) lookup(req *restful.Request, resp *restful.Response) (*models.RunState, bool) {
	runID := strings.TrimSpace(req.PathParameter("run_id"))
	if runID == "" {
		middleware.HandleError(resp, middleware.ErrEmptyRunID, http.StatusBadRequest)
		return nil, false
	}

	state, err := h.repository.Get(req.Request.Context(), runID)
	if errors.Is(err, repository.ErrRunNotFound) {
		middleware.HandleError(resp, err, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Str("runID", runID).Msg("Failed to load run")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return nil, false
	}

	return state, true
}

func (h *Handler) store(ctx context.Context, state *models.RunState) {
	if err := h.repository.Put(ctx, state); err != nil {
		h.logger.Error().Err(err).Str("runID", state.ID).Msg("Failed to store run")
	}
}

func (h *Handler) save(state *models.RunState) string {
	if h.writer == nil {
		h.logger.Warn().Str("runID", state.ID).Msg("Saving disabled, skipping results")
		return ""
	}

	runDir, err := h.writer.Save(state)
	if err != nil {
		h.logger.Error().Err(err).Str("runID", state.ID).Msg("Failed to save results")
		return ""
	}

	h.logger.Info().Str("runID", state.ID).Str("dir", runDir).Msg("Results saved")
	return runDir
}
