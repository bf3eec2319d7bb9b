package mcpadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/repository"
)

// RunWorkflowInput is the MCP tool input schema (matches HTTP API field names).
type RunWorkflowInput struct {
	Query string `json:"query" jsonschema:"research question that seeds the workflow"`
	RunID string `json:"run_id,omitempty" jsonschema:"optional run identifier, generated when empty"`
}

type GetWorkflowRunInput struct {
	RunID string `json:"run_id" jsonschema:"workflow run identifier"`
}

var ErrEmptyQuery = errors.New("query cannot be empty")

// NewRunWorkflowHandler returns a tool handler that executes and stores a run.
// Pass the returned function to mcp.AddTool.
func NewRunWorkflowHandler(exec *executor.Executor, repo repository.RunRepository) func(context.Context, *mcp.CallToolRequest, RunWorkflowInput) (*mcp.CallToolResult, models.RunSummary, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunWorkflowInput) (*mcp.CallToolResult, models.RunSummary, error) {
		return RunWorkflow(ctx, exec, repo, input)
	}
}

// RunWorkflow executes the four stages and returns the run summary.
func RunWorkflow(
	ctx context.Context,
	exec *executor.Executor,
	repo repository.RunRepository,
	input RunWorkflowInput,
) (*mcp.CallToolResult, models.RunSummary, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, models.RunSummary{}, ErrEmptyQuery
	}

	runID := input.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	state := exec.Execute(ctx, runID, input.Query)
	if err := repo.Put(ctx, state); err != nil {
		return nil, models.RunSummary{}, fmt.Errorf("run %s finished but could not be stored: %w", runID, err)
	}

	return nil, state.Summary(), nil
}

func NewGetWorkflowRunHandler(repo repository.RunRepository) func(context.Context, *mcp.CallToolRequest, GetWorkflowRunInput) (*mcp.CallToolResult, models.RunSummary, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetWorkflowRunInput) (*mcp.CallToolResult, models.RunSummary, error) {
		state, err := repo.Get(ctx, input.RunID)
		if err != nil {
			return nil, models.RunSummary{}, err
		}
		return nil, state.Summary(), nil
	}
}

// NewServer registers the workflow tools on a new MCP server.
func NewServer(exec *executor.Executor, repo repository.RunRepository) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "workflow-agent",
			Version: "1.0.0",
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_workflow",
		Description: "Design an ARG surveillance study: sampling design, wet-lab protocol, bioinformatics pipeline and statistical analysis",
	}, NewRunWorkflowHandler(exec, repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_workflow_run",
		Description: "Fetch the summary of a previously executed workflow run",
	}, NewGetWorkflowRunHandler(repo))

	return server
}
