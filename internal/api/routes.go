package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/workflow-agent/internal/models"
)

const OpenAPIPath = "/api/v1/openapi.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/workflow/run").
			To(handler.RunWorkflow).
			Doc("Run the workflow and wait for the result").
			Metadata(restfulspec.KeyOpenAPITags, []string{"workflow"}).
			Reads(WorkflowRequest{}).
			Writes(WorkflowResponse{}).
			Returns(200, "OK", WorkflowResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/workflow/run-async").
			To(handler.RunWorkflowAsync).
			Doc("Start the workflow in the background").
			Metadata(restfulspec.KeyOpenAPITags, []string{"workflow"}).
			Reads(WorkflowRequest{}).
			Writes(AsyncResponse{}).
			Returns(202, "Accepted", AsyncResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/workflow/status/{run_id}").
			To(handler.Status).
			Doc("Run status and completed stages").
			Metadata(restfulspec.KeyOpenAPITags, []string{"workflow"}).
			Param(ws.PathParameter("run_id", "Workflow run identifier").DataType("string")).
			Writes(StatusResponse{}).
			Returns(200, "OK", StatusResponse{}).
			Returns(404, "Run Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/workflow/output/{run_id}").
			To(handler.Output).
			Doc("Summary of a finished run").
			Metadata(restfulspec.KeyOpenAPITags, []string{"workflow"}).
			Param(ws.PathParameter("run_id", "Workflow run identifier").DataType("string")).
			Writes(models.RunSummary{}).
			Returns(200, "OK", models.RunSummary{}).
			Returns(202, "Still Running", AsyncResponse{}).
			Returns(404, "Run Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/workflow/{run_id}/stages/{stage}").
			To(handler.StageDetail).
			Doc("Full output of one stage").
			Metadata(restfulspec.KeyOpenAPITags, []string{"workflow"}).
			Param(ws.PathParameter("run_id", "Workflow run identifier").DataType("string")).
			Param(ws.PathParameter("stage", "Stage name, a1..a4 or 1..4").DataType("string")).
			Writes(StageDetailResponse{}).
			Returns(200, "OK", StageDetailResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document for every registered web service.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Workflow Agent API",
			Description: "Four-stage ARG surveillance study design workflow",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "workflow", Description: "Workflow runs"}},
	}
}
