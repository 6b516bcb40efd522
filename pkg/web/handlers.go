// Package web provides HTTP handlers and REST API endpoints for flow and
// template management.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/registry"
	"github.com/ana-fx/mail-blast-sub001/pkg/services"
)

// InternalHeader marks requests coming from internal operational tooling.
// Internal-only routes reject requests without it.
const InternalHeader = "X-Mailblast-Internal"

type APIHandlers struct {
	flowService       *services.FlowService
	publishingService *services.PublishingService
	templateService   *services.TemplateService
	executionService  *services.ExecutionService
	validator         *validator.Validate
	registry          *registry.Registry
}

func NewAPIHandlers(
	flowService *services.FlowService,
	publishingService *services.PublishingService,
	templateService *services.TemplateService,
	executionService *services.ExecutionService,
	validate *validator.Validate,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		flowService:       flowService,
		publishingService: publishingService,
		templateService:   templateService,
		executionService:  executionService,
		validator:         validate,
		registry:          reg,
	}
}

// RegisterRoutes attaches every API route to the app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	flows := app.Group("/automation/flows")
	flows.Get("/", h.GetFlows)
	flows.Post("/", h.CreateFlow)
	flows.Get("/:id", h.GetFlow)
	flows.Put("/:id", h.UpdateFlow)
	flows.Delete("/:id", h.DeleteFlow)
	flows.Post("/:id/validate", h.ValidateFlow)
	flows.Post("/:id/publish", h.PublishFlow)
	flows.Post("/:id/unpublish", h.UnpublishFlow)
	flows.Get("/:id/executions", h.GetExecutions)
	flows.Post("/:id/executions", h.RecordExecution)

	templates := app.Group("/templates")
	templates.Post("/", h.CreateTemplate)
	templates.Get("/:id", h.GetTemplate)
	templates.Get("/:id/versions", h.GetTemplateVersions)
	templates.Post("/:id/versions", h.ExportTemplateVersion)
	templates.Post("/:id/versions/:versionId/default", h.SetDefaultVersion)

	app.Get("/internal/flows/:id/export", h.ExportFlow)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	params, err := h.parseListFlowsParams(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.flowService.ListFlows(c.Context(), *params)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"flows":         result.Flows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  params.Limit,
			"offset": params.Offset,
		},
	})
}

func (h *APIHandlers) parseListFlowsParams(c fiber.Ctx) (*services.ListFlowsParams, error) {
	params := &services.ListFlowsParams{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		params.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		params.Offset = offset
	}

	params.OwnerID = c.Query("owner_id")
	params.Status = c.Query("status")
	params.SortBy = c.Query("sort_by")
	params.SortOrder = c.Query("sort_order")

	return params, nil
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.flowService.GetFlow(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrFlowNotFound) {
			return notFound(c, "Flow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var req CreateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.flowService.CreateFlow(c.Context(), services.CreateFlowParams{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.Owner,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req UpdateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	flow, err := h.flowService.UpdateFlow(c.Context(), id, services.UpdateFlowParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	// Nodes and edges are replaced together when either is present.
	if req.Nodes != nil || req.Edges != nil {
		flow, err = h.flowService.UpdateFlowGraph(c.Context(), id, transformNodes(req.Nodes), transformEdges(req.Edges))
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	return c.JSON(flow)
}

func transformNodes(inputs []NodeInput) []*models.FlowNode {
	nodes := make([]*models.FlowNode, 0, len(inputs))

	for _, in := range inputs {
		nodes = append(nodes, &models.FlowNode{
			ID:       in.ID,
			Kind:     models.NodeKind(in.Kind),
			Type:     in.Type,
			Label:    in.Label,
			Position: models.Position{X: in.PositionX, Y: in.PositionY},
			Config:   in.Config,
			Enabled:  in.Enabled,
		})
	}

	return nodes
}

func transformEdges(inputs []EdgeInput) []*models.FlowEdge {
	edges := make([]*models.FlowEdge, 0, len(inputs))

	for _, in := range inputs {
		edges = append(edges, &models.FlowEdge{
			ID:           in.ID,
			Source:       in.Source,
			Target:       in.Target,
			SourceHandle: in.SourceHandle,
			TargetHandle: in.TargetHandle,
		})
	}

	return edges
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	if err := h.flowService.DeleteFlow(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrFlowNotFound) {
			return notFound(c, "Flow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	result, err := h.publishingService.Validate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) PublishFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req PublishFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	published, err := h.publishingService.Publish(c.Context(), id, req.ValidationToken)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) UnpublishFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	paused, err := h.publishingService.Unpublish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(paused)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	executions, err := h.executionService.ListExecutions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) RecordExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req RecordExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	execution, err := h.executionService.RecordExecution(c.Context(), services.RecordExecutionParams{
		FlowID:      id,
		ContactID:   req.ContactID,
		Status:      models.ExecutionStatus(req.Status),
		TriggerType: req.TriggerType,
		Error:       req.Error,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.templateService.CreateTemplate(c.Context(), services.CreateTemplateParams{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.Owner,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	template, err := h.templateService.GetTemplate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) GetTemplateVersions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	versions, err := h.templateService.ListVersions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"versions": versions})
}

func (h *APIHandlers) ExportTemplateVersion(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req ExportVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	version, err := h.templateService.ExportVersion(c.Context(), id, req.Blocks)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (h *APIHandlers) SetDefaultVersion(c fiber.Ctx) error {
	id := c.Params("id")
	versionID := c.Params("versionId")

	if id == "" || versionID == "" {
		return badRequest(c, "Template and version IDs are required")
	}

	if err := h.templateService.SetDefaultVersion(c.Context(), id, versionID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExportFlow returns the full flow definition for operational tooling.
// The route is internal-only and rejects requests without the internal
// header.
func (h *APIHandlers) ExportFlow(c fiber.Ctx) error {
	if c.Get(InternalHeader) == "" {
		return forbidden(c, "Internal access only")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.flowService.GetFlow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"flow":        flow,
		"exported_at": time.Now().UTC(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	status := "unhealthy"
	message := "Mailblast API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk {
		status = "healthy"
		message = "Mailblast API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry": registryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
