package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ana-fx/mail-blast-sub001/pkg/eventbus"
	"github.com/ana-fx/mail-blast-sub001/pkg/events"
	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// FlowService handles flow CRUD operations and enforces the draft-only
// mutation rule: node and edge changes are accepted only while a flow is
// in draft.
type FlowService struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

func NewFlowService(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *FlowService {
	return &FlowService{
		persistence: p,
		eventBus:    bus,
		logger:      logger.With("module", "flows"),
	}
}

// ListFlowsParams contains parameters for listing flows.
type ListFlowsParams struct {
	Limit     int
	Offset    int
	OwnerID   string
	Status    string
	SortBy    string
	SortOrder string
}

// ListFlowsResult contains the result of listing flows.
type ListFlowsResult struct {
	Flows       []*models.Flow
	TotalCount  int64
	HasNextPage bool
}

var validFlowSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// ListFlows returns flows with pagination, filtering and sorting.
func (s *FlowService) ListFlows(ctx context.Context, params ListFlowsParams) (*ListFlowsResult, error) {
	if params.Limit < 0 {
		return nil, NewValidationError("ListFlows", "INVALID_LIMIT", "limit cannot be negative", ErrInvalidRequest)
	}

	if params.Offset < 0 {
		return nil, NewValidationError("ListFlows", "INVALID_OFFSET", "offset cannot be negative", ErrInvalidRequest)
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	if params.Limit > 100 {
		params.Limit = 100
	}

	if params.SortBy != "" && !validFlowSortFields[params.SortBy] {
		return nil, NewValidationError("ListFlows", "INVALID_SORT_FIELD",
			fmt.Sprintf("sort field %q is not supported", params.SortBy), ErrInvalidSortField)
	}

	if params.SortOrder != "" && params.SortOrder != "asc" && params.SortOrder != "desc" {
		return nil, NewValidationError("ListFlows", "INVALID_SORT_ORDER",
			"sort order must be asc or desc", ErrInvalidSortOrder)
	}

	var status *models.FlowStatus

	if params.Status != "" {
		switch st := models.FlowStatus(params.Status); st {
		case models.FlowStatusDraft, models.FlowStatusPublished, models.FlowStatusPaused:
			status = &st
		default:
			return nil, NewValidationError("ListFlows", "INVALID_STATUS",
				fmt.Sprintf("status %q is not valid", params.Status), ErrInvalidStatus)
		}
	}

	result, err := s.persistence.FlowRepository().ListFlows(ctx, persistence.ListFlowsOptions{
		Limit:     params.Limit,
		Offset:    params.Offset,
		OwnerID:   params.OwnerID,
		Status:    status,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		return nil, &ServiceError{Op: "ListFlows", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return &ListFlowsResult{
		Flows:       result.Flows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// GetFlow retrieves a flow by ID.
func (s *FlowService) GetFlow(ctx context.Context, id string) (*models.Flow, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewValidationError("GetFlow", "EMPTY_ID", "flow ID cannot be empty", ErrInvalidRequest)
	}

	flow, err := s.persistence.FlowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, &ServiceError{Op: "GetFlow", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	return flow, nil
}

// CreateFlowParams contains parameters for creating a flow.
type CreateFlowParams struct {
	Name        string
	Description string
	OwnerID     string
}

// CreateFlow creates a new draft flow with no nodes or edges.
func (s *FlowService) CreateFlow(ctx context.Context, params CreateFlowParams) (*models.Flow, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, NewValidationError("CreateFlow", "EMPTY_NAME", "flow name cannot be empty", ErrFlowNameRequired)
	}

	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, NewValidationError("CreateFlow", "EMPTY_OWNER", "owner ID cannot be empty", ErrEmptyOwnerID)
	}

	now := time.Now().UTC()
	flow := &models.Flow{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Owner:       params.OwnerID,
		Status:      models.FlowStatusDraft,
		Version:     0,
		Nodes:       []*models.FlowNode{},
		Edges:       []*models.FlowEdge{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, &ServiceError{Op: "CreateFlow", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return flow, nil
}

// UpdateFlowParams contains parameters for updating flow metadata.
type UpdateFlowParams struct {
	Name        *string
	Description *string
}

// UpdateFlow updates flow metadata. Name and description may be changed
// in any status; an empty name is rejected.
func (s *FlowService) UpdateFlow(ctx context.Context, id string, params UpdateFlowParams) (*models.Flow, error) {
	flow, err := s.GetFlow(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, NewValidationError("UpdateFlow", "EMPTY_NAME", "flow name cannot be empty", ErrFlowNameRequired)
		}

		flow.Name = strings.TrimSpace(*params.Name)
	}

	if params.Description != nil {
		flow.Description = *params.Description
	}

	flow.UpdatedAt = time.Now().UTC()

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, &ServiceError{Op: "UpdateFlow", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return flow, nil
}

// UpdateFlowGraph replaces the node and edge sets of a draft flow. The
// graph is validated structurally (edge endpoints must reference nodes
// in the same payload) but not for publishability.
func (s *FlowService) UpdateFlowGraph(ctx context.Context, id string, nodes []*models.FlowNode, edges []*models.FlowEdge) (*models.Flow, error) {
	flow, err := s.GetFlow(ctx, id)
	if err != nil {
		return nil, err
	}

	if !flow.IsEditable() {
		return nil, ErrCannotModifyPublished
	}

	if nodes == nil {
		nodes = []*models.FlowNode{}
	}

	if edges == nil {
		edges = []*models.FlowEdge{}
	}

	nodeIDs := make(map[string]bool, len(nodes))

	for _, node := range nodes {
		if strings.TrimSpace(node.ID) == "" {
			return nil, NewValidationError("UpdateFlowGraph", "EMPTY_NODE_ID", "node ID cannot be empty", ErrInvalidRequest)
		}

		if nodeIDs[node.ID] {
			return nil, NewValidationError("UpdateFlowGraph", "DUPLICATE_NODE_ID",
				fmt.Sprintf("duplicate node ID %q", node.ID), ErrInvalidRequest)
		}

		nodeIDs[node.ID] = true
	}

	for _, edge := range edges {
		if !nodeIDs[edge.Source] || !nodeIDs[edge.Target] {
			return nil, NewValidationError("UpdateFlowGraph", "DANGLING_EDGE",
				fmt.Sprintf("edge %q references missing node", edge.ID), ErrInvalidRequest)
		}
	}

	flow.Nodes = nodes
	flow.Edges = edges
	flow.UpdatedAt = time.Now().UTC()

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, &ServiceError{Op: "UpdateFlowGraph", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return flow, nil
}

// DeleteFlow removes a flow and its recorded executions.
func (s *FlowService) DeleteFlow(ctx context.Context, id string) error {
	flow, err := s.GetFlow(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persistence.FlowRepository().Delete(ctx, flow.ID); err != nil {
		return &ServiceError{Op: "DeleteFlow", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, flow.ID, events.NewFlowDeleted(flow.ID)); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish flow deleted event", "error", err)
		}
	}

	return nil
}
