package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ana-fx/mail-blast-sub001/pkg/eventbus"
	"github.com/ana-fx/mail-blast-sub001/pkg/events"
	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// ExecutionService records and lists flow execution history.
type ExecutionService struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

func NewExecutionService(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		persistence: p,
		eventBus:    bus,
		logger:      logger.With("module", "executions"),
	}
}

// RecordExecutionParams contains parameters for recording an execution.
type RecordExecutionParams struct {
	FlowID      string
	ContactID   string
	Status      models.ExecutionStatus
	TriggerType string
	Error       string
}

// RecordExecution appends an execution record for a flow.
func (s *ExecutionService) RecordExecution(ctx context.Context, params RecordExecutionParams) (*models.Execution, error) {
	if strings.TrimSpace(params.FlowID) == "" {
		return nil, NewValidationError("RecordExecution", "EMPTY_FLOW_ID", "flow ID cannot be empty", ErrInvalidRequest)
	}

	flow, err := s.persistence.FlowRepository().GetByID(ctx, params.FlowID)
	if err != nil {
		return nil, &ServiceError{Op: "RecordExecution", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	status := params.Status
	if status == "" {
		status = models.ExecutionStatusRunning
	}

	now := time.Now().UTC()
	execution := &models.Execution{
		ID:          uuid.New().String(),
		FlowID:      flow.ID,
		ContactID:   params.ContactID,
		Status:      status,
		TriggerType: params.TriggerType,
		Error:       params.Error,
		StartedAt:   now,
	}

	if status != models.ExecutionStatusRunning {
		execution.FinishedAt = &now
	}

	if err := s.persistence.ExecutionRepository().Append(ctx, execution); err != nil {
		return nil, &ServiceError{Op: "RecordExecution", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if s.eventBus != nil {
		event := events.NewExecutionRecorded(flow.ID, execution.ID, string(execution.Status))
		if err := s.eventBus.Publish(ctx, flow.ID, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish execution event", "error", err)
		}
	}

	return execution, nil
}

// ListExecutions returns a flow's executions, most recent first.
func (s *ExecutionService) ListExecutions(ctx context.Context, flowID string) ([]*models.Execution, error) {
	flow, err := s.persistence.FlowRepository().GetByID(ctx, flowID)
	if err != nil {
		return nil, &ServiceError{Op: "ListExecutions", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	executions, err := s.persistence.ExecutionRepository().ListByFlow(ctx, flowID)
	if err != nil {
		return nil, &ServiceError{Op: "ListExecutions", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return executions, nil
}

// PruneExecutions deletes execution records older than the retention
// window. Returns the count removed.
func (s *ExecutionService) PruneExecutions(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-retention)

	removed, err := s.persistence.ExecutionRepository().PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, &ServiceError{Op: "PruneExecutions", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "Pruned execution history", "removed", removed, "cutoff", cutoff)
	}

	return removed, nil
}
