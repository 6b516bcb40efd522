// Package events defines event types for flow and template lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic for lifecycle events.
const Topic = "mailblast.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FlowPublishedEvent   EventType = "flow.published"
	FlowUnpublishedEvent EventType = "flow.unpublished"
	FlowDeletedEvent     EventType = "flow.deleted"

	TemplateVersionCreatedEvent EventType = "template.version.created"

	ExecutionRecordedEvent EventType = "execution.recorded"
)

// BaseEvent carries fields common to every lifecycle event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// GetType returns the event type.
func (e BaseEvent) GetType() EventType { return e.Type }

func newBase(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// FlowPublished is emitted when a flow transitions to published.
type FlowPublished struct {
	BaseEvent

	FlowID  string `json:"flow_id"`
	Version int    `json:"version"`
	Owner   string `json:"owner,omitempty"`
}

// NewFlowPublished creates a FlowPublished event.
func NewFlowPublished(flowID string, version int, owner string) *FlowPublished {
	return &FlowPublished{
		BaseEvent: newBase(FlowPublishedEvent),
		FlowID:    flowID,
		Version:   version,
		Owner:     owner,
	}
}

// FlowUnpublished is emitted when a flow leaves the published state.
type FlowUnpublished struct {
	BaseEvent

	FlowID string `json:"flow_id"`
}

// NewFlowUnpublished creates a FlowUnpublished event.
func NewFlowUnpublished(flowID string) *FlowUnpublished {
	return &FlowUnpublished{
		BaseEvent: newBase(FlowUnpublishedEvent),
		FlowID:    flowID,
	}
}

// FlowDeleted is emitted when a flow is removed.
type FlowDeleted struct {
	BaseEvent

	FlowID string `json:"flow_id"`
}

// NewFlowDeleted creates a FlowDeleted event.
func NewFlowDeleted(flowID string) *FlowDeleted {
	return &FlowDeleted{
		BaseEvent: newBase(FlowDeletedEvent),
		FlowID:    flowID,
	}
}

// TemplateVersionCreated is emitted when a new template version is exported.
type TemplateVersionCreated struct {
	BaseEvent

	TemplateID string `json:"template_id"`
	VersionID  string `json:"version_id"`
	Version    int    `json:"version"`
}

// NewTemplateVersionCreated creates a TemplateVersionCreated event.
func NewTemplateVersionCreated(templateID, versionID string, version int) *TemplateVersionCreated {
	return &TemplateVersionCreated{
		BaseEvent:  newBase(TemplateVersionCreatedEvent),
		TemplateID: templateID,
		VersionID:  versionID,
		Version:    version,
	}
}

// ExecutionRecorded is emitted when an execution record is appended.
type ExecutionRecorded struct {
	BaseEvent

	FlowID      string `json:"flow_id"`
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
}

// NewExecutionRecorded creates an ExecutionRecorded event.
func NewExecutionRecorded(flowID, executionID, status string) *ExecutionRecorded {
	return &ExecutionRecorded{
		BaseEvent:   newBase(ExecutionRecordedEvent),
		FlowID:      flowID,
		ExecutionID: executionID,
		Status:      status,
	}
}
