package models

import "time"

// ExecutionStatus defines the possible states of a flow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution is one run of a published flow for a single contact.
type Execution struct {
	ID          string          `json:"id"`
	FlowID      string          `json:"flow_id"`
	ContactID   string          `json:"contact_id,omitempty"`
	Status      ExecutionStatus `json:"status"`
	TriggerType string          `json:"trigger_type,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}
