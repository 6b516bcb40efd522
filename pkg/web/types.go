// Package web provides HTTP request and response types for the flow API.
package web

import "github.com/ana-fx/mail-blast-sub001/pkg/blocks"

// CreateFlowRequest represents the request body for creating a new flow.
type CreateFlowRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
	Owner       string `json:"owner"       validate:"required"`
}

// UpdateFlowRequest represents the request body for updating an existing flow.
// All fields are optional to support partial updates. Nodes and edges are
// replaced as a set when present; the server rejects graph changes for
// published flows.
type UpdateFlowRequest struct {
	Name        *string     `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string     `json:"description,omitempty"`
	Nodes       []NodeInput `json:"nodes,omitempty"`
	Edges       []EdgeInput `json:"edges,omitempty"`
}

// NodeInput is the wire shape of one flow node.
type NodeInput struct {
	ID        string         `json:"id"         validate:"required"`
	Kind      string         `json:"kind"       validate:"required,oneof=trigger action condition"`
	Type      string         `json:"type"       validate:"required"`
	Label     string         `json:"label"`
	PositionX float64        `json:"position_x"`
	PositionY float64        `json:"position_y"`
	Config    map[string]any `json:"config"`
	Enabled   bool           `json:"enabled"`
}

// EdgeInput is the wire shape of one flow edge.
type EdgeInput struct {
	ID           string `json:"id"            validate:"required"`
	Source       string `json:"source"        validate:"required"`
	Target       string `json:"target"        validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// PublishFlowRequest carries the validation token issued by a prior
// validate call.
type PublishFlowRequest struct {
	ValidationToken string `json:"validation_token" validate:"required"`
}

// CreateTemplateRequest represents the request body for creating a template.
type CreateTemplateRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Owner       string `json:"owner"       validate:"required"`
}

// ExportVersionRequest carries the block tree to render into a new
// template version.
type ExportVersionRequest struct {
	Blocks []blocks.Block `json:"blocks" validate:"required"`
}

// RecordExecutionRequest represents the request body for recording a flow
// execution.
type RecordExecutionRequest struct {
	ContactID   string `json:"contact_id"`
	Status      string `json:"status"       validate:"omitempty,oneof=running completed failed"`
	TriggerType string `json:"trigger_type"`
	Error       string `json:"error"`
}
