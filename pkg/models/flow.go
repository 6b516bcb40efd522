// Package models defines the core domain models for automation flows.
package models

import "time"

// FlowStatus represents the lifecycle state of an automation flow.
type FlowStatus string

const (
	FlowStatusDraft     FlowStatus = "draft"     // Editable, not executable
	FlowStatusPublished FlowStatus = "published" // Active, executable, read-only
	FlowStatusPaused    FlowStatus = "paused"    // Previously published, execution suspended
)

// Flow represents an automation workflow: trigger/action/condition nodes
// joined by directed edges.
type Flow struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"                   validate:"required,min=3"`
	Description string      `json:"description,omitempty"`
	Status      FlowStatus  `json:"status"`
	Nodes       []*FlowNode `json:"nodes"`
	Edges       []*FlowEdge `json:"edges"`
	Version     int         `json:"version"`
	Owner       string      `json:"owner"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
}

// IsEditable reports whether the flow accepts node/edge mutations.
// Published flows are read-only until unpublished.
func (f *Flow) IsEditable() bool {
	return f.Status != FlowStatusPublished
}

// NodeByID returns the node with the given ID, or nil.
func (f *Flow) NodeByID(id string) *FlowNode {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
