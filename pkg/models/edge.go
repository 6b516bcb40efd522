package models

// FlowEdge is a directed connection between two nodes. Handles identify
// which port on the source/target the edge attaches to; condition nodes use
// "yes"/"no" source handles.
type FlowEdge struct {
	ID           string `json:"id"             validate:"required"`
	Source       string `json:"source"         validate:"required"`
	Target       string `json:"target"         validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
