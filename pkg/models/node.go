// Package models defines node and edge models for the flow graph.
package models

// NodeKind partitions the node-type taxonomy.
type NodeKind string

const (
	NodeKindTrigger   NodeKind = "trigger"
	NodeKindAction    NodeKind = "action"
	NodeKindCondition NodeKind = "condition"
)

// Node type taxonomy. The three sets are disjoint: a type string belongs to
// exactly one kind.
var (
	TriggerTypes = []string{
		"contact_added",
		"tag_added",
		"form_submitted",
		"webhook_received",
	}

	ActionTypes = []string{
		"send_email",
		"add_tag",
		"remove_tag",
		"update_field",
		"wait",
	}

	ConditionTypes = []string{
		"has_tag",
		"opened_email",
		"clicked_link",
		"field_equals",
	}
)

// KindForType returns the kind that owns the given node type, or "" when the
// type is not part of the built-in taxonomy.
func KindForType(nodeType string) NodeKind {
	for _, t := range TriggerTypes {
		if t == nodeType {
			return NodeKindTrigger
		}
	}

	for _, t := range ActionTypes {
		if t == nodeType {
			return NodeKindAction
		}
	}

	for _, t := range ConditionTypes {
		if t == nodeType {
			return NodeKindCondition
		}
	}

	return ""
}

// Position is a node's placement on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FlowNode represents a single node instance in a flow graph.
type FlowNode struct {
	ID       string         `json:"id"       validate:"required"`
	Kind     NodeKind       `json:"kind"     validate:"required,oneof=trigger action condition"`
	Type     string         `json:"type"     validate:"required"`
	Label    string         `json:"label"`
	Position Position       `json:"position"`
	Config   map[string]any `json:"config"`
	Enabled  bool           `json:"enabled"`
}

func (n *FlowNode) IsTrigger() bool {
	return n.Kind == NodeKindTrigger
}

func (n *FlowNode) IsAction() bool {
	return n.Kind == NodeKindAction
}

func (n *FlowNode) IsCondition() bool {
	return n.Kind == NodeKindCondition
}
