package services

import (
	"fmt"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/registry"
)

// ValidationResult is the outcome of checking a flow for publishability.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// FlowValidator checks flows against the structural rules required to
// publish: a name, at least one node, at least one enabled trigger,
// edges that reference real nodes, and node configs that satisfy their
// registered schemas.
type FlowValidator struct {
	registry *registry.Registry
}

func NewFlowValidator(reg *registry.Registry) *FlowValidator {
	return &FlowValidator{registry: reg}
}

// Validate runs every publishability check and collects all failures
// instead of stopping at the first one.
func (v *FlowValidator) Validate(flow *models.Flow) ValidationResult {
	if flow == nil {
		return ValidationResult{Valid: false, Errors: []string{ErrFlowNil.Error()}}
	}

	var errs []string

	if flow.Name == "" {
		errs = append(errs, ErrFlowNameRequired.Error())
	}

	if len(flow.Nodes) == 0 {
		errs = append(errs, ErrNodesRequired.Error())
	}

	nodeIDs := make(map[string]*models.FlowNode, len(flow.Nodes))
	hasEnabledTrigger := false

	for _, node := range flow.Nodes {
		if _, dup := nodeIDs[node.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate node ID %q", node.ID))
		}

		nodeIDs[node.ID] = node

		if node.Kind == models.NodeKindTrigger && node.Enabled {
			hasEnabledTrigger = true
		}

		errs = append(errs, v.validateNode(node)...)
	}

	if len(flow.Nodes) > 0 && !hasEnabledTrigger {
		errs = append(errs, ErrTriggerNodeRequired.Error())
	}

	for _, edge := range flow.Edges {
		if _, ok := nodeIDs[edge.Source]; !ok {
			errs = append(errs, fmt.Sprintf("edge %q source %q does not exist", edge.ID, edge.Source))
		}

		if _, ok := nodeIDs[edge.Target]; !ok {
			errs = append(errs, fmt.Sprintf("edge %q target %q does not exist", edge.ID, edge.Target))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (v *FlowValidator) validateNode(node *models.FlowNode) []string {
	var errs []string

	expectedKind := models.KindForType(node.Type)
	if expectedKind == "" {
		errs = append(errs, fmt.Sprintf("node %q has unknown type %q", node.ID, node.Type))

		return errs
	}

	if node.Kind != expectedKind {
		errs = append(errs, fmt.Sprintf("node %q has kind %q but type %q belongs to kind %q",
			node.ID, node.Kind, node.Type, expectedKind))
	}

	if v.registry == nil {
		return errs
	}

	violations, err := v.registry.ValidateConfig(node.Type, node.Config)
	if err != nil {
		errs = append(errs, fmt.Sprintf("node %q: %v", node.ID, err))

		return errs
	}

	for _, violation := range violations {
		errs = append(errs, fmt.Sprintf("node %q config: %s", node.ID, violation))
	}

	// Schema-valid configs must still decode into their typed params;
	// downstream consumers read the typed form, not the raw map.
	if _, err := models.DecodeParams(node); err != nil {
		errs = append(errs, fmt.Sprintf("node %q config does not decode: %v", node.ID, err))
	}

	return errs
}
