package services

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/registry"
)

func newTestValidator() *FlowValidator {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterBuiltins()

	return NewFlowValidator(reg)
}

func validFlow() *models.Flow {
	return &models.Flow{
		ID:     "flow-1",
		Name:   "Welcome series",
		Status: models.FlowStatusDraft,
		Nodes: []*models.FlowNode{
			{ID: "n1", Kind: models.NodeKindTrigger, Type: "contact_added", Enabled: true, Config: map[string]any{}},
			{ID: "n2", Kind: models.NodeKindAction, Type: "add_tag", Enabled: true, Config: map[string]any{"tag": "welcomed"}},
		},
		Edges: []*models.FlowEdge{
			{ID: "e1", Source: "n1", Target: "n2"},
		},
	}
}

func TestFlowValidator_ValidFlow(t *testing.T) {
	result := newTestValidator().Validate(validFlow())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestFlowValidator_NilFlow(t *testing.T) {
	result := newTestValidator().Validate(nil)

	assert.False(t, result.Valid)
}

func TestFlowValidator_MissingName(t *testing.T) {
	flow := validFlow()
	flow.Name = ""

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, ErrFlowNameRequired.Error())
}

func TestFlowValidator_NoNodes(t *testing.T) {
	flow := validFlow()
	flow.Nodes = nil
	flow.Edges = nil

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, ErrNodesRequired.Error())
}

func TestFlowValidator_NoEnabledTrigger(t *testing.T) {
	flow := validFlow()
	flow.Nodes[0].Enabled = false

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, ErrTriggerNodeRequired.Error())
}

func TestFlowValidator_DisabledActionStillValid(t *testing.T) {
	flow := validFlow()
	flow.Nodes[1].Enabled = false

	result := newTestValidator().Validate(flow)

	assert.True(t, result.Valid)
}

func TestFlowValidator_EdgeToMissingNode(t *testing.T) {
	flow := validFlow()
	flow.Edges = append(flow.Edges, &models.FlowEdge{ID: "e2", Source: "n2", Target: "ghost"})

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
}

func TestFlowValidator_UnknownNodeType(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.FlowNode{
		ID: "n3", Kind: models.NodeKindAction, Type: "teleport_contact", Enabled: true,
	})

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
}

func TestFlowValidator_KindTypeMismatch(t *testing.T) {
	flow := validFlow()
	// send_email is an action type, not a trigger type.
	flow.Nodes = append(flow.Nodes, &models.FlowNode{
		ID: "n3", Kind: models.NodeKindTrigger, Type: "send_email", Enabled: true,
		Config: map[string]any{"template_id": "t1", "subject": "Hi"},
	})

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
}

func TestFlowValidator_SchemaViolation(t *testing.T) {
	flow := validFlow()
	// add_tag requires a tag string.
	flow.Nodes[1].Config = map[string]any{}

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
}

func TestFlowValidator_ConfigMustDecodeToTypedParams(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.FlowNode{
		ID: "n3", Kind: models.NodeKindAction, Type: "send_email", Enabled: true,
		Config: map[string]any{"template_id": 42, "subject": "Hi"},
	})

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)

	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, `node "n3" config does not decode`) {
			found = true
		}
	}
	assert.True(t, found, "expected a decode error for n3, got %v", result.Errors)
}

func TestFlowValidator_CollectsAllErrors(t *testing.T) {
	flow := &models.Flow{ID: "flow-2", Name: "", Nodes: nil}

	result := newTestValidator().Validate(flow)

	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 2)
}
