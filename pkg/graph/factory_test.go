package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

func TestNewNode_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)

	for range 1000 {
		node := NewNode("send_email", models.NodeKindAction)
		require.False(t, seen[node.ID], "duplicate node ID %s", node.ID)
		seen[node.ID] = true
	}
}

func TestNewNode_PlacementBounds(t *testing.T) {
	for range 100 {
		node := NewNode("wait", models.NodeKindAction)

		assert.GreaterOrEqual(t, node.Position.X, 100.0)
		assert.Less(t, node.Position.X, 500.0)
		assert.GreaterOrEqual(t, node.Position.Y, 100.0)
		assert.Less(t, node.Position.Y, 500.0)
	}
}

func TestNewNode_Shape(t *testing.T) {
	node := NewNode("contact_added", models.NodeKindTrigger)

	assert.Equal(t, models.NodeKindTrigger, node.Kind)
	assert.Equal(t, "contact_added", node.Type)
	assert.Equal(t, "Contact Added", node.Label)
	assert.NotNil(t, node.Config)
	assert.True(t, node.Enabled)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		nodeType string
		want     string
	}{
		{"send_email", "Send Email"},
		{"contact_added", "Contact Added"},
		{"wait", "Wait"},
		{"has_tag", "Has Tag"},
	}

	for _, tt := range tests {
		t.Run(tt.nodeType, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.nodeType))
		})
	}
}

func TestPalette(t *testing.T) {
	assert.Equal(t, models.TriggerTypes, Palette(models.NodeKindTrigger))
	assert.Equal(t, models.ActionTypes, Palette(models.NodeKindAction))
	assert.Equal(t, models.ConditionTypes, Palette(models.NodeKindCondition))
	assert.Nil(t, Palette(models.NodeKind("bogus")))
}

func TestTaxonomyDisjoint(t *testing.T) {
	seen := make(map[string]models.NodeKind)

	for _, set := range []struct {
		kind  models.NodeKind
		types []string
	}{
		{models.NodeKindTrigger, models.TriggerTypes},
		{models.NodeKindAction, models.ActionTypes},
		{models.NodeKindCondition, models.ConditionTypes},
	} {
		for _, nodeType := range set.types {
			prev, dup := seen[nodeType]
			require.False(t, dup, "type %s in both %s and %s", nodeType, prev, set.kind)
			seen[nodeType] = set.kind

			assert.Equal(t, set.kind, models.KindForType(nodeType))
		}
	}

	assert.Equal(t, models.NodeKind(""), models.KindForType("no_such_type"))
}
