package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

func testNode(id string, kind models.NodeKind, nodeType string) *models.FlowNode {
	return &models.FlowNode{
		ID:      id,
		Kind:    kind,
		Type:    nodeType,
		Label:   Label(nodeType),
		Config:  map[string]any{},
		Enabled: true,
	}
}

func TestStore_AddNode(t *testing.T) {
	store := NewStore()

	err := store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added"))
	require.NoError(t, err)

	assert.Len(t, store.Nodes(), 1)
	assert.NotNil(t, store.NodeByID("a"))
}

func TestStore_AddNode_Duplicate(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))

	err := store.AddNode(testNode("a", models.NodeKindAction, "send_email"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Len(t, store.Nodes(), 1)
}

func TestStore_UpdateNode(t *testing.T) {
	store := NewStore()
	node := testNode("a", models.NodeKindAction, "send_email")
	node.Config = map[string]any{"subject": "Hello", "template_id": "t-1"}
	require.NoError(t, store.AddNode(node))

	label := "Welcome Email"
	pos := models.Position{X: 250, Y: 300}
	updated, err := store.UpdateNode("a", NodePatch{
		Label:    &label,
		Position: &pos,
		Config:   map[string]any{"subject": "Welcome!"},
	})
	require.NoError(t, err)
	require.True(t, updated)

	got := store.NodeByID("a")
	assert.Equal(t, "Welcome Email", got.Label)
	assert.Equal(t, pos, got.Position)
	// Patched key wins, untouched keys survive.
	assert.Equal(t, "Welcome!", got.Config["subject"])
	assert.Equal(t, "t-1", got.Config["template_id"])
}

func TestStore_UpdateNode_Missing(t *testing.T) {
	store := NewStore()

	label := "anything"
	updated, err := store.UpdateNode("ghost", NodePatch{Label: &label})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestStore_DeleteNode_CascadesEdges(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))
	require.NoError(t, store.AddNode(testNode("b", models.NodeKindAction, "send_email")))
	require.NoError(t, store.AddNode(testNode("c", models.NodeKindAction, "add_tag")))

	require.NoError(t, store.AddEdge(&models.FlowEdge{ID: "e1", Source: "a", Target: "b"}))
	require.NoError(t, store.AddEdge(&models.FlowEdge{ID: "e2", Source: "b", Target: "c"}))
	require.NoError(t, store.AddEdge(&models.FlowEdge{ID: "e3", Source: "a", Target: "c"}))

	store.DeleteNode("a")

	assert.Nil(t, store.NodeByID("a"))

	edges := store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e2", edges[0].ID)

	for _, edge := range edges {
		assert.NotEqual(t, "a", edge.Source)
		assert.NotEqual(t, "a", edge.Target)
	}
}

func TestStore_DeleteNode_OrphanPair(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("A", models.NodeKindTrigger, "contact_added")))
	require.NoError(t, store.AddNode(testNode("B", models.NodeKindAction, "send_email")))
	require.NoError(t, store.AddEdge(&models.FlowEdge{ID: "e1", Source: "A", Target: "B"}))

	store.DeleteNode("A")

	assert.Empty(t, store.Edges())
}

func TestStore_DeleteNode_ClearsSelection(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))
	store.SetSelectedNode("a")

	store.DeleteNode("a")

	assert.Empty(t, store.SelectedNode())
}

func TestStore_AddEdge_UnknownEndpoints(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))

	err := store.AddEdge(&models.FlowEdge{ID: "e1", Source: "a", Target: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)

	err = store.AddEdge(&models.FlowEdge{ID: "e2", Source: "ghost", Target: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)

	assert.Empty(t, store.Edges())
}

func TestStore_DeleteEdge(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))
	require.NoError(t, store.AddNode(testNode("b", models.NodeKindAction, "send_email")))
	require.NoError(t, store.AddEdge(&models.FlowEdge{ID: "e1", Source: "a", Target: "b"}))

	store.DeleteEdge("e1")
	assert.Empty(t, store.Edges())

	// Unknown ID is a no-op.
	store.DeleteEdge("e1")
	assert.Empty(t, store.Edges())
}

func TestStore_Hydrate(t *testing.T) {
	store := NewStore()

	nodes := []*models.FlowNode{
		testNode("a", models.NodeKindTrigger, "contact_added"),
		testNode("b", models.NodeKindAction, "send_email"),
	}
	edges := []*models.FlowEdge{{ID: "e1", Source: "a", Target: "b"}}

	store.SetNodes(nodes)
	store.SetEdges(edges)

	assert.Len(t, store.Nodes(), 2)
	assert.Len(t, store.Edges(), 1)
}

func TestStore_Reset(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.AddNode(testNode("a", models.NodeKindTrigger, "contact_added")))
	store.SetSelectedNode("a")
	store.SetViewport(Viewport{X: 10, Y: 20, Zoom: 0.5})

	store.Reset()

	assert.Empty(t, store.Nodes())
	assert.Empty(t, store.Edges())
	assert.Empty(t, store.SelectedNode())
	assert.Equal(t, Viewport{Zoom: 1}, store.Viewport())
}

func TestStore_Viewport(t *testing.T) {
	store := NewStore()

	v := Viewport{X: -120, Y: 44, Zoom: 1.5}
	store.SetViewport(v)

	assert.Equal(t, v, store.Viewport())
}
