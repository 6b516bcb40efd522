package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence/file"
)

func newTestFlowService(t *testing.T) *FlowService {
	t.Helper()

	return NewFlowService(file.NewPersistence(t.TempDir()), nil, slog.Default())
}

func TestFlowService_CreateFlow(t *testing.T) {
	service := newTestFlowService(t)
	ctx := context.Background()

	flow, err := service.CreateFlow(ctx, CreateFlowParams{
		Name:    "Welcome series",
		OwnerID: "user-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, flow.ID)
	assert.Equal(t, models.FlowStatusDraft, flow.Status)
	assert.Equal(t, 0, flow.Version)
	assert.Empty(t, flow.Nodes)
	assert.Empty(t, flow.Edges)

	fetched, err := service.GetFlow(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, flow.ID, fetched.ID)
}

func TestFlowService_CreateFlow_EmptyName(t *testing.T) {
	service := newTestFlowService(t)

	_, err := service.CreateFlow(context.Background(), CreateFlowParams{OwnerID: "user-1"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestFlowService_GetFlow_NotFound(t *testing.T) {
	service := newTestFlowService(t)

	_, err := service.GetFlow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestFlowService_UpdateFlowGraph(t *testing.T) {
	service := newTestFlowService(t)
	ctx := context.Background()

	flow, err := service.CreateFlow(ctx, CreateFlowParams{Name: "Tag flow", OwnerID: "user-1"})
	require.NoError(t, err)

	nodes := []*models.FlowNode{
		{ID: "n1", Kind: models.NodeKindTrigger, Type: "contact_added", Enabled: true},
		{ID: "n2", Kind: models.NodeKindAction, Type: "add_tag", Enabled: true},
	}
	edges := []*models.FlowEdge{
		{ID: "e1", Source: "n1", Target: "n2"},
	}

	updated, err := service.UpdateFlowGraph(ctx, flow.ID, nodes, edges)
	require.NoError(t, err)
	assert.Len(t, updated.Nodes, 2)
	assert.Len(t, updated.Edges, 1)
}

func TestFlowService_UpdateFlowGraph_DanglingEdge(t *testing.T) {
	service := newTestFlowService(t)
	ctx := context.Background()

	flow, err := service.CreateFlow(ctx, CreateFlowParams{Name: "Bad graph", OwnerID: "user-1"})
	require.NoError(t, err)

	nodes := []*models.FlowNode{
		{ID: "n1", Kind: models.NodeKindTrigger, Type: "contact_added", Enabled: true},
	}
	edges := []*models.FlowEdge{
		{ID: "e1", Source: "n1", Target: "ghost"},
	}

	_, err = service.UpdateFlowGraph(ctx, flow.ID, nodes, edges)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestFlowService_UpdateFlowGraph_PublishedRejected(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewFlowService(persistence, nil, slog.Default())
	ctx := context.Background()

	flow, err := service.CreateFlow(ctx, CreateFlowParams{Name: "Locked", OwnerID: "user-1"})
	require.NoError(t, err)

	flow.Status = models.FlowStatusPublished
	require.NoError(t, persistence.FlowRepository().Save(ctx, flow))

	_, err = service.UpdateFlowGraph(ctx, flow.ID, nil, nil)
	assert.ErrorIs(t, err, ErrCannotModifyPublished)
}

func TestFlowService_ListFlows_Pagination(t *testing.T) {
	service := newTestFlowService(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha flow", "Beta flow", "Gamma flow"} {
		_, err := service.CreateFlow(ctx, CreateFlowParams{Name: name, OwnerID: "user-1"})
		require.NoError(t, err)
	}

	result, err := service.ListFlows(ctx, ListFlowsParams{Limit: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.Len(t, result.Flows, 2)
	assert.True(t, result.HasNextPage)
	assert.Equal(t, "Alpha flow", result.Flows[0].Name)
}

func TestFlowService_ListFlows_InvalidSortField(t *testing.T) {
	service := newTestFlowService(t)

	_, err := service.ListFlows(context.Background(), ListFlowsParams{SortBy: "owner"})
	assert.ErrorIs(t, err, ErrInvalidSortField)
}

func TestFlowService_ListFlows_InvalidStatus(t *testing.T) {
	service := newTestFlowService(t)

	_, err := service.ListFlows(context.Background(), ListFlowsParams{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestFlowService_DeleteFlow(t *testing.T) {
	service := newTestFlowService(t)
	ctx := context.Background()

	flow, err := service.CreateFlow(ctx, CreateFlowParams{Name: "Ephemeral", OwnerID: "user-1"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteFlow(ctx, flow.ID))

	_, err = service.GetFlow(ctx, flow.ID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}
