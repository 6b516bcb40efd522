package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

func testFlow(id, name, owner string, status models.FlowStatus, createdAt time.Time) *models.Flow {
	return &models.Flow{
		ID:        id,
		Name:      name,
		Owner:     owner,
		Status:    status,
		Nodes:     []*models.FlowNode{},
		Edges:     []*models.FlowEdge{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestFlowRepository_SaveAndGet(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()

	flow := testFlow("f-1", "Welcome Series", "acct-1", models.FlowStatusDraft, time.Now().UTC())
	flow.Nodes = []*models.FlowNode{{
		ID:     "n-1",
		Kind:   models.NodeKindTrigger,
		Type:   "contact_added",
		Config: map[string]any{},
	}}
	flow.Edges = []*models.FlowEdge{}

	require.NoError(t, repo.Save(t.Context(), flow))

	got, err := repo.GetByID(t.Context(), "f-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Welcome Series", got.Name)
	assert.Len(t, got.Nodes, 1)
	assert.Equal(t, models.NodeKindTrigger, got.Nodes[0].Kind)
}

func TestFlowRepository_GetMissing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	got, err := p.FlowRepository().GetByID(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFlowRepository_Delete(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()

	flow := testFlow("f-1", "To Delete", "acct-1", models.FlowStatusDraft, time.Now().UTC())
	require.NoError(t, repo.Save(t.Context(), flow))

	require.NoError(t, repo.Delete(t.Context(), "f-1"))

	got, err := repo.GetByID(t.Context(), "f-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Delete(t.Context(), "f-1")
	require.Error(t, err)
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestFlowRepository_ListFilterAndSort(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(t.Context(), testFlow("f-1", "Alpha", "acct-1", models.FlowStatusDraft, base)))
	require.NoError(t, repo.Save(t.Context(), testFlow("f-2", "Beta", "acct-1", models.FlowStatusPublished, base.Add(time.Hour))))
	require.NoError(t, repo.Save(t.Context(), testFlow("f-3", "Gamma", "acct-2", models.FlowStatusDraft, base.Add(2*time.Hour))))

	// Default sort: created_at desc.
	result, err := repo.ListFlows(t.Context(), persistence.ListFlowsOptions{})
	require.NoError(t, err)
	require.Len(t, result.Flows, 3)
	assert.Equal(t, "f-3", result.Flows[0].ID)
	assert.Equal(t, int64(3), result.TotalCount)
	assert.False(t, result.HasNextPage)

	// Owner filter.
	result, err = repo.ListFlows(t.Context(), persistence.ListFlowsOptions{OwnerID: "acct-1"})
	require.NoError(t, err)
	assert.Len(t, result.Flows, 2)

	// Status filter.
	published := models.FlowStatusPublished
	result, err = repo.ListFlows(t.Context(), persistence.ListFlowsOptions{Status: &published})
	require.NoError(t, err)
	require.Len(t, result.Flows, 1)
	assert.Equal(t, "f-2", result.Flows[0].ID)

	// Name ascending.
	result, err = repo.ListFlows(t.Context(), persistence.ListFlowsOptions{SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", result.Flows[0].Name)
}

func TestFlowRepository_ListPagination(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"f-1", "f-2", "f-3"} {
		require.NoError(t, repo.Save(t.Context(), testFlow(id, id, "acct-1", models.FlowStatusDraft, base.Add(time.Duration(i)*time.Hour))))
	}

	result, err := repo.ListFlows(t.Context(), persistence.ListFlowsOptions{Limit: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, result.Flows, 2)
	assert.True(t, result.HasNextPage)
	assert.Equal(t, int64(3), result.TotalCount)

	result, err = repo.ListFlows(t.Context(), persistence.ListFlowsOptions{Limit: 2, Offset: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, result.Flows, 1)
	assert.False(t, result.HasNextPage)
}

func TestFlowRepository_ListRejectsUnknownSort(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.FlowRepository().ListFlows(t.Context(), persistence.ListFlowsOptions{SortBy: "owner; DROP TABLE"})
	require.Error(t, err)
	assert.True(t, persistence.IsInvalidSortField(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	dir := t.TempDir()

	p := NewPersistence(dir)
	assert.NoError(t, p.HealthCheck(t.Context()))

	missing := NewPersistence(dir + "/does-not-exist")
	assert.Error(t, missing.HealthCheck(t.Context()))
}
