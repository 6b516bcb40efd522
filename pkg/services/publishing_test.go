package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence/file"
)

func newTestPublishing(t *testing.T) (*PublishingService, persistence.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	return NewPublishingService(p, newTestValidator(), nil, slog.Default()), p
}

func savedFlow(t *testing.T, p persistence.Persistence) *models.Flow {
	t.Helper()

	flow := validFlow()
	require.NoError(t, p.FlowRepository().Save(context.Background(), flow))

	return flow
}

func TestPublishingService_ValidateIssuesToken(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)

	result, err := service.Validate(context.Background(), flow.ID)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Token)
}

func TestPublishingService_ValidateInvalidFlowNoToken(t *testing.T) {
	service, p := newTestPublishing(t)

	flow := validFlow()
	flow.Nodes[0].Enabled = false
	require.NoError(t, p.FlowRepository().Save(context.Background(), flow))

	result, err := service.Validate(context.Background(), flow.ID)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Token)
}

func TestPublishingService_PublishLifecycle(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)
	ctx := context.Background()

	result, err := service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	published, err := service.Publish(ctx, flow.ID, result.Token)
	require.NoError(t, err)

	assert.Equal(t, models.FlowStatusPublished, published.Status)
	assert.Equal(t, 1, published.Version)
	require.NotNil(t, published.PublishedAt)

	// Published flows cannot be published again.
	result2, err := service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	_, err = service.Publish(ctx, flow.ID, result2.Token)
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	paused, err := service.Unpublish(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FlowStatusPaused, paused.Status)
	assert.Equal(t, 1, paused.Version)
}

func TestPublishingService_PublishUnknownToken(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)

	_, err := service.Publish(context.Background(), flow.ID, "not-a-token")
	assert.ErrorIs(t, err, ErrUnknownValidationToken)
}

func TestPublishingService_PublishStaleToken(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)
	ctx := context.Background()

	result, err := service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	// Edit the flow between validate and publish.
	flow.Nodes = append(flow.Nodes, &models.FlowNode{
		ID: "n3", Kind: models.NodeKindAction, Type: "remove_tag", Enabled: true,
		Config: map[string]any{"tag": "stale"},
	})
	require.NoError(t, p.FlowRepository().Save(ctx, flow))

	_, err = service.Publish(ctx, flow.ID, result.Token)
	assert.ErrorIs(t, err, ErrStaleValidation)
}

func TestPublishingService_TokenBoundToFlow(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)
	ctx := context.Background()

	other := validFlow()
	other.ID = "flow-other"
	require.NoError(t, p.FlowRepository().Save(ctx, other))

	result, err := service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	_, err = service.Publish(ctx, other.ID, result.Token)
	assert.ErrorIs(t, err, ErrUnknownValidationToken)
}

func TestPublishingService_RepublishAfterPause(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)
	ctx := context.Background()

	result, err := service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	_, err = service.Publish(ctx, flow.ID, result.Token)
	require.NoError(t, err)

	_, err = service.Unpublish(ctx, flow.ID)
	require.NoError(t, err)

	result, err = service.Validate(ctx, flow.ID)
	require.NoError(t, err)

	republished, err := service.Publish(ctx, flow.ID, result.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, republished.Version)
}

func TestPublishingService_UnpublishDraft(t *testing.T) {
	service, p := newTestPublishing(t)
	flow := savedFlow(t, p)

	_, err := service.Unpublish(context.Background(), flow.ID)
	assert.ErrorIs(t, err, ErrFlowNotPublished)
}

func TestPublishingService_FlowNotFound(t *testing.T) {
	service, _ := newTestPublishing(t)

	_, err := service.Validate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}
