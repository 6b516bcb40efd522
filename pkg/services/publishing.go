package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ana-fx/mail-blast-sub001/pkg/eventbus"
	"github.com/ana-fx/mail-blast-sub001/pkg/events"
	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/otelhelper"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

const validationTokenTTL = 5 * time.Minute

// PublishResult is returned by Validate and carries the token that must
// accompany a subsequent Publish call.
type PublishResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Token  string   `json:"validation_token,omitempty"`
}

// PublishingService drives the draft -> published -> paused lifecycle.
// Validate issues a short-lived token bound to a digest of the flow
// content; Publish accepts only a token whose digest still matches, so a
// flow edited between validation and publish is rejected instead of
// published with stale checks.
type PublishingService struct {
	persistence persistence.Persistence
	validator   *FlowValidator
	eventBus    eventbus.EventBus
	tokens      *gocache.Cache
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewPublishingService(p persistence.Persistence, validator *FlowValidator, bus eventbus.EventBus, logger *slog.Logger) *PublishingService {
	return &PublishingService{
		persistence: p,
		validator:   validator,
		eventBus:    bus,
		tokens:      gocache.New(validationTokenTTL, 10*time.Minute),
		logger:      logger.With("module", "publishing"),
		tracer:      otel.Tracer("mailblast.publishing"),
	}
}

type tokenClaim struct {
	FlowID string
	Digest string
}

// Validate checks a flow for publishability. When the flow is valid a
// validation token is issued; the token expires after five minutes.
func (s *PublishingService) Validate(ctx context.Context, flowID string) (*PublishResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "publishing.validate",
		attribute.String(otelhelper.FlowIDKey, flowID))
	defer span.End()

	flow, err := s.getFlow(ctx, flowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	result := s.validator.Validate(flow)
	if !result.Valid {
		return &PublishResult{Valid: false, Errors: result.Errors}, nil
	}

	token := uuid.New().String()
	s.tokens.Set(token, tokenClaim{FlowID: flow.ID, Digest: flowDigest(flow)}, gocache.DefaultExpiration)

	return &PublishResult{Valid: true, Errors: []string{}, Token: token}, nil
}

// Publish transitions a draft or paused flow to published. The token must
// come from a Validate call on the same flow content; if the flow changed
// since validation the publish is rejected with ErrStaleValidation.
func (s *PublishingService) Publish(ctx context.Context, flowID, token string) (*models.Flow, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "publishing.publish",
		attribute.String(otelhelper.FlowIDKey, flowID))
	defer span.End()

	flow, err := s.getFlow(ctx, flowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if flow.Status == models.FlowStatusPublished {
		return nil, ErrAlreadyPublished
	}

	raw, ok := s.tokens.Get(token)
	if !ok {
		return nil, ErrUnknownValidationToken
	}

	claim, ok := raw.(tokenClaim)
	if !ok || claim.FlowID != flow.ID {
		return nil, ErrUnknownValidationToken
	}

	if claim.Digest != flowDigest(flow) {
		return nil, ErrStaleValidation
	}

	// Content may have regressed through a paused cycle; re-check before
	// the transition.
	if result := s.validator.Validate(flow); !result.Valid {
		return nil, NewValidationError("Publish", "VALIDATION_FAILED",
			fmt.Sprintf("flow failed validation: %v", result.Errors), ErrInvalidRequest)
	}

	s.tokens.Delete(token)

	now := time.Now().UTC()
	flow.Status = models.FlowStatusPublished
	flow.Version++
	flow.PublishedAt = &now
	flow.UpdatedAt = now

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, &ServiceError{Op: "Publish", Code: "PERSISTENCE_ERROR", Err: err}
	}

	s.emit(ctx, flow.ID, events.NewFlowPublished(flow.ID, flow.Version, flow.Owner))

	s.logger.InfoContext(ctx, "Flow published", "flow_id", flow.ID, "version", flow.Version)

	return flow, nil
}

// Unpublish transitions a published flow to paused. The version counter
// is not advanced; it only counts publishes.
func (s *PublishingService) Unpublish(ctx context.Context, flowID string) (*models.Flow, error) {
	flow, err := s.getFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if flow.Status != models.FlowStatusPublished {
		return nil, ErrFlowNotPublished
	}

	flow.Status = models.FlowStatusPaused
	flow.UpdatedAt = time.Now().UTC()

	if err := s.persistence.FlowRepository().Save(ctx, flow); err != nil {
		return nil, &ServiceError{Op: "Unpublish", Code: "PERSISTENCE_ERROR", Err: err}
	}

	s.emit(ctx, flow.ID, events.NewFlowUnpublished(flow.ID))

	s.logger.InfoContext(ctx, "Flow unpublished", "flow_id", flow.ID)

	return flow, nil
}

func (s *PublishingService) getFlow(ctx context.Context, flowID string) (*models.Flow, error) {
	flow, err := s.persistence.FlowRepository().GetByID(ctx, flowID)
	if err != nil {
		return nil, &ServiceError{Op: "Publishing", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if flow == nil {
		return nil, ErrFlowNotFound
	}

	return flow, nil
}

func (s *PublishingService) emit(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}

// flowDigest hashes the publish-relevant content of a flow: name, nodes
// and edges. Metadata like description or timestamps is excluded so that
// harmless edits do not invalidate a token.
func flowDigest(flow *models.Flow) string {
	payload := struct {
		Name  string             `json:"name"`
		Nodes []*models.FlowNode `json:"nodes"`
		Edges []*models.FlowEdge `json:"edges"`
	}{flow.Name, flow.Nodes, flow.Edges}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
