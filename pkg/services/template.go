package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ana-fx/mail-blast-sub001/pkg/blocks"
	"github.com/ana-fx/mail-blast-sub001/pkg/eventbus"
	"github.com/ana-fx/mail-blast-sub001/pkg/events"
	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// TemplateService manages email templates and their exported versions.
// Exporting is the only way a version comes into being: the block tree is
// rendered to HTML and stored immutably with the next version number.
type TemplateService struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

func NewTemplateService(p persistence.Persistence, bus eventbus.EventBus, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		persistence: p,
		eventBus:    bus,
		logger:      logger.With("module", "templates"),
	}
}

// CreateTemplateParams contains parameters for creating a template.
type CreateTemplateParams struct {
	Name        string
	Description string
	OwnerID     string
}

// CreateTemplate creates a template with no versions.
func (s *TemplateService) CreateTemplate(ctx context.Context, params CreateTemplateParams) (*models.Template, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, NewValidationError("CreateTemplate", "EMPTY_NAME", "template name cannot be empty", ErrInvalidRequest)
	}

	now := time.Now().UTC()
	template := &models.Template{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Owner:       params.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.persistence.TemplateRepository().SaveTemplate(ctx, template); err != nil {
		return nil, &ServiceError{Op: "CreateTemplate", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return template, nil
}

// GetTemplate retrieves a template by ID.
func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	template, err := s.persistence.TemplateRepository().GetTemplate(ctx, id)
	if err != nil {
		return nil, &ServiceError{Op: "GetTemplate", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

// ExportVersion renders a block tree to HTML and stores it as the next
// version of the template. The first version of a template becomes the
// default automatically.
func (s *TemplateService) ExportVersion(ctx context.Context, templateID string, tree []blocks.Block) (*models.TemplateVersion, error) {
	template, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.persistence.TemplateRepository().VersionsByTemplate(ctx, template.ID)
	if err != nil {
		return nil, &ServiceError{Op: "ExportVersion", Code: "PERSISTENCE_ERROR", Err: err}
	}

	next := 1

	for _, v := range existing {
		if v.Version >= next {
			next = v.Version + 1
		}
	}

	// The exporter escapes user text itself; its output is stored
	// byte-for-byte, preamble and tracking tokens included.
	html := blocks.Export(tree)

	version := &models.TemplateVersion{
		ID:         uuid.New().String(),
		TemplateID: template.ID,
		Version:    next,
		HTML:       html,
		IsDefault:  len(existing) == 0,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.persistence.TemplateRepository().SaveVersion(ctx, version); err != nil {
		return nil, &ServiceError{Op: "ExportVersion", Code: "PERSISTENCE_ERROR", Err: err}
	}

	if s.eventBus != nil {
		event := events.NewTemplateVersionCreated(template.ID, version.ID, version.Version)
		if err := s.eventBus.Publish(ctx, template.ID, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish template event", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "Template version exported",
		"template_id", template.ID, "version", version.Version)

	return version, nil
}

// ListVersions returns the versions of a template, oldest first.
func (s *TemplateService) ListVersions(ctx context.Context, templateID string) ([]*models.TemplateVersion, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	versions, err := s.persistence.TemplateRepository().VersionsByTemplate(ctx, templateID)
	if err != nil {
		return nil, &ServiceError{Op: "ListVersions", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return versions, nil
}

// SetDefaultVersion marks one version as the template's default.
func (s *TemplateService) SetDefaultVersion(ctx context.Context, templateID, versionID string) error {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return err
	}

	versions, err := s.persistence.TemplateRepository().VersionsByTemplate(ctx, templateID)
	if err != nil {
		return &ServiceError{Op: "SetDefaultVersion", Code: "PERSISTENCE_ERROR", Err: err}
	}

	found := false

	for _, v := range versions {
		if v.ID == versionID {
			found = true

			break
		}
	}

	if !found {
		return ErrVersionNotFound
	}

	if err := s.persistence.TemplateRepository().SetDefaultVersion(ctx, templateID, versionID); err != nil {
		return &ServiceError{Op: "SetDefaultVersion", Code: "PERSISTENCE_ERROR", Err: err}
	}

	return nil
}
