// Package persistence provides the data storage abstraction for flows,
// templates, and execution history.
package persistence

import (
	"context"
	"time"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// Persistence is the storage entry point. Implementations: file (local/dev,
// tests) and redis.
type Persistence interface {
	FlowRepository() FlowRepository
	TemplateRepository() TemplateRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListFlowsOptions controls filtering, sorting, and pagination for flow
// listings.
type ListFlowsOptions struct {
	Limit  int
	Offset int

	OwnerID string
	Status  *models.FlowStatus

	SortBy    string // created_at | updated_at | name
	SortOrder string // asc | desc
}

// FlowListResult is a page of flows plus pagination metadata.
type FlowListResult struct {
	Flows       []*models.Flow `json:"flows"`
	TotalCount  int64          `json:"total_count"`
	HasNextPage bool           `json:"has_next_page"`
}

// FlowRepository stores automation flows.
type FlowRepository interface {
	ListFlows(ctx context.Context, opts ListFlowsOptions) (*FlowListResult, error)
	GetByID(ctx context.Context, id string) (*models.Flow, error)
	Save(ctx context.Context, flow *models.Flow) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository stores email templates and their immutable versions.
type TemplateRepository interface {
	SaveTemplate(ctx context.Context, template *models.Template) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)

	SaveVersion(ctx context.Context, version *models.TemplateVersion) error
	VersionsByTemplate(ctx context.Context, templateID string) ([]*models.TemplateVersion, error)

	// SetDefaultVersion marks one version as the template's default and
	// clears the flag from every other version in the same operation, so a
	// reader never observes two defaults.
	SetDefaultVersion(ctx context.Context, templateID, versionID string) error
}

// ExecutionRepository stores flow execution history.
type ExecutionRepository interface {
	Append(ctx context.Context, execution *models.Execution) error
	ListByFlow(ctx context.Context, flowID string) ([]*models.Execution, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
