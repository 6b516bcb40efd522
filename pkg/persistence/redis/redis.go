// Package redis provides redis-backed persistence for flows, templates, and
// execution history. Entities are stored as JSON values inside namespaced
// hashes.
package redis

import (
	"context"
	"fmt"
	"strings"

	rd "github.com/redis/go-redis/v9"

	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

const namespace = "mailblast"

// Persistence implements persistence.Persistence on a redis server.
type Persistence struct {
	client        rd.UniversalClient
	flowRepo      *FlowRepository
	templateRepo  *TemplateRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to the redis instance identified by a
// "redis://host:port/db" URL.
func NewPersistence(url string) (*Persistence, error) {
	opts, err := rd.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := rd.NewClient(opts)

	return &Persistence{
		client:        client,
		flowRepo:      &FlowRepository{client: client},
		templateRepo:  &TemplateRepository{client: client},
		executionRepo: &ExecutionRepository{client: client},
	}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) FlowRepository() persistence.FlowRepository {
	return p.flowRepo
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return p.templateRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

// key builds a namespaced redis key: "mailblast:<part>:<part>...".
func key(parts ...string) string {
	return namespace + ":" + strings.Join(parts, ":")
}
