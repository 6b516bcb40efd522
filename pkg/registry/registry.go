// Package registry holds the catalogue of node type definitions and
// validates node configuration against each type's JSON schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// Definition describes one node type: its taxonomy kind, display metadata,
// and the JSON schema its config must satisfy.
type Definition struct {
	Type        string
	Kind        models.NodeKind
	Name        string
	Description string
	Schema      map[string]any
}

// Registry is the node type catalogue.
type Registry struct {
	logger      *slog.Logger
	definitions map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger,
		definitions: make(map[string]Definition),
	}
}

// Register adds a node type definition, replacing any previous one for the
// same type.
func (r *Registry) Register(def Definition) {
	r.definitions[def.Type] = def
}

// Lookup returns the definition for the given node type.
func (r *Registry) Lookup(nodeType string) (Definition, bool) {
	def, ok := r.definitions[nodeType]

	return def, ok
}

// Types returns all registered node types for the given kind.
func (r *Registry) Types(kind models.NodeKind) []string {
	types := make([]string, 0, len(r.definitions))

	for _, def := range r.definitions {
		if def.Kind == kind {
			types = append(types, def.Type)
		}
	}

	return types
}

// ValidateConfig checks a node's config against the registered schema for
// its type. Unknown node types are an error; schema violations are returned
// as one message per failed constraint.
func (r *Registry) ValidateConfig(nodeType string, config map[string]any) ([]string, error) {
	def, ok := r.definitions[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type '%s' not registered", nodeType)
	}

	if def.Schema == nil {
		return nil, nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(def.Schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed for '%s': %w", nodeType, err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))

	for _, resultErr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", nodeType, resultErr.String()))
	}

	return violations, nil
}

// HealthCheck reports whether the registry is populated.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.definitions) == 0 {
		return "Node registry is empty", false
	}

	return fmt.Sprintf("Node registry healthy (%d types)", len(r.definitions)), true
}
