// Package graph holds the in-memory authoritative node/edge state for one
// flow edit session.
package graph

import (
	"errors"
	"fmt"

	"dario.cat/mergo"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

var (
	// ErrDuplicateNode is returned when a node with the same ID already exists.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrUnknownEndpoint is returned when an edge references a node ID that is
	// not present in the store.
	ErrUnknownEndpoint = errors.New("edge endpoint does not reference an existing node")
)

// Viewport is the canvas pan/zoom state.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// NodePatch carries partial node updates. Nil fields are left untouched;
// Config entries are merged over the existing map.
type NodePatch struct {
	Label    *string
	Position *models.Position
	Config   map[string]any
	Enabled  *bool
}

// Store is the single shared mutable graph state for one flow per edit
// session. All methods are synchronous; callers mutate from a single
// goroutine (the store mirrors an event-loop UI model and does no locking).
// Construct with NewStore and pass by reference, never as a package global.
type Store struct {
	nodes    []*models.FlowNode
	edges    []*models.FlowEdge
	selected string
	viewport Viewport
}

// NewStore returns an empty store with a default viewport.
func NewStore() *Store {
	return &Store{viewport: Viewport{Zoom: 1}}
}

// SetNodes replaces the node collection wholesale. Used when hydrating from
// a server response; the server shape is trusted and not validated.
func (s *Store) SetNodes(nodes []*models.FlowNode) {
	s.nodes = append([]*models.FlowNode(nil), nodes...)
}

// SetEdges replaces the edge collection wholesale.
func (s *Store) SetEdges(edges []*models.FlowEdge) {
	s.edges = append([]*models.FlowEdge(nil), edges...)
}

// Nodes returns a copy of the node slice. Callers must not mutate the nodes
// through it outside the store's methods.
func (s *Store) Nodes() []*models.FlowNode {
	return append([]*models.FlowNode(nil), s.nodes...)
}

// Edges returns a copy of the edge slice.
func (s *Store) Edges() []*models.FlowEdge {
	return append([]*models.FlowEdge(nil), s.edges...)
}

// NodeByID returns the node with the given ID, or nil.
func (s *Store) NodeByID(id string) *models.FlowNode {
	for _, node := range s.nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// AddNode appends a node. The factory guarantees ID uniqueness for nodes it
// creates; programmatic callers that reuse an ID are rejected here.
func (s *Store) AddNode(node *models.FlowNode) error {
	if s.NodeByID(node.ID) != nil {
		return fmt.Errorf("add node %s: %w", node.ID, ErrDuplicateNode)
	}

	s.nodes = append(s.nodes, node)

	return nil
}

// UpdateNode merges the patch into the node with the given ID. It reports
// whether a node was updated; updating an absent ID is a no-op. A config
// merge failure leaves the scalar fields applied and surfaces the error.
func (s *Store) UpdateNode(id string, patch NodePatch) (bool, error) {
	node := s.NodeByID(id)
	if node == nil {
		return false, nil
	}

	if patch.Label != nil {
		node.Label = *patch.Label
	}

	if patch.Position != nil {
		node.Position = *patch.Position
	}

	if patch.Enabled != nil {
		node.Enabled = *patch.Enabled
	}

	if patch.Config != nil {
		if node.Config == nil {
			node.Config = make(map[string]any)
		}
		// Patch entries win over existing ones.
		if err := mergo.Merge(&node.Config, patch.Config, mergo.WithOverride); err != nil {
			return true, fmt.Errorf("merging config for node %q: %w", id, err)
		}
	}

	return true, nil
}

// DeleteNode removes the node and, in the same operation, every edge whose
// source or target references it. The edge set never holds a dangling
// endpoint after this returns.
func (s *Store) DeleteNode(id string) {
	kept := s.nodes[:0]

	for _, node := range s.nodes {
		if node.ID != id {
			kept = append(kept, node)
		}
	}

	s.nodes = kept

	keptEdges := s.edges[:0]

	for _, edge := range s.edges {
		if edge.Source != id && edge.Target != id {
			keptEdges = append(keptEdges, edge)
		}
	}

	s.edges = keptEdges

	if s.selected == id {
		s.selected = ""
	}
}

// AddEdge appends an edge after checking that both endpoints exist. Edges
// referencing unknown nodes are rejected so the referential invariant holds
// at the store boundary.
func (s *Store) AddEdge(edge *models.FlowEdge) error {
	if s.NodeByID(edge.Source) == nil {
		return fmt.Errorf("add edge %s: source %s: %w", edge.ID, edge.Source, ErrUnknownEndpoint)
	}

	if s.NodeByID(edge.Target) == nil {
		return fmt.Errorf("add edge %s: target %s: %w", edge.ID, edge.Target, ErrUnknownEndpoint)
	}

	s.edges = append(s.edges, edge)

	return nil
}

// DeleteEdge removes the edge with the given ID. Unknown IDs are a no-op.
func (s *Store) DeleteEdge(id string) {
	for i, edge := range s.edges {
		if edge.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)

			return
		}
	}
}

// SetSelectedNode records the currently selected node. Pure UI state; no
// effect on the graph.
func (s *Store) SetSelectedNode(id string) {
	s.selected = id
}

// ClearSelection clears the node selection.
func (s *Store) ClearSelection() {
	s.selected = ""
}

// SelectedNode returns the selected node ID, or "".
func (s *Store) SelectedNode() string {
	return s.selected
}

// SetViewport records the canvas pan/zoom state.
func (s *Store) SetViewport(v Viewport) {
	s.viewport = v
}

// Viewport returns the canvas pan/zoom state.
func (s *Store) Viewport() Viewport {
	return s.viewport
}

// Reset returns the store to its empty initial state.
func (s *Store) Reset() {
	s.nodes = nil
	s.edges = nil
	s.selected = ""
	s.viewport = Viewport{Zoom: 1}
}
