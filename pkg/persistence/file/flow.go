package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// FlowRepository stores each flow as flows/<id>.json under the root.
type FlowRepository struct {
	root string
}

func (r *FlowRepository) flowPath(id string) string {
	return filepath.Join(r.root, "flows", id+".json")
}

// ListFlows returns paginated and filtered flows with in-memory operations.
func (r *FlowRepository) ListFlows(ctx context.Context, opts persistence.ListFlowsOptions) (*persistence.FlowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	root := os.DirFS(filepath.Join(r.root, "flows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	all := make([]*models.Flow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		flowID := strings.TrimSuffix(file, ".json")

		flow, err := r.GetByID(ctx, flowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load flow %s: %w", flowID, err)
		}

		if flow != nil {
			all = append(all, flow)
		}
	}

	filtered := make([]*models.Flow, 0, len(all))

	for _, flow := range all {
		if opts.OwnerID != "" && flow.Owner != opts.OwnerID {
			continue
		}

		if opts.Status != nil && flow.Status != *opts.Status {
			continue
		}

		filtered = append(filtered, flow)
	}

	sortFlows(filtered, opts.SortBy, opts.SortOrder)

	total := int64(len(filtered))

	start := opts.Offset
	if start > len(filtered) {
		start = len(filtered)
	}

	end := start + opts.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return &persistence.FlowListResult{
		Flows:       filtered[start:end],
		TotalCount:  total,
		HasNextPage: end < len(filtered),
	}, nil
}

func sortFlows(flows []*models.Flow, sortBy, sortOrder string) {
	less := func(i, j int) bool {
		switch sortBy {
		case "name":
			return flows[i].Name < flows[j].Name
		case "updated_at":
			return flows[i].UpdatedAt.Before(flows[j].UpdatedAt)
		default:
			return flows[i].CreatedAt.Before(flows[j].CreatedAt)
		}
	}

	if sortOrder == "desc" {
		sort.SliceStable(flows, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(flows, less)
	}
}

// GetByID loads a flow by ID. A missing flow is (nil, nil); callers map that
// to their own not-found semantics.
func (r *FlowRepository) GetByID(_ context.Context, id string) (*models.Flow, error) {
	var flow models.Flow

	err := readJSON(r.flowPath(id), &flow)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	if flow.Nodes == nil {
		flow.Nodes = []*models.FlowNode{}
	}

	if flow.Edges == nil {
		flow.Edges = []*models.FlowEdge{}
	}

	return &flow, nil
}

// Save writes the flow to disk, overwriting any previous version.
func (r *FlowRepository) Save(_ context.Context, flow *models.Flow) error {
	if err := writeJSON(r.flowPath(flow.ID), flow); err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	return nil
}

// Delete removes the flow file and its execution history.
func (r *FlowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.flowPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
		}

		return persistence.NewFlowError("Delete", id, err)
	}

	// Execution history is owned by the flow; best effort removal.
	_ = os.RemoveAll(filepath.Join(r.root, "executions", id))

	return nil
}
