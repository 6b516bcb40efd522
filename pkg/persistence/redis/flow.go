package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	rd "github.com/redis/go-redis/v9"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
)

// FlowRepository keeps every flow as a JSON field of the "mailblast:flows"
// hash, keyed by flow ID. Listing loads the hash and filters in memory; flow
// counts per account are small enough that a secondary index is not worth
// its complexity.
type FlowRepository struct {
	client rd.UniversalClient
}

func flowsKey() string {
	return key("flows")
}

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

	raw, err := r.client.HGetAll(ctx, flowsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	filtered := make([]*models.Flow, 0, len(raw))

	for id, payload := range raw {
		var flow models.Flow

		if err := json.Unmarshal([]byte(payload), &flow); err != nil {
			return nil, persistence.NewFlowError("ListFlows", id, err)
		}

		if opts.OwnerID != "" && flow.Owner != opts.OwnerID {
			continue
		}

		if opts.Status != nil && flow.Status != *opts.Status {
			continue
		}

		filtered = append(filtered, &flow)
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

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	payload, err := r.client.HGet(ctx, flowsKey(), id).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, nil
		}

		return nil, persistence.NewFlowError("GetByID", id, err)
	}

	var flow models.Flow

	if err := json.Unmarshal([]byte(payload), &flow); err != nil {
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

func (r *FlowRepository) Save(ctx context.Context, flow *models.Flow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	if err := r.client.HSet(ctx, flowsKey(), flow.ID, string(payload)).Err(); err != nil {
		return persistence.NewFlowError("Save", flow.ID, err)
	}

	return nil
}

func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.HDel(ctx, flowsKey(), id).Result()
	if err != nil {
		return persistence.NewFlowError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewFlowError("Delete", id, persistence.ErrFlowNotFound)
	}

	// Execution history is owned by the flow.
	_ = r.client.Del(ctx, key("executions", id)).Err()

	return nil
}
