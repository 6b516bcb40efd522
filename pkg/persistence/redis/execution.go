package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	rd "github.com/redis/go-redis/v9"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// ExecutionRepository keeps each flow's executions in a per-flow hash keyed
// by execution ID; the set "mailblast:execution_flows" tracks which flows
// have history so pruning does not need a key scan.
type ExecutionRepository struct {
	client rd.UniversalClient
}

func executionsKey(flowID string) string {
	return key("executions", flowID)
}

func executionFlowsKey() string {
	return key("execution_flows")
}

func (r *ExecutionRepository) Append(ctx context.Context, execution *models.Execution) error {
	payload, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, executionsKey(execution.FlowID), execution.ID, string(payload))
	pipe.SAdd(ctx, executionFlowsKey(), execution.FlowID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ListByFlow(ctx context.Context, flowID string) ([]*models.Execution, error) {
	raw, err := r.client.HGetAll(ctx, executionsKey(flowID)).Result()
	if err != nil && err != rd.Nil {
		return nil, fmt.Errorf("failed to list executions for flow %s: %w", flowID, err)
	}

	executions := make([]*models.Execution, 0, len(raw))

	for _, payload := range raw {
		var execution models.Execution

		if err := json.Unmarshal([]byte(payload), &execution); err != nil {
			return nil, fmt.Errorf("failed to decode execution for flow %s: %w", flowID, err)
		}

		executions = append(executions, &execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (r *ExecutionRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	flowIDs, err := r.client.SMembers(ctx, executionFlowsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate execution flows: %w", err)
	}

	removed := 0

	for _, flowID := range flowIDs {
		executions, err := r.ListByFlow(ctx, flowID)
		if err != nil {
			return removed, err
		}

		for _, execution := range executions {
			if execution.StartedAt.Before(cutoff) {
				if err := r.client.HDel(ctx, executionsKey(flowID), execution.ID).Err(); err == nil {
					removed++
				}
			}
		}
	}

	return removed, nil
}
