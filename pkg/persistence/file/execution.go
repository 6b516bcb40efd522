package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ana-fx/mail-blast-sub001/pkg/models"
)

// ExecutionRepository stores execution records as
// executions/<flowID>/<executionID>.json.
type ExecutionRepository struct {
	root string
}

func (r *ExecutionRepository) executionDir(flowID string) string {
	return filepath.Join(r.root, "executions", flowID)
}

func (r *ExecutionRepository) Append(_ context.Context, execution *models.Execution) error {
	path := filepath.Join(r.executionDir(execution.FlowID), execution.ID+".json")

	return writeJSON(path, execution)
}

// ListByFlow returns the flow's executions, most recent first.
func (r *ExecutionRepository) ListByFlow(_ context.Context, flowID string) ([]*models.Execution, error) {
	entries, err := os.ReadDir(r.executionDir(flowID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Execution{}, nil
		}

		return nil, err
	}

	executions := make([]*models.Execution, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		var execution models.Execution

		err := readJSON(filepath.Join(r.executionDir(flowID), entry.Name()), &execution)
		if err != nil {
			return nil, err
		}

		executions = append(executions, &execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

// PruneOlderThan removes executions started before the cutoff across all
// flows. Returns the number of records removed.
func (r *ExecutionRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	base := filepath.Join(r.root, "executions")

	flowDirs, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, err
	}

	removed := 0

	for _, dir := range flowDirs {
		if !dir.IsDir() {
			continue
		}

		executions, err := r.ListByFlow(ctx, dir.Name())
		if err != nil {
			return removed, err
		}

		for _, execution := range executions {
			if execution.StartedAt.Before(cutoff) {
				path := filepath.Join(r.executionDir(dir.Name()), execution.ID+".json")
				if err := os.Remove(path); err == nil {
					removed++
				}
			}
		}
	}

	return removed, nil
}
