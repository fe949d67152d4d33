package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/strikerlab/debutform/internal/domain/dataset"
)

type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]dataset.Run
}

func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[string]dataset.Run)}
}

func (r *RunRepository) CreateRun(_ context.Context, run dataset.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	r.runs[run.ID] = cloneRun(run)

	return nil
}

func (r *RunRepository) FinishRun(_ context.Context, run dataset.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.runs[run.ID]
	if !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	stored.Status = run.Status
	if run.CompletedAt != nil {
		completedAt := *run.CompletedAt
		stored.CompletedAt = &completedAt
	}
	if run.InputChecksums != nil {
		checksums := make(map[string]string, len(run.InputChecksums))
		for k, v := range run.InputChecksums {
			checksums[k] = v
		}
		stored.InputChecksums = checksums
	}
	stored.Counts = cloneCounts(run.Counts)
	stored.Error = run.Error
	r.runs[run.ID] = stored

	return nil
}

func (r *RunRepository) GetRun(_ context.Context, id string) (dataset.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return dataset.Run{}, false, nil
	}

	return cloneRun(run), true, nil
}

func (r *RunRepository) ListRecentRuns(_ context.Context, limit int) ([]dataset.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dataset.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, cloneRun(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func cloneRun(run dataset.Run) dataset.Run {
	copied := run
	if run.CompletedAt != nil {
		completedAt := *run.CompletedAt
		copied.CompletedAt = &completedAt
	}
	if run.InputChecksums != nil {
		checksums := make(map[string]string, len(run.InputChecksums))
		for k, v := range run.InputChecksums {
			checksums[k] = v
		}
		copied.InputChecksums = checksums
	}
	copied.Counts = cloneCounts(run.Counts)

	return copied
}

func cloneCounts(counts map[string]int) map[string]int {
	if counts == nil {
		return nil
	}
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}

	return out
}
