package dataset

import "context"

// RunRepository persists pipeline run manifests.
type RunRepository interface {
	CreateRun(ctx context.Context, run Run) error
	FinishRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRecentRuns(ctx context.Context, limit int) ([]Run, error)
}
