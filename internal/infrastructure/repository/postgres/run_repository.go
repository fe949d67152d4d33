package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	qb "github.com/strikerlab/debutform/internal/platform/querybuilder"
)

type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(ctx context.Context, run dataset.Run) error {
	query, args, err := qb.InsertModel("dataset_runs", runToInsertModel(run), "")
	if err != nil {
		return fmt.Errorf("build insert dataset run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert dataset run id=%s: %w", run.ID, err)
	}
	return nil
}

func (r *RunRepository) FinishRun(ctx context.Context, run dataset.Run) error {
	query, args, err := qb.Update("dataset_runs").
		Set("status", string(run.Status)).
		Set("completed_at", run.CompletedAt).
		Set("input_checksums", encodeChecksumsJSON(run.InputChecksums)).
		Set("counts", encodeCountsJSON(run.Counts)).
		Set("run_error", run.Error).
		Where(qb.Eq("id", run.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish dataset run query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish dataset run id=%s: %w", run.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish dataset run rows affected id=%s: %w", run.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (dataset.Run, bool, error) {
	query, args, err := qb.Select(datasetRunSelectColumns...).
		From("dataset_runs").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return dataset.Run{}, false, fmt.Errorf("build get dataset run query: %w", err)
	}

	var row datasetRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return dataset.Run{}, false, nil
		}
		return dataset.Run{}, false, fmt.Errorf("get dataset run id=%s: %w", id, err)
	}

	return runFromRow(row), true, nil
}

func (r *RunRepository) ListRecentRuns(ctx context.Context, limit int) ([]dataset.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := qb.Select(datasetRunSelectColumns...).
		From("dataset_runs").
		OrderBy("started_at DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list recent dataset runs query: %w", err)
	}

	var rows []datasetRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list recent dataset runs: %w", err)
	}

	out := make([]dataset.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, runFromRow(row))
	}
	return out, nil
}
