package postgres

import (
	"database/sql"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/strikerlab/debutform/internal/domain/dataset"
)

type datasetRunTableModel struct {
	ID             string       `db:"id"`
	Stage          string       `db:"stage"`
	Status         string       `db:"status"`
	StartedAt      time.Time    `db:"started_at"`
	CompletedAt    sql.NullTime `db:"completed_at"`
	InputChecksums string       `db:"input_checksums"`
	Counts         string       `db:"counts"`
	RunError       string       `db:"run_error"`
}

type datasetRunInsertModel struct {
	ID             string     `db:"id"`
	Stage          string     `db:"stage"`
	Status         string     `db:"status"`
	StartedAt      time.Time  `db:"started_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	InputChecksums string     `db:"input_checksums"`
	Counts         string     `db:"counts"`
	RunError       string     `db:"run_error"`
}

var datasetRunSelectColumns = []string{
	"id", "stage", "status", "started_at", "completed_at",
	"input_checksums", "counts", "run_error",
}

func runFromRow(row datasetRunTableModel) dataset.Run {
	return dataset.Run{
		ID:             row.ID,
		Stage:          row.Stage,
		Status:         dataset.RunStatus(row.Status),
		StartedAt:      row.StartedAt,
		CompletedAt:    nullTimeToPtr(row.CompletedAt),
		InputChecksums: decodeChecksumsJSON(row.InputChecksums),
		Counts:         decodeCountsJSON(row.Counts),
		Error:          row.RunError,
	}
}

func runToInsertModel(run dataset.Run) datasetRunInsertModel {
	return datasetRunInsertModel{
		ID:             run.ID,
		Stage:          run.Stage,
		Status:         string(run.Status),
		StartedAt:      run.StartedAt,
		CompletedAt:    run.CompletedAt,
		InputChecksums: encodeChecksumsJSON(run.InputChecksums),
		Counts:         encodeCountsJSON(run.Counts),
		RunError:       run.Error,
	}
}

func encodeChecksumsJSON(value map[string]string) string {
	if len(value) == 0 {
		return "{}"
	}
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeChecksumsJSON(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}
	out := make(map[string]string)
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeCountsJSON(value map[string]int) string {
	if len(value) == 0 {
		return "{}"
	}
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeCountsJSON(raw string) map[string]int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}
	out := make(map[string]int)
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
