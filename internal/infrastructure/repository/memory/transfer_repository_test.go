package memory

import (
	"context"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

func TestTransferRepository_KeepsSnapshotOrderAcrossUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTransferRepository()

	first := transfer.Record{PlayerID: 1, PlayerName: "A", TransferDate: day(2023, 8, 1), TransferSeason: "23/24", FromClubID: 10, ToClubID: 20}
	second := transfer.Record{PlayerID: 2, PlayerName: "B", TransferDate: day(2023, 8, 2), TransferSeason: "23/24", FromClubID: 11, ToClubID: 21}
	if err := repo.UpsertRecords(ctx, []transfer.Record{first, second}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Re-ingesting the same row must not move it to the back.
	first.TransferFee = floatPtr(5_000_000)
	if err := repo.UpsertRecords(ctx, []transfer.Record{first}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	records, err := repo.ListRecords(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got=%d", len(records))
	}
	if records[0].PlayerID != 1 || records[1].PlayerID != 2 {
		t.Fatalf("expected snapshot order 1,2 got=%d,%d", records[0].PlayerID, records[1].PlayerID)
	}
	if records[0].TransferFee == nil || *records[0].TransferFee != 5_000_000 {
		t.Fatalf("expected re-ingest to update fee, got=%v", records[0].TransferFee)
	}
}

func TestMatchLogRepository_ListsSortedByDateThenPlayer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchLogRepository()

	entries := []matchlog.Entry{
		{Date: day(2023, 9, 2), Team: "Chelsea", Opponent: "Forest", PlayerID: "b2", PlayerName: "B", StatType: "summary"},
		{Date: day(2023, 8, 13), Team: "Chelsea", Opponent: "Liverpool", PlayerID: "b2", PlayerName: "B", StatType: "summary"},
		{Date: day(2023, 8, 13), Team: "Chelsea", Opponent: "Liverpool", PlayerID: "a1", PlayerName: "A", StatType: "summary"},
	}
	if err := repo.UpsertEntries(ctx, entries); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ListEntries(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got=%d", len(got))
	}
	if got[0].PlayerID != "a1" || got[1].PlayerID != "b2" || got[2].PlayerID != "b2" {
		t.Fatalf("unexpected order: %s,%s,%s", got[0].PlayerID, got[1].PlayerID, got[2].PlayerID)
	}
	if !got[2].Date.Equal(day(2023, 9, 2)) {
		t.Fatalf("expected latest entry last, got=%v", got[2].Date)
	}
}

func TestMatchLogRepository_ListByPlayerBeforeIsStrict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchLogRepository()

	cut := day(2023, 9, 2)
	entries := []matchlog.Entry{
		{Date: day(2023, 8, 13), Team: "Chelsea", Opponent: "Liverpool", PlayerID: "a1", PlayerName: "A", StatType: "summary"},
		{Date: cut, Team: "Chelsea", Opponent: "Forest", PlayerID: "a1", PlayerName: "A", StatType: "summary"},
		{Date: day(2023, 8, 20), Team: "Chelsea", Opponent: "West Ham", PlayerID: "zz", PlayerName: "Z", StatType: "summary"},
	}
	if err := repo.UpsertEntries(ctx, entries); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.ListByPlayerBefore(ctx, "a1", cut)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the anchor-day match excluded, got=%d entries", len(got))
	}
	if !got[0].Date.Equal(day(2023, 8, 13)) {
		t.Fatalf("unexpected entry %v", got[0].Date)
	}
}

func TestRunRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewRunRepository()

	started := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	run := dataset.Run{ID: "run_1", Stage: "train-set", Status: dataset.RunStatusRunning, StartedAt: started}
	if err := repo.CreateRun(ctx, run); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateRun(ctx, run); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}

	done := started.Add(3 * time.Minute)
	finished := run
	finished.Status = dataset.RunStatusCompleted
	finished.CompletedAt = &done
	finished.InputChecksums = map[string]string{"transfers.csv": "aaa111"}
	finished.Counts = map[string]int{"rows": 42}
	if err := repo.FinishRun(ctx, finished); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := repo.FinishRun(ctx, dataset.Run{ID: "missing", Status: dataset.RunStatusFailed, CompletedAt: &done, Error: "boom"}); err == nil {
		t.Fatalf("expected unknown run to fail")
	}

	got, found, err := repo.GetRun(ctx, "run_1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if got.Status != dataset.RunStatusCompleted {
		t.Fatalf("expected completed, got=%s", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Fatalf("expected completed_at=%v, got=%v", done, got.CompletedAt)
	}
	if got.InputChecksums["transfers.csv"] != "aaa111" {
		t.Fatalf("expected finish to persist checksums, got=%v", got.InputChecksums)
	}
	if got.Counts["rows"] != 42 {
		t.Fatalf("expected rows count 42, got=%v", got.Counts)
	}

	recent, err := repo.ListRecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "run_1" {
		t.Fatalf("unexpected recent runs: %+v", recent)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }
