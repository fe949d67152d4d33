package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	"github.com/strikerlab/debutform/internal/usecase"
)

func TestStore_SelectedTransfersLandUnderDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	path, err := store.WriteSelectedTransfers(context.Background(), []transfer.Record{{
		PlayerID:       9001,
		PlayerName:     "Kaoru Mitoma",
		TransferDate:   mustDate(t, "2021-08-10"),
		TransferSeason: "21/22",
		FromClubID:     100,
		ToClubID:       200,
		FromClubName:   "From FC",
		ToClubName:     "To FC",
	}})
	if err != nil {
		t.Fatalf("write selected transfers: %v", err)
	}
	if want := filepath.Join(dir, SelectedTransfersFile); path != want {
		t.Fatalf("path: got=%s want=%s", path, want)
	}

	table := readTempCSV(t, path)
	if len(table.rows) != 1 {
		t.Fatalf("rows: got=%d want=1", len(table.rows))
	}
	if got := table.cell(table.rows[0], "player_name"); got != "Kaoru Mitoma" {
		t.Fatalf("player_name: got=%s", got)
	}
}

func TestStore_TestLogsKeepHistoryAnnotationsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	outcome := matchlog.Entry{
		Date:       mustDate(t, "2021-08-14"),
		Team:       "Brighton",
		Opponent:   "Burnley",
		PlayerName: "Kaoru Mitoma",
		PlayerID:   "km1",
		StatType:   "summary",
	}
	history := matchlog.Entry{
		Date:       mustDate(t, "2021-05-01"),
		Team:       "Union SG",
		Opponent:   "Anderlecht",
		PlayerName: "Kaoru Mitoma",
		PlayerID:   "km1",
		StatType:   "summary",
	}

	path, err := store.WriteTestLogs(context.Background(), []usecase.TestSetRow{
		{
			Entry:                    outcome,
			Role:                     dataset.RoleOutcome,
			TransferID:               "t1",
			TransferDate:             mustDate(t, "2021-08-10"),
			MatchNumberAfterTransfer: 1,
			DaysSinceTransfer:        4,
		},
		{Entry: history, Role: dataset.RoleHistory, TransferID: "t1"},
	})
	if err != nil {
		t.Fatalf("write test logs: %v", err)
	}

	table := readTempCSV(t, path)
	if len(table.rows) != 2 {
		t.Fatalf("rows: got=%d want=2", len(table.rows))
	}
	if got := table.cell(table.rows[0], "transfer_date"); got != "2021-08-10" {
		t.Fatalf("outcome transfer_date: got=%s", got)
	}
	if got := table.cell(table.rows[0], "match_number_after_transfer"); got != "1" {
		t.Fatalf("outcome match number: got=%s", got)
	}
	if got := table.cell(table.rows[1], "row_role"); got != "history" {
		t.Fatalf("history role: got=%s", got)
	}
	if got := table.cell(table.rows[1], "transfer_date"); got != "" {
		t.Fatalf("history transfer_date must stay empty, got=%s", got)
	}
	if got := table.cell(table.rows[1], "match_number_after_transfer"); got != "" {
		t.Fatalf("history match number must stay empty, got=%s", got)
	}
}

func TestStore_EloHistoriesWriteOneFilePerTeam(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	fetchedAt := mustDate(t, "2025-05-01")

	got, err := store.WriteEloHistories(context.Background(), []usecase.EloTeamHistory{{
		NormalizedTeam: "brighton",
		Ratings: []clubelo.Rating{{
			Club:    "Brighton",
			Country: "ENG",
			Level:   1,
			Elo:     1802.5,
			From:    mustDate(t, "2021-08-01"),
		}},
		FetchedAt: fetchedAt,
	}})
	if err != nil {
		t.Fatalf("write rating histories: %v", err)
	}
	if want := filepath.Join(dir, EloHistoryDir); got != want {
		t.Fatalf("artifact dir: got=%s want=%s", got, want)
	}

	file := filepath.Join(got, EloHistoryFileName("brighton", fetchedAt))
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("per-team history file missing: %v", err)
	}
}

func TestStore_EloHistoriesEmptyStillCreatesDir(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	got, err := store.WriteEloHistories(context.Background(), nil)
	if err != nil {
		t.Fatalf("write empty rating histories: %v", err)
	}
	info, err := os.Stat(got)
	if err != nil || !info.IsDir() {
		t.Fatalf("history dir not created: %v", err)
	}
}

func TestStore_EloDirOverrideMovesHistories(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	eloDir := filepath.Join(t.TempDir(), "club-elo")
	store.SetEloDir(eloDir)

	got, err := store.WriteEloHistories(context.Background(), nil)
	if err != nil {
		t.Fatalf("write rating histories: %v", err)
	}
	if got != eloDir {
		t.Fatalf("artifact dir: got=%s want=%s", got, eloDir)
	}
}

func TestStore_RunManifestNamedByRunID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	completed := mustDate(t, "2025-06-01")
	run := dataset.Run{
		ID:             "run_all_20250601T000000Z",
		Stage:          "all",
		Status:         dataset.RunStatusCompleted,
		StartedAt:      completed,
		CompletedAt:    &completed,
		InputChecksums: map[string]string{"transfers.csv": "abc123"},
		Counts:         map[string]int{"ingest.transfer_rows": 12},
	}

	path, err := store.WriteRunManifest(context.Background(), run)
	if err != nil {
		t.Fatalf("write run manifest: %v", err)
	}
	if want := filepath.Join(dir, RunManifestDir, run.ID+".json"); path != want {
		t.Fatalf("path: got=%s want=%s", path, want)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(body), run.ID) || !strings.Contains(string(body), "transfers.csv") {
		t.Fatalf("manifest content: %s", body)
	}
}
