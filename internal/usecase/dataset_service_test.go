package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

func splitTestRepo() *stubMatchLogRepository {
	entries := []matchlog.Entry{
		logTestEntry("km1", "Kaoru Mitoma", "Feyenoord", "2021-03-06"),
		logTestEntry("km1", "Kaoru Mitoma", "Feyenoord", "2021-04-10"),
		logTestEntry("zz1", "Zeki Zeki", "Getafe", "2021-05-01"),
		logTestEntry("km1", "Kaoru Mitoma", "Feyenoord", "2021-05-08"),
		logTestEntry("km1", "Kaoru Mitoma", "Brighton", "2021-08-14"),
		logTestEntry("km1", "Kaoru Mitoma", "Brighton", "2021-08-28"),
		logTestEntry("zz1", "Zeki Zeki", "Getafe", "2021-09-12"),
		logTestEntry("km1", "Kaoru Mitoma", "Brighton", "2021-12-26"),
	}
	repo := &stubMatchLogRepository{entries: entries}
	transferDate := mustDateValue("2021-08-10")
	repo.postTransfer = []matchlog.PostTransferEntry{
		{
			Entry:                    entries[4],
			TransferID:               "Kaoru Mitoma_Feyenoord_Brighton_2021-08-10",
			TransferDate:             transferDate,
			FromClub:                 "Feyenoord",
			ToClub:                   "Brighton",
			MatchNumberAfterTransfer: 1,
			DaysSinceTransfer:        4,
		},
		{
			Entry:                    entries[5],
			TransferID:               "Kaoru Mitoma_Feyenoord_Brighton_2021-08-10",
			TransferDate:             transferDate,
			FromClub:                 "Feyenoord",
			ToClub:                   "Brighton",
			MatchNumberAfterTransfer: 2,
			DaysSinceTransfer:        18,
		},
	}
	return repo
}

func TestDatasetService_BuildTrain_ExcludesOnlyPostTransferOutcomes(t *testing.T) {
	t.Parallel()

	repo := splitTestRepo()
	service := NewDatasetService(repo)

	got, err := service.BuildTrain(context.Background())
	if err != nil {
		t.Fatalf("build train set: %v", err)
	}

	if len(got.Entries) != 6 {
		t.Fatalf("unexpected train size: got=%d want=6", len(got.Entries))
	}
	outcomes := make(map[string]struct{})
	for _, row := range repo.postTransfer {
		outcomes[row.PlayerMatchID()] = struct{}{}
	}
	for _, entry := range got.Entries {
		if _, leaked := outcomes[entry.PlayerMatchID()]; leaked {
			t.Fatalf("post-transfer outcome leaked into train: %s", entry.PlayerMatchID())
		}
	}
	// Pre-transfer rows of the transferred player stay in train.
	preKept := 0
	for _, entry := range got.Entries {
		if entry.PlayerID == "km1" && entry.Team == "Feyenoord" {
			preKept++
		}
	}
	if preKept != 3 {
		t.Fatalf("expected 3 pre-transfer rows in train, got %d", preKept)
	}
	if got.Report.ExcludedTotal() != 2 {
		t.Fatalf("unexpected excluded total: %d", got.Report.ExcludedTotal())
	}
}

func TestDatasetService_BuildTest_HistoryRowsPredateTheTransfer(t *testing.T) {
	t.Parallel()

	repo := splitTestRepo()
	service := NewDatasetService(repo)

	got, err := service.BuildTest(context.Background())
	if err != nil {
		t.Fatalf("build test set: %v", err)
	}

	if got.TransferCount != 1 {
		t.Fatalf("unexpected transfer count: %d", got.TransferCount)
	}
	if got.OutcomeCount != 2 || got.HistoryCount != 3 {
		t.Fatalf("unexpected row counts: outcomes=%d history=%d", got.OutcomeCount, got.HistoryCount)
	}

	transferDate := mustDateValue("2021-08-10")
	for _, row := range got.Rows {
		if row.Role == dataset.RoleHistory && !row.Entry.Date.Before(transferDate) {
			t.Fatalf("history row on or after the transfer date: %s", row.Entry.Date)
		}
		if row.TransferID == "" {
			t.Fatalf("test row without a transfer id: %+v", row.Entry)
		}
	}

	// History reads chronologically into the outcome rows of the same transfer.
	if got.Rows[0].Role != dataset.RoleHistory || got.Rows[len(got.Rows)-1].Role != dataset.RoleOutcome {
		t.Fatalf("unexpected row layout: first=%s last=%s", got.Rows[0].Role, got.Rows[len(got.Rows)-1].Role)
	}
	for _, row := range got.Rows {
		if row.Role == dataset.RoleOutcome && row.MatchNumberAfterTransfer == 0 {
			t.Fatalf("outcome row without a match number")
		}
	}
}

func TestDatasetService_SplitCoversEveryLabeledRowExactlyOnce(t *testing.T) {
	t.Parallel()

	repo := splitTestRepo()
	service := NewDatasetService(repo)

	train, err := service.BuildTrain(context.Background())
	if err != nil {
		t.Fatalf("build train set: %v", err)
	}
	test, err := service.BuildTest(context.Background())
	if err != nil {
		t.Fatalf("build test set: %v", err)
	}

	labeled := make(map[string]int)
	for _, entry := range train.Entries {
		labeled[entry.PlayerMatchID()]++
	}
	for _, row := range test.Rows {
		if row.Role == dataset.RoleOutcome {
			labeled[row.Entry.PlayerMatchID()]++
		}
	}

	if len(labeled) != len(repo.entries) {
		t.Fatalf("labeled union does not cover the cleaned log: got=%d want=%d", len(labeled), len(repo.entries))
	}
	for id, count := range labeled {
		if count != 1 {
			t.Fatalf("player-match pair labeled %d times: %s", count, id)
		}
	}
}

func mustDateValue(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}
