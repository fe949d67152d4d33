package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

// TestSetRow is one test-split row. Outcome rows are the labeled samples;
// history rows are the pre-transfer matches feature windows read from.
type TestSetRow struct {
	Entry                    matchlog.Entry
	Role                     dataset.Role
	TransferID               string
	TransferDate             time.Time
	MatchNumberAfterTransfer int
	DaysSinceTransfer        int
}

type TrainSetResult struct {
	Entries []matchlog.Entry
	Report  dataset.BuildReport
}

type TestSetResult struct {
	Rows   []TestSetRow
	Report dataset.BuildReport

	TransferCount int
	OutcomeCount  int
	HistoryCount  int
}

// DatasetService splits the cleaned match log into train and test sets.
// The two sides share one rule: a player-match pair that is a post-transfer
// outcome appears in the test set and nowhere in train.
type DatasetService struct {
	matchLogRepo matchlog.Repository
}

func NewDatasetService(matchLogRepo matchlog.Repository) *DatasetService {
	return &DatasetService{matchLogRepo: matchLogRepo}
}

// BuildTrain returns every cleaned log row whose player-match pair is not a
// post-transfer outcome. Pre-transfer rows of transferred players stay in:
// they are ordinary history for training purposes.
func (s *DatasetService) BuildTrain(ctx context.Context) (TrainSetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DatasetService.BuildTrain")
	defer span.End()

	entries, err := s.matchLogRepo.ListEntries(ctx)
	if err != nil {
		return TrainSetResult{}, fmt.Errorf("list match log entries: %w", err)
	}
	post, err := s.matchLogRepo.ListPostTransfer(ctx)
	if err != nil {
		return TrainSetResult{}, fmt.Errorf("list post-transfer entries: %w", err)
	}

	outcomes := make(map[string]struct{}, len(post))
	for _, row := range post {
		outcomes[row.PlayerMatchID()] = struct{}{}
	}

	result := TrainSetResult{
		Entries: make([]matchlog.Entry, 0, len(entries)),
		Report:  dataset.BuildReport{Stage: "train-set", RowsIn: len(entries)},
	}
	for _, entry := range entries {
		if _, ok := outcomes[entry.PlayerMatchID()]; ok {
			result.Report.Exclude("post_transfer_outcome", entry.PlayerMatchID(), 1)
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
	result.Report.RowsOut = len(result.Entries)

	return result, nil
}

// BuildTest returns the post-transfer outcomes grouped by transfer, each
// group preceded by the player's log rows dated strictly before that
// transfer. History rows carry the transfer id so feature windows know
// which outcome group they feed.
func (s *DatasetService) BuildTest(ctx context.Context) (TestSetResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DatasetService.BuildTest")
	defer span.End()

	post, err := s.matchLogRepo.ListPostTransfer(ctx)
	if err != nil {
		return TestSetResult{}, fmt.Errorf("list post-transfer entries: %w", err)
	}

	type transferGroup struct {
		transferID   string
		transferDate time.Time
		playerID     string
		outcomes     []matchlog.PostTransferEntry
	}
	var groups []*transferGroup
	groupByID := make(map[string]*transferGroup)
	for _, row := range post {
		group, ok := groupByID[row.TransferID]
		if !ok {
			group = &transferGroup{
				transferID:   row.TransferID,
				transferDate: row.TransferDate,
				playerID:     row.PlayerID,
			}
			groupByID[row.TransferID] = group
			groups = append(groups, group)
		}
		group.outcomes = append(group.outcomes, row)
	}

	result := TestSetResult{
		Report:        dataset.BuildReport{Stage: "test-set", RowsIn: len(post)},
		TransferCount: len(groups),
	}
	for _, group := range groups {
		history, err := s.matchLogRepo.ListByPlayerBefore(ctx, group.playerID, group.transferDate)
		if err != nil {
			return TestSetResult{}, fmt.Errorf("list pre-transfer history for %s: %w", group.transferID, err)
		}
		for _, entry := range history {
			result.Rows = append(result.Rows, TestSetRow{
				Entry:        entry,
				Role:         dataset.RoleHistory,
				TransferID:   group.transferID,
				TransferDate: group.transferDate,
			})
			result.HistoryCount++
		}
		for _, outcome := range group.outcomes {
			result.Rows = append(result.Rows, TestSetRow{
				Entry:                    outcome.Entry,
				Role:                     dataset.RoleOutcome,
				TransferID:               outcome.TransferID,
				TransferDate:             outcome.TransferDate,
				MatchNumberAfterTransfer: outcome.MatchNumberAfterTransfer,
				DaysSinceTransfer:        outcome.DaysSinceTransfer,
			})
			result.OutcomeCount++
		}
	}
	result.Report.RowsOut = len(result.Rows)

	return result, nil
}
