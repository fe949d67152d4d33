package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

// DefaultPostTransferMatchCount is how many matches after a transfer count
// as the player's settling-in period.
const DefaultPostTransferMatchCount = 10

type PostTransferInput struct {
	MatchCount int
	MaxWorkers int
}

type PostTransferResult struct {
	Entries []matchlog.PostTransferEntry
	Report  dataset.BuildReport

	TransfersIn          int
	TransfersWithMatches int
	WorkerCount          int
}

// PostTransferService finds each transferred player's first matches at the
// new club. Those rows become the labeled test examples, so they must never
// leak into training data.
type PostTransferService struct {
	transferRepo transfer.Repository
	matchLogRepo matchlog.Repository
}

func NewPostTransferService(transferRepo transfer.Repository, matchLogRepo matchlog.Repository) *PostTransferService {
	return &PostTransferService{
		transferRepo: transferRepo,
		matchLogRepo: matchLogRepo,
	}
}

// Extract walks every mapped transfer and collects the player's first N
// matches for the destination club, dated on or after the transfer. When the
// player moves again, candidates stop at the next transfer date; a late
// Champions League run with the old club can otherwise bleed into the new
// spell. Transfers with no observed matches are counted, not failed.
func (s *PostTransferService) Extract(ctx context.Context, input PostTransferInput) (PostTransferResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PostTransferService.Extract")
	defer span.End()

	matchCount := input.MatchCount
	if matchCount <= 0 {
		matchCount = DefaultPostTransferMatchCount
	}

	mapped, err := s.transferRepo.ListMapped(ctx)
	if err != nil {
		return PostTransferResult{}, fmt.Errorf("list mapped transfers: %w", err)
	}
	entries, err := s.matchLogRepo.ListEntries(ctx)
	if err != nil {
		return PostTransferResult{}, fmt.Errorf("list match log entries: %w", err)
	}

	logsByPlayerName := make(map[string][]matchlog.Entry)
	for _, entry := range entries {
		logsByPlayerName[entry.PlayerName] = append(logsByPlayerName[entry.PlayerName], entry)
	}

	// Transfer sequences are per player: candidates for one spell stop at
	// the player's next move.
	transferIdxByPlayer := make(map[int64][]int)
	for idx, row := range mapped {
		transferIdxByPlayer[row.PlayerID] = append(transferIdxByPlayer[row.PlayerID], idx)
	}
	players := make([]int64, 0, len(transferIdxByPlayer))
	for playerID := range transferIdxByPlayer {
		players = append(players, playerID)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })

	workerCount := normalizeStageWorkerCount(input.MaxWorkers, len(players))
	result := PostTransferResult{
		Report:      dataset.BuildReport{Stage: "post-transfer", RowsIn: len(mapped)},
		TransfersIn: len(mapped),
		WorkerCount: workerCount,
	}
	if len(mapped) == 0 {
		if err := s.matchLogRepo.ReplacePostTransfer(ctx, nil); err != nil {
			return PostTransferResult{}, fmt.Errorf("replace post-transfer entries: %w", err)
		}
		return result, nil
	}

	// Slot per mapped transfer, so flattening after the parallel section
	// reproduces the sequential output order exactly.
	perTransfer := make([][]matchlog.PostTransferEntry, len(mapped))

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return PostTransferResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, playerID := range players {
		indices := transferIdxByPlayer[playerID]
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			s.extractPlayer(mapped, indices, logsByPlayerName, matchCount, perTransfer)
		}); err != nil {
			workers.Done()
			return PostTransferResult{}, fmt.Errorf("submit player to worker pool: %w", err)
		}
	}
	workers.Wait()

	for idx, rows := range perTransfer {
		if len(rows) == 0 {
			result.Report.Exclude("transfer_without_matches", mapped[idx].TransferID(), 1)
			continue
		}
		result.TransfersWithMatches++
		result.Entries = append(result.Entries, rows...)
	}
	result.Report.RowsOut = len(result.Entries)

	if err := s.matchLogRepo.ReplacePostTransfer(ctx, result.Entries); err != nil {
		return PostTransferResult{}, fmt.Errorf("replace post-transfer entries: %w", err)
	}

	return result, nil
}

// extractPlayer handles all transfers of one player, in ascending transfer
// date order. It only writes to this player's slots of perTransfer.
func (s *PostTransferService) extractPlayer(
	mapped []transfer.Mapped,
	indices []int,
	logsByPlayerName map[string][]matchlog.Entry,
	matchCount int,
	perTransfer [][]matchlog.PostTransferEntry,
) {
	ordered := append([]int(nil), indices...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return mapped[ordered[i]].TransferDate.Before(mapped[ordered[j]].TransferDate)
	})

	for seq, idx := range ordered {
		row := mapped[idx]
		logs := logsByPlayerName[row.PlayerNameMapped]
		if len(logs) == 0 {
			continue
		}

		var nextTransfer *transfer.Mapped
		if seq+1 < len(ordered) {
			nextTransfer = &mapped[ordered[seq+1]]
		}

		taken := 0
		for _, entry := range logs {
			if taken >= matchCount {
				break
			}
			if entry.Date.Before(row.TransferDate) {
				continue
			}
			if entry.Team != row.ToClubNameMapped {
				continue
			}
			if nextTransfer != nil && !entry.Date.Before(nextTransfer.TransferDate) {
				continue
			}
			taken++
			perTransfer[idx] = append(perTransfer[idx], matchlog.PostTransferEntry{
				Entry:                    entry,
				TransferID:               row.TransferID(),
				TransferDate:             row.TransferDate,
				FromClub:                 row.FromClubNameMapped,
				ToClub:                   row.ToClubNameMapped,
				MatchNumberAfterTransfer: taken,
				DaysSinceTransfer:        int(entry.Date.Sub(row.TransferDate).Hours() / 24),
			})
		}
	}
}

func normalizeStageWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 4
	}
	if value > 8 {
		value = 8
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
