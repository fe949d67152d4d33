package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

// Destination competitions that make a transfer relevant: the five major
// European leagues in the transfer source's competition coding.
var DefaultTopFiveCompetitions = []string{"FR1", "GB1", "ES1", "IT1", "L1"}

// DefaultSelectedSeasons is the trailing five-season window the dataset covers.
var DefaultSelectedSeasons = []string{"20/21", "21/22", "22/23", "23/24", "24/25"}

// DefaultTransferCutoff is the last admissible transfer date, inclusive.
// Later deals have too few observed matches to label.
var DefaultTransferCutoff = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

type TransferSelectConfig struct {
	Competitions []string
	Seasons      []string
	Cutoff       time.Time
}

type TransferSelectResult struct {
	Selected []transfer.Record
	Report   dataset.BuildReport
}

// TransferSelectService filters the raw transfer snapshot down to deals
// that moved a player into a top-5-league club inside the season window.
type TransferSelectService struct {
	transferRepo transfer.Repository
	clubRepo     transfer.ClubRepository
	cfg          TransferSelectConfig
}

func NewTransferSelectService(
	transferRepo transfer.Repository,
	clubRepo transfer.ClubRepository,
	cfg TransferSelectConfig,
) *TransferSelectService {
	if len(cfg.Competitions) == 0 {
		cfg.Competitions = DefaultTopFiveCompetitions
	}
	if len(cfg.Seasons) == 0 {
		cfg.Seasons = DefaultSelectedSeasons
	}
	if cfg.Cutoff.IsZero() {
		cfg.Cutoff = DefaultTransferCutoff
	}

	return &TransferSelectService{
		transferRepo: transferRepo,
		clubRepo:     clubRepo,
		cfg:          cfg,
	}
}

// Select returns the relevant transfers in input order. A deal survives when
// its season is in the window, its destination club plays in a top-5
// competition, and it is dated on or before the cutoff. Repeat deals between
// the same clubs for the same player inside one window keep the first row
// only, which collapses loan moves later made permanent.
func (s *TransferSelectService) Select(ctx context.Context) (TransferSelectResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferSelectService.Select")
	defer span.End()

	clubs, err := s.clubRepo.ListClubs(ctx)
	if err != nil {
		return TransferSelectResult{}, fmt.Errorf("list clubs: %w", err)
	}

	topFive := make(map[string]struct{}, len(s.cfg.Competitions))
	for _, id := range s.cfg.Competitions {
		topFive[id] = struct{}{}
	}
	relevantClubs := make(map[int64]struct{})
	for _, club := range clubs {
		if _, ok := topFive[club.DomesticCompetitionID]; ok {
			relevantClubs[club.ClubID] = struct{}{}
		}
	}

	seasons := make(map[string]struct{}, len(s.cfg.Seasons))
	for _, season := range s.cfg.Seasons {
		seasons[season] = struct{}{}
	}

	records, err := s.transferRepo.ListRecords(ctx)
	if err != nil {
		return TransferSelectResult{}, fmt.Errorf("list transfer records: %w", err)
	}

	result := TransferSelectResult{
		Report: dataset.BuildReport{Stage: "select-transfers", RowsIn: len(records)},
	}

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, ok := seasons[record.TransferSeason]; !ok {
			result.Report.Exclude("season_outside_window", record.TransferSeason, 1)
			continue
		}
		if _, ok := relevantClubs[record.ToClubID]; !ok {
			result.Report.Exclude("destination_not_top_five", record.ToClubName, 1)
			continue
		}
		if record.TransferDate.After(s.cfg.Cutoff) {
			result.Report.Exclude("after_cutoff", record.PlayerName, 1)
			continue
		}
		key := record.DedupKey()
		if _, ok := seen[key]; ok {
			result.Report.Exclude("repeat_window_deal", key, 1)
			continue
		}
		seen[key] = struct{}{}
		result.Selected = append(result.Selected, record)
	}
	result.Report.RowsOut = len(result.Selected)

	return result, nil
}
