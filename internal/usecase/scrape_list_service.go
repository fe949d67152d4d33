package usecase

import (
	"context"
	"fmt"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

type ScrapeListResult struct {
	Targets []transfer.ScrapeTarget
	Report  dataset.BuildReport
}

// ScrapeListService builds the work list for the out-of-league history
// scraper: one row per transfer that produced post-transfer matches, with
// enough naming context to locate the player's earlier logs. The scraping
// itself happens elsewhere.
type ScrapeListService struct {
	transferRepo transfer.Repository
	matchLogRepo matchlog.Repository
}

func NewScrapeListService(transferRepo transfer.Repository, matchLogRepo matchlog.Repository) *ScrapeListService {
	return &ScrapeListService{
		transferRepo: transferRepo,
		matchLogRepo: matchLogRepo,
	}
}

// Build resolves each observed transfer back to its mapped record and joins
// competition ids to league names. Competition id holes left by the club
// join fall back to the club-name file. A row whose from-side competition
// cannot be resolved is useless to the scraper and is dropped with a count.
func (s *ScrapeListService) Build(ctx context.Context, mapping clubname.Mapping) (ScrapeListResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeListService.Build")
	defer span.End()

	post, err := s.matchLogRepo.ListPostTransfer(ctx)
	if err != nil {
		return ScrapeListResult{}, fmt.Errorf("list post-transfer entries: %w", err)
	}
	mapped, err := s.transferRepo.ListMapped(ctx)
	if err != nil {
		return ScrapeListResult{}, fmt.Errorf("list mapped transfers: %w", err)
	}

	mappedByID := make(map[string]transfer.Mapped, len(mapped))
	for _, row := range mapped {
		mappedByID[row.TransferID()] = row
	}

	var transferIDs []string
	seen := make(map[string]struct{})
	for _, row := range post {
		if _, ok := seen[row.TransferID]; ok {
			continue
		}
		seen[row.TransferID] = struct{}{}
		transferIDs = append(transferIDs, row.TransferID)
	}

	result := ScrapeListResult{
		Report: dataset.BuildReport{Stage: "scrape-list", RowsIn: len(transferIDs)},
	}
	for _, transferID := range transferIDs {
		row, ok := mappedByID[transferID]
		if !ok {
			result.Report.Exclude("transfer_missing_from_mapping", transferID, 1)
			continue
		}

		fromCompetition := resolveListedCompetition(row.FromCompetitionID, row.FromClubName, row.FromClubNameMapped, mapping)
		if fromCompetition == "" {
			result.Report.Exclude("from_competition_unresolved", transferID, 1)
			continue
		}
		toCompetition := resolveListedCompetition(row.ToCompetitionID, row.ToClubName, row.ToClubNameMapped, mapping)

		target := transfer.ScrapeTarget{
			TransferID:         transferID,
			PlayerID:           row.PlayerID,
			PlayerName:         row.PlayerName,
			PlayerNameMapped:   row.PlayerNameMapped,
			TransferDate:       row.TransferDate,
			FromClubName:       row.FromClubName,
			FromClubNameMapped: row.FromClubNameMapped,
			ToClubName:         row.ToClubName,
			ToClubNameMapped:   row.ToClubNameMapped,
			FromCompetitionID:  fromCompetition,
			ToCompetitionID:    toCompetition,
		}
		if league, ok := mapping.LeagueName(fromCompetition); ok {
			target.FromLeagueName = league
		}
		if league, ok := mapping.LeagueName(toCompetition); ok {
			target.ToLeagueName = league
		}
		result.Targets = append(result.Targets, target)
	}
	result.Report.RowsOut = len(result.Targets)

	return result, nil
}

func resolveListedCompetition(current, clubName, mappedName string, mapping clubname.Mapping) string {
	if current != "" {
		return current
	}
	if id, ok := mapping.CompetitionID(clubName); ok {
		return id
	}
	if id, ok := mapping.CompetitionID(mappedName); ok {
		return id
	}
	return ""
}
