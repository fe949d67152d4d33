package usecase

import (
	"context"
	"fmt"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

type TransferMapResult struct {
	Mapped []transfer.Mapped
	Report dataset.BuildReport

	// Competition ids the club join and the fallback file both missed.
	UnresolvedFromCompetition int
	UnresolvedToCompetition   int
}

// TransferMapService joins selected transfers to the stats source's naming
// world. Match logs are keyed by the stats source's spellings, so every
// later stage depends on this join.
type TransferMapService struct {
	transferRepo transfer.Repository
	clubRepo     transfer.ClubRepository
}

func NewTransferMapService(transferRepo transfer.Repository, clubRepo transfer.ClubRepository) *TransferMapService {
	return &TransferMapService{
		transferRepo: transferRepo,
		clubRepo:     clubRepo,
	}
}

// Map translates player and club names through the mapping files, falling
// back to the input spelling when a name has no entry. Competition ids come
// from the clubs snapshot by club id, with the club-name fallback file
// covering clubs the snapshot does not know. The mapped set replaces any
// previous run's rows.
func (s *TransferMapService) Map(ctx context.Context, selected []transfer.Record, mapping clubname.Mapping) (TransferMapResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransferMapService.Map")
	defer span.End()

	clubs, err := s.clubRepo.ListClubs(ctx)
	if err != nil {
		return TransferMapResult{}, fmt.Errorf("list clubs: %w", err)
	}
	competitionByClubID := make(map[int64]string, len(clubs))
	for _, club := range clubs {
		competitionByClubID[club.ClubID] = club.DomesticCompetitionID
	}

	result := TransferMapResult{
		Mapped: make([]transfer.Mapped, 0, len(selected)),
		Report: dataset.BuildReport{Stage: "map-transfers", RowsIn: len(selected)},
	}

	for _, record := range selected {
		mapped := transfer.Mapped{
			Record:             record,
			PlayerNameMapped:   mapping.PlayerName(record.PlayerName),
			FromClubNameMapped: mapping.ClubName(record.FromClubName),
			ToClubNameMapped:   mapping.ClubName(record.ToClubName),
		}

		var fromOK, toOK bool
		mapped.FromCompetitionID, fromOK = s.resolveCompetition(record.FromClubID, record.FromClubName, mapped.FromClubNameMapped, competitionByClubID, mapping)
		mapped.ToCompetitionID, toOK = s.resolveCompetition(record.ToClubID, record.ToClubName, mapped.ToClubNameMapped, competitionByClubID, mapping)
		if !fromOK {
			result.UnresolvedFromCompetition++
		}
		if !toOK {
			result.UnresolvedToCompetition++
		}

		result.Mapped = append(result.Mapped, mapped)
	}
	result.Report.RowsOut = len(result.Mapped)

	if err := s.transferRepo.ReplaceMapped(ctx, result.Mapped); err != nil {
		return TransferMapResult{}, fmt.Errorf("replace mapped transfers: %w", err)
	}

	return result, nil
}

func (s *TransferMapService) resolveCompetition(
	clubID int64,
	clubName, mappedName string,
	byClubID map[int64]string,
	mapping clubname.Mapping,
) (string, bool) {
	if id, ok := byClubID[clubID]; ok && id != "" {
		return id, true
	}
	if id, ok := mapping.CompetitionID(clubName); ok {
		return id, true
	}
	if id, ok := mapping.CompetitionID(mappedName); ok {
		return id, true
	}
	return "", false
}
