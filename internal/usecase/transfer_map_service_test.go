package usecase

import (
	"context"
	"testing"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/transfer"
)

func TestTransferMapService_Map_JoinsBothNamingWorlds(t *testing.T) {
	t.Parallel()

	transferRepo := &stubTransferRepository{}
	clubRepo := &stubClubRepository{
		clubs: []transfer.Club{
			{ClubID: 10, Name: "Feyenoord Rotterdam", DomesticCompetitionID: "NL1"},
			{ClubID: 20, Name: "Brighton & Hove Albion", DomesticCompetitionID: "GB1"},
		},
	}
	mapping := clubname.Mapping{
		Clubs:   map[string]string{"Brighton & Hove Albion": "Brighton"},
		Players: map[string]string{"Kaoru Mitoma": "Kaoru Mitoma"},
	}

	service := NewTransferMapService(transferRepo, clubRepo)

	selected := []transfer.Record{selectTestRecord(1, "Kaoru Mitoma", "21/22", 10, 20, "2021-08-01")}
	selected[0].FromClubName = "Feyenoord Rotterdam"
	selected[0].ToClubName = "Brighton & Hove Albion"

	got, err := service.Map(context.Background(), selected, mapping)
	if err != nil {
		t.Fatalf("map transfers: %v", err)
	}

	if len(got.Mapped) != 1 {
		t.Fatalf("unexpected mapped count: got=%d want=1", len(got.Mapped))
	}
	row := got.Mapped[0]
	if row.ToClubNameMapped != "Brighton" {
		t.Fatalf("unexpected mapped to-club: %q", row.ToClubNameMapped)
	}
	if row.FromClubNameMapped != "Feyenoord Rotterdam" {
		t.Fatalf("expected identity fallback for from-club, got %q", row.FromClubNameMapped)
	}
	if row.FromCompetitionID != "NL1" || row.ToCompetitionID != "GB1" {
		t.Fatalf("unexpected competition ids: from=%q to=%q", row.FromCompetitionID, row.ToCompetitionID)
	}
	if got.UnresolvedFromCompetition != 0 || got.UnresolvedToCompetition != 0 {
		t.Fatalf("unexpected unresolved counts: from=%d to=%d", got.UnresolvedFromCompetition, got.UnresolvedToCompetition)
	}
	if len(transferRepo.mapped) != 1 {
		t.Fatalf("expected mapped rows to be persisted, got %d", len(transferRepo.mapped))
	}
}

func TestTransferMapService_Map_FallbackFileFillsCompetitionHoles(t *testing.T) {
	t.Parallel()

	transferRepo := &stubTransferRepository{}
	clubRepo := &stubClubRepository{}
	mapping := clubname.Mapping{
		ClubCompetitionIDs: map[string]string{"Western Sydney Wanderers": "AUS1"},
	}

	service := NewTransferMapService(transferRepo, clubRepo)

	selected := []transfer.Record{selectTestRecord(1, "Milos Ninkovic", "20/21", 77, 88, "2020-09-01")}
	selected[0].FromClubName = "Western Sydney Wanderers"
	selected[0].ToClubName = "Unknown FC"

	got, err := service.Map(context.Background(), selected, mapping)
	if err != nil {
		t.Fatalf("map transfers: %v", err)
	}

	if got.Mapped[0].FromCompetitionID != "AUS1" {
		t.Fatalf("expected fallback competition id, got %q", got.Mapped[0].FromCompetitionID)
	}
	if got.Mapped[0].ToCompetitionID != "" {
		t.Fatalf("expected unresolved to-competition, got %q", got.Mapped[0].ToCompetitionID)
	}
	if got.UnresolvedFromCompetition != 0 || got.UnresolvedToCompetition != 1 {
		t.Fatalf("unexpected unresolved counts: from=%d to=%d", got.UnresolvedFromCompetition, got.UnresolvedToCompetition)
	}
}

func TestTransferMapService_Map_TransferIDUsesMappedClubNames(t *testing.T) {
	t.Parallel()

	transferRepo := &stubTransferRepository{}
	clubRepo := &stubClubRepository{}
	mapping := clubname.Mapping{
		Clubs: map[string]string{
			"Feyenoord Rotterdam":    "Feyenoord",
			"Brighton & Hove Albion": "Brighton",
		},
	}

	service := NewTransferMapService(transferRepo, clubRepo)

	selected := []transfer.Record{selectTestRecord(9, "Kaoru Mitoma", "21/22", 10, 20, "2021-08-10")}
	selected[0].FromClubName = "Feyenoord Rotterdam"
	selected[0].ToClubName = "Brighton & Hove Albion"

	got, err := service.Map(context.Background(), selected, mapping)
	if err != nil {
		t.Fatalf("map transfers: %v", err)
	}

	want := "Kaoru Mitoma_Feyenoord_Brighton_2021-08-10"
	if id := got.Mapped[0].TransferID(); id != want {
		t.Fatalf("unexpected transfer id: got=%q want=%q", id, want)
	}
}
