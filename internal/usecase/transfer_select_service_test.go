package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/domain/transfer"
)

func TestTransferSelectService_Select_FiltersToRelevantDeals(t *testing.T) {
	t.Parallel()

	transferRepo := &stubTransferRepository{
		records: []transfer.Record{
			selectTestRecord(1, "Kaoru Mitoma", "21/22", 10, 20, "2021-08-01"),
			selectTestRecord(2, "Joao Pedro", "19/20", 10, 20, "2019-08-01"),
			selectTestRecord(3, "Mats Wieffer", "22/23", 10, 30, "2022-07-01"),
			selectTestRecord(4, "Benjamin Sesko", "24/25", 10, 20, "2025-06-15"),
			selectTestRecord(5, "Dango Ouattara", "23/24", 10, 20, "2023-08-20"),
		},
	}
	clubRepo := &stubClubRepository{
		clubs: []transfer.Club{
			{ClubID: 20, Name: "Brighton", DomesticCompetitionID: "GB1"},
			{ClubID: 30, Name: "Feyenoord", DomesticCompetitionID: "NL1"},
		},
	}

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})

	got, err := service.Select(context.Background())
	if err != nil {
		t.Fatalf("select transfers: %v", err)
	}

	if len(got.Selected) != 2 {
		t.Fatalf("unexpected selected count: got=%d want=2", len(got.Selected))
	}
	if got.Selected[0].PlayerName != "Kaoru Mitoma" || got.Selected[1].PlayerName != "Dango Ouattara" {
		t.Fatalf("unexpected selection order: %q, %q", got.Selected[0].PlayerName, got.Selected[1].PlayerName)
	}
	if got.Report.RowsIn != 5 || got.Report.RowsOut != 2 {
		t.Fatalf("unexpected report totals: in=%d out=%d", got.Report.RowsIn, got.Report.RowsOut)
	}
	if got.Report.ExcludedTotal() != 3 {
		t.Fatalf("unexpected exclusion total: %d", got.Report.ExcludedTotal())
	}
}

func TestTransferSelectService_Select_CutoffIsInclusive(t *testing.T) {
	t.Parallel()

	transferRepo := &stubTransferRepository{
		records: []transfer.Record{
			selectTestRecord(1, "On Cutoff", "24/25", 10, 20, "2025-04-01"),
			selectTestRecord(2, "Past Cutoff", "24/25", 11, 20, "2025-04-02"),
		},
	}
	clubRepo := &stubClubRepository{
		clubs: []transfer.Club{{ClubID: 20, Name: "Brentford", DomesticCompetitionID: "GB1"}},
	}

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})

	got, err := service.Select(context.Background())
	if err != nil {
		t.Fatalf("select transfers: %v", err)
	}
	if len(got.Selected) != 1 {
		t.Fatalf("unexpected selected count: got=%d want=1", len(got.Selected))
	}
	if got.Selected[0].PlayerName != "On Cutoff" {
		t.Fatalf("expected the cutoff-day deal to survive, got %q", got.Selected[0].PlayerName)
	}
}

func TestTransferSelectService_Select_RepeatWindowDealKeepsFirstRow(t *testing.T) {
	t.Parallel()

	loan := selectTestRecord(1, "Alvaro Morata", "22/23", 10, 20, "2022-07-15")
	buy := selectTestRecord(2, "Alvaro Morata", "22/23", 10, 20, "2023-01-10")
	transferRepo := &stubTransferRepository{records: []transfer.Record{loan, buy}}
	clubRepo := &stubClubRepository{
		clubs: []transfer.Club{{ClubID: 20, Name: "Atletico Madrid", DomesticCompetitionID: "ES1"}},
	}

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})

	got, err := service.Select(context.Background())
	if err != nil {
		t.Fatalf("select transfers: %v", err)
	}
	if len(got.Selected) != 1 {
		t.Fatalf("unexpected selected count: got=%d want=1", len(got.Selected))
	}
	if !got.Selected[0].TransferDate.Equal(loan.TransferDate) {
		t.Fatalf("expected the earlier deal to survive, got date %s", got.Selected[0].TransferDate)
	}
	if got.Report.Exclusions[0].Reason != "repeat_window_deal" {
		t.Fatalf("unexpected exclusion reason: %s", got.Report.Exclusions[0].Reason)
	}
}

func TestTransferSelectService_Select_RepositoryErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("transfers table gone")
	transferRepo := &stubTransferRepository{listRecordsErr: wantErr}
	clubRepo := &stubClubRepository{}

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})

	_, err := service.Select(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected repo error to propagate, got %v", err)
	}
}

func selectTestRecord(playerID int64, name, season string, fromClub, toClub int64, date string) transfer.Record {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return transfer.Record{
		PlayerID:       playerID,
		PlayerName:     name,
		TransferDate:   parsed,
		TransferSeason: season,
		FromClubID:     fromClub,
		ToClubID:       toClub,
		FromClubName:   "From FC",
		ToClubName:     "To FC",
	}
}

type stubTransferRepository struct {
	records        []transfer.Record
	mapped         []transfer.Mapped
	listRecordsErr error
	listMappedErr  error
}

func (s *stubTransferRepository) UpsertRecords(_ context.Context, records []transfer.Record) error {
	s.records = append(s.records, records...)
	return nil
}

func (s *stubTransferRepository) ListRecords(_ context.Context) ([]transfer.Record, error) {
	if s.listRecordsErr != nil {
		return nil, s.listRecordsErr
	}
	return s.records, nil
}

func (s *stubTransferRepository) ReplaceMapped(_ context.Context, transfers []transfer.Mapped) error {
	s.mapped = append([]transfer.Mapped(nil), transfers...)
	return nil
}

func (s *stubTransferRepository) ListMapped(_ context.Context) ([]transfer.Mapped, error) {
	if s.listMappedErr != nil {
		return nil, s.listMappedErr
	}
	return s.mapped, nil
}

type stubClubRepository struct {
	clubs []transfer.Club
}

func (s *stubClubRepository) UpsertClubs(_ context.Context, clubs []transfer.Club) error {
	s.clubs = append(s.clubs, clubs...)
	return nil
}

func (s *stubClubRepository) ListClubs(_ context.Context) ([]transfer.Club, error) {
	return s.clubs, nil
}
