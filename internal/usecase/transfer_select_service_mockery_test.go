package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/domain/transfer"
	transfermock "github.com/strikerlab/debutform/internal/mocks/domain/transfer"
	"github.com/stretchr/testify/mock"
)

func TestTransferSelectService_Select_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-select-1")
	transferRepo := transfermock.NewRepository(t)
	clubRepo := transfermock.NewClubRepository(t)

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})
	clubs := []transfer.Club{
		{ClubID: 20, Name: "Brighton", DomesticCompetitionID: "GB1"},
		{ClubID: 30, Name: "Feyenoord", DomesticCompetitionID: "NL1"},
	}
	records := []transfer.Record{
		{
			PlayerID:       1,
			PlayerName:     "Kaoru Mitoma",
			TransferDate:   time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC),
			TransferSeason: "21/22",
			FromClubID:     10,
			ToClubID:       20,
			FromClubName:   "Kawasaki Frontale",
			ToClubName:     "Brighton",
		},
		{
			PlayerID:       2,
			PlayerName:     "Mats Wieffer",
			TransferDate:   time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC),
			TransferSeason: "22/23",
			FromClubID:     10,
			ToClubID:       30,
			FromClubName:   "Excelsior",
			ToClubName:     "Feyenoord",
		},
	}

	clubRepo.
		On("ListClubs", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(clubs, nil).
		Once()
	transferRepo.
		On("ListRecords", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(records, nil).
		Once()

	got, err := service.Select(ctx)
	if err != nil {
		t.Fatalf("select transfers: %v", err)
	}
	if len(got.Selected) != 1 {
		t.Fatalf("unexpected selected count: got=%d want=1", len(got.Selected))
	}
	if got.Selected[0].PlayerName != "Kaoru Mitoma" {
		t.Fatalf("unexpected selected player: %s", got.Selected[0].PlayerName)
	}
	if got.Report.RowsIn != 2 || got.Report.RowsOut != 1 {
		t.Fatalf("unexpected report totals: in=%d out=%d", got.Report.RowsIn, got.Report.RowsOut)
	}
}

func TestTransferSelectService_Select_RecordListFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transferRepo := transfermock.NewRepository(t)
	clubRepo := transfermock.NewClubRepository(t)

	service := NewTransferSelectService(transferRepo, clubRepo, TransferSelectConfig{})
	repoErr := errors.New("transfer store offline")

	clubRepo.
		On("ListClubs", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return([]transfer.Club{}, nil).
		Once()
	transferRepo.
		On("ListRecords", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(nil, repoErr).
		Once()

	_, err := service.Select(ctx)
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
