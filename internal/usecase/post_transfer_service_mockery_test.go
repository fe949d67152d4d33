package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	matchlogmock "github.com/strikerlab/debutform/internal/mocks/domain/matchlog"
	transfermock "github.com/strikerlab/debutform/internal/mocks/domain/transfer"
	"github.com/stretchr/testify/mock"
)

func TestPostTransferService_Extract_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-post-1")
	transferRepo := transfermock.NewRepository(t)
	matchLogRepo := matchlogmock.NewRepository(t)

	service := NewPostTransferService(transferRepo, matchLogRepo)
	transferDate := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	mapped := []transfer.Mapped{
		{
			Record: transfer.Record{
				PlayerID:       7,
				PlayerName:     "Joao Pedro",
				TransferDate:   transferDate,
				TransferSeason: "23/24",
				FromClubID:     40,
				ToClubID:       20,
				FromClubName:   "Watford",
				ToClubName:     "Brighton",
			},
			PlayerNameMapped:   "João Pedro",
			FromClubNameMapped: "Watford",
			ToClubNameMapped:   "Brighton",
		},
	}
	logs := []matchlog.Entry{
		{
			Date:       time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC),
			Team:       "Watford",
			Opponent:   "Stoke City",
			PlayerName: "João Pedro",
			PlayerID:   "jp-7",
		},
		{
			Date:       time.Date(2023, 8, 12, 0, 0, 0, 0, time.UTC),
			Team:       "Brighton",
			Opponent:   "Luton Town",
			PlayerName: "João Pedro",
			PlayerID:   "jp-7",
		},
		{
			Date:       time.Date(2023, 8, 19, 0, 0, 0, 0, time.UTC),
			Team:       "Brighton",
			Opponent:   "Wolves",
			PlayerName: "João Pedro",
			PlayerID:   "jp-7",
		},
	}

	transferRepo.
		On("ListMapped", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(mapped, nil).
		Once()
	matchLogRepo.
		On("ListEntries", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(logs, nil).
		Once()
	matchLogRepo.
		On("ReplacePostTransfer",
			mock.MatchedBy(func(v context.Context) bool { return v == ctx }),
			mock.MatchedBy(func(entries []matchlog.PostTransferEntry) bool { return len(entries) == 2 }),
		).
		Return(nil).
		Once()

	got, err := service.Extract(ctx, PostTransferInput{MatchCount: 2, MaxWorkers: 1})
	if err != nil {
		t.Fatalf("extract post-transfer matches: %v", err)
	}
	if got.TransfersIn != 1 || got.TransfersWithMatches != 1 {
		t.Fatalf("unexpected transfer totals: in=%d with_matches=%d", got.TransfersIn, got.TransfersWithMatches)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("unexpected entry count: got=%d want=2", len(got.Entries))
	}
	if got.Entries[0].MatchNumberAfterTransfer != 1 || got.Entries[1].MatchNumberAfterTransfer != 2 {
		t.Fatalf("unexpected match numbering: %d, %d",
			got.Entries[0].MatchNumberAfterTransfer, got.Entries[1].MatchNumberAfterTransfer)
	}
	if got.Entries[0].TransferID != "Joao Pedro_Watford_Brighton_2023-07-01" {
		t.Fatalf("unexpected transfer id: %s", got.Entries[0].TransferID)
	}
	if got.Entries[0].DaysSinceTransfer != 42 {
		t.Fatalf("unexpected days since transfer: %d", got.Entries[0].DaysSinceTransfer)
	}
}

func TestPostTransferService_Extract_EntryListFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transferRepo := transfermock.NewRepository(t)
	matchLogRepo := matchlogmock.NewRepository(t)

	service := NewPostTransferService(transferRepo, matchLogRepo)
	repoErr := errors.New("match log store offline")

	transferRepo.
		On("ListMapped", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return([]transfer.Mapped{}, nil).
		Once()
	matchLogRepo.
		On("ListEntries", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return(nil, repoErr).
		Once()

	_, err := service.Extract(ctx, PostTransferInput{})
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
