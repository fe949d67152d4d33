package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	"github.com/strikerlab/debutform/internal/platform/logging"
)

func TestIngestService_PersistsAllSources(t *testing.T) {
	t.Parallel()

	loader := &stubSnapshotLoader{
		transfers: TransferSnapshot{
			Name:     "transfers.csv",
			Checksum: "aaa111",
			Records: []transfer.Record{
				selectTestRecord(9001, "Kaoru Mitoma", "21/22", 100, 200, "2021-08-10"),
			},
			Warnings: 2,
		},
		clubs: ClubSnapshot{
			Name:     "clubs.csv",
			Checksum: "bbb222",
			Clubs: []transfer.Club{
				{ClubID: 200, Name: "Brighton & Hove Albion", DomesticCompetitionID: "GB1"},
			},
		},
		logs: MatchLogSnapshot{
			Entries: []matchlog.Entry{
				logTestEntry("km1", "Kaoru Mitoma", "Brighton", "2021-08-14"),
			},
			Files: []MatchLogFile{
				{Name: "match_logs/PremierLeague_2021.csv", Checksum: "ccc333", Decoded: 1},
			},
			HeaderRepeats: 1,
			MissingDates:  2,
		},
	}
	transferRepo := &stubTransferRepository{}
	clubRepo := &stubClubRepository{}
	matchLogRepo := &stubMatchLogRepository{}

	service := NewIngestService(loader, transferRepo, clubRepo, matchLogRepo, logging.NewNop())
	result, err := service.Ingest(context.Background())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if result.TransferRows != 1 || result.ClubRows != 1 || result.MatchLogRows != 1 {
		t.Fatalf("row counts: got=%+v", result)
	}
	if result.TransferWarnings != 2 {
		t.Fatalf("transfer warnings: got=%d want=2", result.TransferWarnings)
	}
	if result.DroppedLogRows != 3 {
		t.Fatalf("dropped log rows: got=%d want=3", result.DroppedLogRows)
	}
	if len(result.Checksums) != 3 {
		t.Fatalf("checksums: got=%d want=3", len(result.Checksums))
	}
	if result.Checksums["transfers.csv"] != "aaa111" {
		t.Fatalf("transfer checksum: got=%s", result.Checksums["transfers.csv"])
	}

	if len(transferRepo.records) != 1 {
		t.Fatalf("stored transfer rows: got=%d want=1", len(transferRepo.records))
	}
	if len(clubRepo.clubs) != 1 {
		t.Fatalf("stored club rows: got=%d want=1", len(clubRepo.clubs))
	}
	if len(matchLogRepo.entries) != 1 {
		t.Fatalf("stored log rows: got=%d want=1", len(matchLogRepo.entries))
	}
}

func TestIngestService_EmptyTransferSnapshotFails(t *testing.T) {
	t.Parallel()

	loader := &stubSnapshotLoader{
		clubs: ClubSnapshot{Clubs: []transfer.Club{{ClubID: 1, Name: "FC", DomesticCompetitionID: "GB1"}}},
	}
	service := NewIngestService(loader, &stubTransferRepository{}, &stubClubRepository{}, &stubMatchLogRepository{}, logging.NewNop())

	_, err := service.Ingest(context.Background())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestIngestService_LoaderErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("source unreachable")
	loader := &stubSnapshotLoader{transfersErr: wantErr}
	service := NewIngestService(loader, &stubTransferRepository{}, &stubClubRepository{}, &stubMatchLogRepository{}, logging.NewNop())

	_, err := service.Ingest(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error to propagate, got %v", err)
	}
}

type stubSnapshotLoader struct {
	transfers    TransferSnapshot
	clubs        ClubSnapshot
	logs         MatchLogSnapshot
	mapping      clubname.Mapping
	transfersErr error
	logsErr      error
}

func (l *stubSnapshotLoader) Transfers(_ context.Context) (TransferSnapshot, error) {
	if l.transfersErr != nil {
		return TransferSnapshot{}, l.transfersErr
	}
	return l.transfers, nil
}

func (l *stubSnapshotLoader) Clubs(_ context.Context) (ClubSnapshot, error) {
	return l.clubs, nil
}

func (l *stubSnapshotLoader) MatchLogs(_ context.Context) (MatchLogSnapshot, error) {
	if l.logsErr != nil {
		return MatchLogSnapshot{}, l.logsErr
	}
	return l.logs, nil
}

func (l *stubSnapshotLoader) Mapping(_ context.Context) (clubname.Mapping, error) {
	return l.mapping, nil
}
