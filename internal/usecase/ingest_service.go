package usecase

import (
	"context"
	"fmt"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	"github.com/strikerlab/debutform/internal/platform/logging"
)

// TransferSnapshot is the decoded transfer source file. Warnings counts
// rows the decoder flagged, whether dropped or kept with null cells.
type TransferSnapshot struct {
	Name     string
	Checksum string
	Records  []transfer.Record
	Warnings int
}

// ClubSnapshot is the decoded club reference file of the transfer source.
type ClubSnapshot struct {
	Name     string
	Checksum string
	Clubs    []transfer.Club
	Warnings int
}

// MatchLogFile describes one decoded per-league-season log file.
type MatchLogFile struct {
	Name     string
	Season   string
	League   string
	Checksum string
	Decoded  int
	Dropped  int
}

// MatchLogSnapshot is the union of all decoded log files, with the
// decoder's drop counts aggregated across them.
type MatchLogSnapshot struct {
	Entries       []matchlog.Entry
	Files         []MatchLogFile
	RowsTotal     int
	HeaderRepeats int
	MissingDates  int
	InvalidRows   int
}

// SnapshotLoader reads the raw source snapshots a run starts from.
type SnapshotLoader interface {
	Transfers(ctx context.Context) (TransferSnapshot, error)
	Clubs(ctx context.Context) (ClubSnapshot, error)
	MatchLogs(ctx context.Context) (MatchLogSnapshot, error)
	Mapping(ctx context.Context) (clubname.Mapping, error)
}

type IngestResult struct {
	TransferRows     int
	ClubRows         int
	MatchLogRows     int
	MatchLogFiles    int
	TransferWarnings int
	ClubWarnings     int
	DroppedLogRows   int
	Checksums        map[string]string
}

// IngestService loads the source snapshots and persists them as the
// pipeline's working tables. Everything downstream reads from the
// repositories, never from the raw files.
type IngestService struct {
	loader       SnapshotLoader
	transferRepo transfer.Repository
	clubRepo     transfer.ClubRepository
	matchLogRepo matchlog.Repository
	logger       *logging.Logger
}

func NewIngestService(
	loader SnapshotLoader,
	transferRepo transfer.Repository,
	clubRepo transfer.ClubRepository,
	matchLogRepo matchlog.Repository,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{
		loader:       loader,
		transferRepo: transferRepo,
		clubRepo:     clubRepo,
		matchLogRepo: matchLogRepo,
		logger:       logger,
	}
}

func (s *IngestService) Ingest(ctx context.Context) (IngestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Ingest")
	defer span.End()

	if s.loader == nil {
		return IngestResult{}, fmt.Errorf("%w: snapshot loader is not configured", ErrDependencyUnavailable)
	}

	transfers, err := s.loader.Transfers(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load transfer snapshot: %w", err)
	}
	if len(transfers.Records) == 0 {
		return IngestResult{}, fmt.Errorf("%w: transfer snapshot has no usable rows", ErrInvalidInput)
	}
	clubs, err := s.loader.Clubs(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load club snapshot: %w", err)
	}
	if len(clubs.Clubs) == 0 {
		return IngestResult{}, fmt.Errorf("%w: club snapshot has no usable rows", ErrInvalidInput)
	}
	logs, err := s.loader.MatchLogs(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load match log snapshot: %w", err)
	}
	if len(logs.Entries) == 0 {
		return IngestResult{}, fmt.Errorf("%w: match log snapshot has no usable rows", ErrInvalidInput)
	}

	if err := s.transferRepo.UpsertRecords(ctx, transfers.Records); err != nil {
		return IngestResult{}, fmt.Errorf("store transfer records: %w", err)
	}
	if err := s.clubRepo.UpsertClubs(ctx, clubs.Clubs); err != nil {
		return IngestResult{}, fmt.Errorf("store clubs: %w", err)
	}
	if err := s.matchLogRepo.UpsertEntries(ctx, logs.Entries); err != nil {
		return IngestResult{}, fmt.Errorf("store match log entries: %w", err)
	}

	result := IngestResult{
		TransferRows:     len(transfers.Records),
		ClubRows:         len(clubs.Clubs),
		MatchLogRows:     len(logs.Entries),
		MatchLogFiles:    len(logs.Files),
		TransferWarnings: transfers.Warnings,
		ClubWarnings:     clubs.Warnings,
		DroppedLogRows:   logs.HeaderRepeats + logs.MissingDates + logs.InvalidRows,
		Checksums:        make(map[string]string, len(logs.Files)+2),
	}
	if transfers.Name != "" {
		result.Checksums[transfers.Name] = transfers.Checksum
	}
	if clubs.Name != "" {
		result.Checksums[clubs.Name] = clubs.Checksum
	}
	for _, file := range logs.Files {
		result.Checksums[file.Name] = file.Checksum
	}

	s.logger.InfoContext(ctx, "snapshot ingest finished",
		"transfer_rows", result.TransferRows,
		"club_rows", result.ClubRows,
		"match_log_rows", result.MatchLogRows,
		"match_log_files", result.MatchLogFiles,
		"dropped_log_rows", result.DroppedLogRows,
	)
	return result, nil
}
