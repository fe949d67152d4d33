package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	"github.com/strikerlab/debutform/internal/usecase"
)

// Artifact names, stable across runs so downstream analysis can point at
// fixed paths.
const (
	SelectedTransfersFile = "selected_transfers.csv"
	MappedTransfersFile   = "mapped_transfers.csv"
	PostTransferLogsFile  = "post_transfer_logs.csv"
	TrainLogsFile         = "train_logs.csv"
	TestLogsFile          = "test_logs.csv"
	ScrapeTargetsFile     = "scrape_targets.csv"
	TeamNamesFile         = "team_names.csv"
	UniqueClubsFile       = "unique_clubs.csv"
	EloHistoryDir         = "elos"
	FormattedElosFile     = "formatted_elos.csv"
	EloAttachmentsFile    = "elo_attachments.csv"
	TrainSamplesFile      = "train_samples.csv"
	TestSamplesFile       = "test_samples.csv"
	RunManifestDir        = "runs"
)

// Store lands pipeline artifacts under one output directory. Run
// manifests get a file per run; everything else is overwritten in place.
type Store struct {
	dir    string
	eloDir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = filepath.Join("data", "output")
	}
	return &Store{dir: dir}
}

// SetEloDir points rating history exports at their own directory. Empty
// keeps the elos folder under the output dir.
func (s *Store) SetEloDir(dir string) {
	s.eloDir = strings.TrimSpace(dir)
}

// Dir returns the output directory artifacts land in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) WriteSelectedTransfers(_ context.Context, records []transfer.Record) (string, error) {
	path := s.path(SelectedTransfersFile)
	return path, WriteSelectedTransfers(path, records)
}

func (s *Store) WriteMappedTransfers(_ context.Context, transfers []transfer.Mapped) (string, error) {
	path := s.path(MappedTransfersFile)
	return path, WriteMappedTransfers(path, transfers)
}

func (s *Store) WritePostTransferLogs(_ context.Context, entries []matchlog.PostTransferEntry) (string, error) {
	path := s.path(PostTransferLogsFile)
	return path, WritePostTransferLogs(path, entries)
}

func (s *Store) WriteTrainLogs(_ context.Context, entries []matchlog.Entry) (string, error) {
	path := s.path(TrainLogsFile)
	return path, WriteTrainLogs(path, entries)
}

func (s *Store) WriteTestLogs(_ context.Context, rows []usecase.TestSetRow) (string, error) {
	converted := make([]TestRow, 0, len(rows))
	for _, row := range rows {
		out := TestRow{
			Entry:                    row.Entry,
			Role:                     row.Role,
			TransferID:               row.TransferID,
			MatchNumberAfterTransfer: row.MatchNumberAfterTransfer,
			DaysSinceTransfer:        row.DaysSinceTransfer,
		}
		if !row.TransferDate.IsZero() {
			out.TransferDate = formatDate(row.TransferDate)
		}
		converted = append(converted, out)
	}

	path := s.path(TestLogsFile)
	return path, WriteTestLogs(path, converted)
}

func (s *Store) WriteScrapeTargets(_ context.Context, targets []transfer.ScrapeTarget) (string, error) {
	path := s.path(ScrapeTargetsFile)
	return path, WriteScrapeTargets(path, targets)
}

func (s *Store) WriteTeamNames(_ context.Context, teams []clubname.TeamName) (string, error) {
	path := s.path(TeamNamesFile)
	return path, WriteTeamNames(path, teams)
}

func (s *Store) WriteUniqueClubs(_ context.Context, clubs []clubname.UniqueClub) (string, error) {
	path := s.path(UniqueClubsFile)
	return path, WriteUniqueClubs(path, clubs)
}

// WriteEloHistories lands one file per fetched club under the history
// directory and returns the directory itself as the artifact.
func (s *Store) WriteEloHistories(_ context.Context, histories []usecase.EloTeamHistory) (string, error) {
	dir := s.eloDir
	if dir == "" {
		dir = s.path(EloHistoryDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", crerr.Wrap(err, "create rating history dir")
	}

	for _, history := range histories {
		name := EloHistoryFileName(history.NormalizedTeam, history.FetchedAt)
		if err := WriteEloHistory(filepath.Join(dir, name), history.Ratings); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func (s *Store) WriteFormattedElos(_ context.Context, ratings []clubelo.TeamRating) (string, error) {
	path := s.path(FormattedElosFile)
	return path, WriteFormattedElos(path, ratings)
}

func (s *Store) WriteEloAttachments(_ context.Context, attachments []clubelo.Attachment) (string, error) {
	path := s.path(EloAttachmentsFile)
	return path, WriteAttachments(path, attachments)
}

func (s *Store) WriteTrainSamples(_ context.Context, samples []dataset.Sample) (string, error) {
	path := s.path(TrainSamplesFile)
	return path, WriteSamples(path, samples)
}

func (s *Store) WriteTestSamples(_ context.Context, samples []dataset.Sample) (string, error) {
	path := s.path(TestSamplesFile)
	return path, WriteSamples(path, samples)
}

func (s *Store) WriteRunManifest(_ context.Context, run dataset.Run) (string, error) {
	path := s.path(filepath.Join(RunManifestDir, run.ID+".json"))
	return path, WriteRunManifest(path, run)
}
