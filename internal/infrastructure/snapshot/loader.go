package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/strikerlab/debutform/internal/usecase"
)

// SourceFetcher downloads one snapshot file by relative name from the
// remote source.
type SourceFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

type LoaderConfig struct {
	Dir          string
	TransferFile string
	ClubFile     string
	MatchLogDir  string
	MappingDir   string
}

// Loader reads source snapshots from a local directory, falling back to
// the remote fetcher for single files that are absent locally. Match log
// files need a directory listing, so they must be present on disk.
type Loader struct {
	cfg     LoaderConfig
	decoder *Decoder
	fetcher SourceFetcher
	logger  *logging.Logger
}

func NewLoader(cfg LoaderConfig, fetcher SourceFetcher, logger *logging.Logger) *Loader {
	if cfg.TransferFile == "" {
		cfg.TransferFile = "transfers.csv"
	}
	if cfg.ClubFile == "" {
		cfg.ClubFile = "clubs.csv"
	}
	if cfg.MatchLogDir == "" {
		cfg.MatchLogDir = "match_logs"
	}
	if cfg.MappingDir == "" {
		cfg.MappingDir = "mappings"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{cfg: cfg, decoder: NewDecoder(), fetcher: fetcher, logger: logger}
}

func (l *Loader) Transfers(ctx context.Context) (usecase.TransferSnapshot, error) {
	body, checksum, err := l.sourceBytes(ctx, l.cfg.TransferFile)
	if err != nil {
		return usecase.TransferSnapshot{}, err
	}
	records, warnings, err := l.decoder.Transfers(ctx, bytes.NewReader(body))
	if err != nil {
		return usecase.TransferSnapshot{}, crerr.Wrapf(err, "decode %s", l.cfg.TransferFile)
	}
	l.logWarnings(ctx, l.cfg.TransferFile, warnings)

	return usecase.TransferSnapshot{
		Name:     l.cfg.TransferFile,
		Checksum: checksum,
		Records:  records,
		Warnings: len(warnings),
	}, nil
}

func (l *Loader) Clubs(ctx context.Context) (usecase.ClubSnapshot, error) {
	body, checksum, err := l.sourceBytes(ctx, l.cfg.ClubFile)
	if err != nil {
		return usecase.ClubSnapshot{}, err
	}
	clubs, warnings, err := l.decoder.Clubs(ctx, bytes.NewReader(body))
	if err != nil {
		return usecase.ClubSnapshot{}, crerr.Wrapf(err, "decode %s", l.cfg.ClubFile)
	}
	l.logWarnings(ctx, l.cfg.ClubFile, warnings)

	return usecase.ClubSnapshot{
		Name:     l.cfg.ClubFile,
		Checksum: checksum,
		Clubs:    clubs,
		Warnings: len(warnings),
	}, nil
}

func (l *Loader) MatchLogs(ctx context.Context) (usecase.MatchLogSnapshot, error) {
	dir := filepath.Join(l.cfg.Dir, l.cfg.MatchLogDir)
	listing, err := os.ReadDir(dir)
	if err != nil {
		return usecase.MatchLogSnapshot{}, crerr.Wrapf(err, "list match log dir %s", dir)
	}

	var snapshot usecase.MatchLogSnapshot
	for _, item := range listing {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return usecase.MatchLogSnapshot{}, err
		}

		path := filepath.Join(dir, item.Name())
		relName := l.cfg.MatchLogDir + "/" + item.Name()
		body, err := os.ReadFile(path)
		if err != nil {
			return usecase.MatchLogSnapshot{}, crerr.Wrapf(err, "read match log %s", relName)
		}

		hint := matchLogFileHint(item.Name())
		entries, stats, warnings, err := l.decoder.MatchLogs(ctx, bytes.NewReader(body), hint)
		if err != nil {
			return usecase.MatchLogSnapshot{}, crerr.Wrapf(err, "decode match log %s", relName)
		}
		l.logWarnings(ctx, relName, warnings)

		snapshot.Entries = append(snapshot.Entries, entries...)
		snapshot.Files = append(snapshot.Files, usecase.MatchLogFile{
			Name:     relName,
			Season:   hint.Season,
			League:   hint.League,
			Checksum: bytesChecksum(body),
			Decoded:  stats.Decoded,
			Dropped:  stats.HeaderRepeats + stats.MissingDates + stats.Invalid,
		})
		snapshot.RowsTotal += stats.RowsTotal
		snapshot.HeaderRepeats += stats.HeaderRepeats
		snapshot.MissingDates += stats.MissingDates
		snapshot.InvalidRows += stats.Invalid
	}

	return snapshot, nil
}

func (l *Loader) Mapping(_ context.Context) (clubname.Mapping, error) {
	return LoadMapping(filepath.Join(l.cfg.Dir, l.cfg.MappingDir))
}

// sourceBytes reads a snapshot from disk, or downloads it when the local
// copy is absent and a fetcher is configured.
func (l *Loader) sourceBytes(ctx context.Context, name string) ([]byte, string, error) {
	path := filepath.Join(l.cfg.Dir, name)
	body, err := os.ReadFile(path)
	if err == nil {
		return body, bytesChecksum(body), nil
	}
	if !os.IsNotExist(err) {
		return nil, "", crerr.Wrapf(err, "read snapshot %s", name)
	}
	if l.fetcher == nil {
		return nil, "", crerr.Wrapf(err, "snapshot %s is missing and no remote source is configured", name)
	}

	body, fetchErr := l.fetcher.Fetch(ctx, name)
	if fetchErr != nil {
		return nil, "", fetchErr
	}
	return body, bytesChecksum(body), nil
}

func (l *Loader) logWarnings(ctx context.Context, name string, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}
	l.logger.WarnContext(ctx, "snapshot rows flagged while decoding",
		"file", name,
		"count", len(warnings),
		"first_row", warnings[0].Row,
		"first_message", warnings[0].Message,
	)
}

// matchLogFileHint recovers season and league from a "{league}_{season}.csv"
// file name. Leagues may contain underscores, so only the last segment is
// the season.
func matchLogFileHint(name string) FileHint {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return FileHint{}
	}
	return FileHint{League: base[:i], Season: base[i+1:]}
}

func bytesChecksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
