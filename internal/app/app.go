package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	clubeloapi "github.com/strikerlab/debutform/external/clubelo"
	"github.com/strikerlab/debutform/external/snapshots"
	"github.com/strikerlab/debutform/internal/config"
	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	cachedrepo "github.com/strikerlab/debutform/internal/infrastructure/repository/cache"
	"github.com/strikerlab/debutform/internal/infrastructure/repository/memory"
	"github.com/strikerlab/debutform/internal/infrastructure/repository/postgres"
	"github.com/strikerlab/debutform/internal/infrastructure/snapshot"
	basecache "github.com/strikerlab/debutform/internal/platform/cache"
	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/strikerlab/debutform/internal/platform/resilience"
	"github.com/strikerlab/debutform/internal/usecase"
)

// App is the wired pipeline plus the resources behind it. Close releases
// what New opened.
type App struct {
	Pipeline *usecase.PipelineService

	db *sqlx.DB
}

// repositories groups the storage ports every service draws from. The
// set is built once per process from the configured driver.
type repositories struct {
	transfers transfer.Repository
	clubs     transfer.ClubRepository
	matchLogs matchlog.Repository
	elos      clubelo.Repository
	runs      dataset.RunRepository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CacheEnabled {
		cacheStore := basecache.NewStore(cfg.CacheTTL)
		repos.elos = cachedrepo.NewEloRepository(repos.elos, cacheStore)
		repos.clubs = cachedrepo.NewClubRepository(repos.clubs, cacheStore)
	}

	var fetcher snapshot.SourceFetcher
	if cfg.SnapshotBaseURL != "" {
		fetcher = snapshots.NewFetcher(snapshots.FetcherConfig{
			BaseURL:      cfg.SnapshotBaseURL,
			Timeout:      cfg.SnapshotFetchTimeout,
			Retries:      2,
			MaxBodyBytes: cfg.SnapshotMaxBytes,
		}, logger)
	}
	loader := snapshot.NewLoader(snapshot.LoaderConfig{
		TransferFile: cfg.TransfersSnapshot,
		ClubFile:     cfg.ClubsSnapshot,
		MatchLogDir:  cfg.MatchLogsDir,
		MappingDir:   cfg.MappingsDir,
	}, fetcher, logger)

	store := snapshot.NewStore(cfg.OutputDir)
	store.SetEloDir(cfg.EloDir)

	var provider usecase.RatingProvider
	if cfg.ClubEloEnabled {
		provider = clubeloapi.NewClient(clubeloapi.ClientConfig{
			BaseURL:    cfg.ClubEloBaseURL,
			Timeout:    cfg.ClubEloTimeout,
			MaxRetries: cfg.ClubEloMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ClubEloCircuitEnabled,
				FailureThreshold: cfg.ClubEloCircuitFailureCount,
				OpenTimeout:      cfg.ClubEloCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ClubEloCircuitHalfOpenMaxReq,
			},
		})
	}

	eloSvc := usecase.NewEloService(provider, repos.elos, logger)
	eloSvc.SetFormattedFloor(cfg.EloMinFromDate)

	pipeline := usecase.NewPipelineService(usecase.PipelineDeps{
		Ingest: usecase.NewIngestService(loader, repos.transfers, repos.clubs, repos.matchLogs, logger),
		Select: usecase.NewTransferSelectService(repos.transfers, repos.clubs, usecase.TransferSelectConfig{
			Competitions: cfg.TopCompetitions,
			Seasons:      cfg.SeasonsKept,
			Cutoff:       cfg.TransferCutoff,
		}),
		MapNames:   usecase.NewTransferMapService(repos.transfers, repos.clubs),
		Post:       usecase.NewPostTransferService(repos.transfers, repos.matchLogs),
		Dataset:    usecase.NewDatasetService(repos.matchLogs),
		ScrapeList: usecase.NewScrapeListService(repos.transfers, repos.matchLogs),
		ClubNames:  usecase.NewClubNameService(),
		Elo:        eloSvc,
		Features:   usecase.NewFeatureService(eloSvc),

		Loader:       loader,
		Store:        store,
		RunRepo:      repos.runs,
		TransferRepo: repos.transfers,
		MatchLogRepo: repos.matchLogs,
		EloRepo:      repos.elos,
	}, usecase.PipelineConfig{
		MatchCount:    cfg.PostTransferMatches,
		WindowSize:    cfg.FeatureWindowSize,
		StageWorkers:  cfg.StageWorkers,
		PlayerWorkers: cfg.PlayerWorkers,
		EloFetchDelay: cfg.ClubEloRequestDelay,
	}, logger)

	return &App{Pipeline: pipeline, db: db}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildRepositories(cfg config.Config) (repositories, *sqlx.DB, error) {
	if cfg.StorageDriver == config.DriverPostgres {
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			transfers: postgres.NewTransferRepository(db),
			clubs:     postgres.NewClubRepository(db),
			matchLogs: postgres.NewMatchLogRepository(db),
			elos:      postgres.NewEloRepository(db),
			runs:      postgres.NewRunRepository(db),
		}, db, nil
	}

	return repositories{
		transfers: memory.NewTransferRepository(),
		clubs:     memory.NewClubRepository(),
		matchLogs: memory.NewMatchLogRepository(),
		elos:      memory.NewEloRepository(),
		runs:      memory.NewRunRepository(),
	}, nil, nil
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
