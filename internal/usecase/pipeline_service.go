package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	idgen "github.com/strikerlab/debutform/internal/platform/id"
	"github.com/strikerlab/debutform/internal/platform/logging"
)

const (
	StageAll             = "all"
	StageIngest          = "ingest"
	StageSelectTransfers = "select-transfers"
	StageMapTransfers    = "map-transfers"
	StagePostTransfer    = "post-transfer"
	StageTrainSet        = "train-set"
	StageTestSet         = "test-set"
	StageScrapeList      = "scrape-list"
	StageTeamNames       = "team-names"
	StageUniqueClubs     = "unique-clubs"
	StageFetchElos       = "fetch-elos"
	StageFormatElos      = "format-elos"
	StageAttachElos      = "attach-elos"
	StageFeatures        = "features"
)

const (
	pipelineStatusSuccess = "success"
	pipelineStatusFailed  = "failed"
)

// pipelineLevels orders the stages. Stages sharing a level have no data
// dependency on each other and may run in parallel; a level starts only
// after the previous one finished cleanly.
var pipelineLevels = [][]string{
	{StageIngest},
	{StageSelectTransfers},
	{StageMapTransfers},
	{StagePostTransfer},
	{StageTrainSet, StageTestSet, StageScrapeList},
	{StageTeamNames, StageUniqueClubs},
	{StageFetchElos},
	{StageFormatElos},
	{StageAttachElos},
	{StageFeatures},
}

var stageOrder = func() map[string]int {
	order := make(map[string]int)
	for _, level := range pipelineLevels {
		for _, stage := range level {
			order[stage] = len(order)
		}
	}
	return order
}()

// PipelineStages lists runnable stages in execution order.
func PipelineStages() []string {
	out := make([]string, 0, len(stageOrder))
	for _, level := range pipelineLevels {
		out = append(out, level...)
	}
	return out
}

// EloTeamHistory is one stored per-club rating history handed to the
// artifact store after a fetch pass.
type EloTeamHistory struct {
	NormalizedTeam string
	Ratings        []clubelo.Rating
	FetchedAt      time.Time
}

// ArtifactStore publishes stage outputs as files next to the run
// manifest. Each writer returns the path it landed on.
type ArtifactStore interface {
	WriteSelectedTransfers(ctx context.Context, records []transfer.Record) (string, error)
	WriteMappedTransfers(ctx context.Context, transfers []transfer.Mapped) (string, error)
	WritePostTransferLogs(ctx context.Context, entries []matchlog.PostTransferEntry) (string, error)
	WriteTrainLogs(ctx context.Context, entries []matchlog.Entry) (string, error)
	WriteTestLogs(ctx context.Context, rows []TestSetRow) (string, error)
	WriteScrapeTargets(ctx context.Context, targets []transfer.ScrapeTarget) (string, error)
	WriteTeamNames(ctx context.Context, teams []clubname.TeamName) (string, error)
	WriteUniqueClubs(ctx context.Context, clubs []clubname.UniqueClub) (string, error)
	WriteEloHistories(ctx context.Context, histories []EloTeamHistory) (string, error)
	WriteFormattedElos(ctx context.Context, ratings []clubelo.TeamRating) (string, error)
	WriteEloAttachments(ctx context.Context, attachments []clubelo.Attachment) (string, error)
	WriteTrainSamples(ctx context.Context, samples []dataset.Sample) (string, error)
	WriteTestSamples(ctx context.Context, samples []dataset.Sample) (string, error)
	WriteRunManifest(ctx context.Context, run dataset.Run) (string, error)
}

type PipelineConfig struct {
	MatchCount    int
	WindowSize    int
	StageWorkers  int
	PlayerWorkers int
	EloFetchDelay time.Duration
}

type PipelineInput struct {
	Stage string
}

type StageResult struct {
	Stage      string         `json:"stage"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Counts     map[string]int `json:"counts,omitempty"`
	Artifacts  []string       `json:"artifacts,omitempty"`
}

type PipelineResult struct {
	RunID        string        `json:"run_id"`
	Stage        string        `json:"stage"`
	Stages       []StageResult `json:"stages"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	ManifestPath string        `json:"manifest_path,omitempty"`
}

// PipelineDeps bundles everything the orchestrator drives.
type PipelineDeps struct {
	Ingest     *IngestService
	Select     *TransferSelectService
	MapNames   *TransferMapService
	Post       *PostTransferService
	Dataset    *DatasetService
	ScrapeList *ScrapeListService
	ClubNames  *ClubNameService
	Elo        *EloService
	Features   *FeatureService

	Loader       SnapshotLoader
	Store        ArtifactStore
	RunRepo      dataset.RunRepository
	TransferRepo transfer.Repository
	MatchLogRepo matchlog.Repository
	EloRepo      clubelo.Repository

	// RunIDs disambiguates runs started within the same second.
	// Nil falls back to a short random suffix.
	RunIDs idgen.Generator
}

// PipelineService runs dataset-construction stages in dependency order
// and records each run as a manifest. A single stage reuses whatever
// earlier runs persisted; "all" is one pass over every level.
type PipelineService struct {
	deps   PipelineDeps
	cfg    PipelineConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewPipelineService(deps PipelineDeps, cfg PipelineConfig, logger *logging.Logger) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if deps.RunIDs == nil {
		deps.RunIDs = idgen.NewSuffixGenerator()
	}
	return &PipelineService{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// pipelineState caches intermediate outputs within one run so later
// levels reuse what earlier ones computed. Standalone stages fall back
// to the repositories and recompute only what was never persisted.
type pipelineState struct {
	mu        sync.Mutex
	checksums map[string]string
	mapping   *clubname.Mapping
	selected  []transfer.Record
	mapped    []transfer.Mapped
	postRows  []matchlog.PostTransferEntry
	train     []matchlog.Entry
	testRows  []TestSetRow
	targets   []transfer.ScrapeTarget
	teams     []clubname.TeamName
}

func (s *PipelineService) Run(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	stage, err := normalizePipelineStage(input.Stage)
	if err != nil {
		return PipelineResult{}, err
	}
	if err := s.checkConfigured(); err != nil {
		return PipelineResult{}, err
	}

	startedAt := s.now().UTC()
	suffix, err := s.deps.RunIDs.NewID()
	if err != nil {
		return PipelineResult{}, fmt.Errorf("generate run id: %w", err)
	}
	runID := fmt.Sprintf("run_%s_%s_%s", stage, startedAt.Format("20060102T150405Z"), suffix)
	logger := s.logger.WithRun(runID)

	run := dataset.Run{
		ID:        runID,
		Stage:     stage,
		Status:    dataset.RunStatusRunning,
		StartedAt: startedAt,
	}
	if err := s.deps.RunRepo.CreateRun(ctx, run); err != nil {
		return PipelineResult{}, fmt.Errorf("record run start: %w", err)
	}

	levels := [][]string{{stage}}
	if stage == StageAll {
		levels = pipelineLevels
	}

	state := &pipelineState{}
	result := PipelineResult{RunID: runID, Stage: stage}
	for _, level := range levels {
		rows, err := s.runLevel(ctx, logger, level, state)
		if err != nil {
			return PipelineResult{}, err
		}
		result.Stages = append(result.Stages, rows...)

		failed := false
		for _, row := range rows {
			if row.Status != pipelineStatusSuccess {
				failed = true
			}
		}
		if failed {
			break
		}
	}

	counts := make(map[string]int)
	var failures []string
	for _, row := range result.Stages {
		for key, value := range row.Counts {
			counts[row.Stage+"."+key] = value
		}
		if row.Status == pipelineStatusSuccess {
			result.SuccessCount++
		} else {
			result.FailedCount++
			failures = append(failures, row.Stage+": "+row.Message)
		}
	}

	completedAt := s.now().UTC()
	run.Status = dataset.RunStatusCompleted
	if len(failures) > 0 {
		run.Status = dataset.RunStatusFailed
		run.Error = strings.Join(failures, "; ")
	}
	run.CompletedAt = &completedAt
	run.Counts = counts
	state.mu.Lock()
	run.InputChecksums = state.checksums
	state.mu.Unlock()

	if err := s.deps.RunRepo.FinishRun(ctx, run); err != nil {
		return result, fmt.Errorf("record run finish: %w", err)
	}
	manifestPath, err := s.deps.Store.WriteRunManifest(ctx, run)
	if err != nil {
		return result, fmt.Errorf("write run manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	logger.InfoContext(ctx, "pipeline run finished",
		"stage", stage,
		"status", string(run.Status),
		"stages", len(result.Stages),
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *PipelineService) checkConfigured() error {
	d := s.deps
	if d.Ingest == nil || d.Select == nil || d.MapNames == nil || d.Post == nil ||
		d.Dataset == nil || d.ScrapeList == nil || d.ClubNames == nil ||
		d.Elo == nil || d.Features == nil {
		return fmt.Errorf("%w: pipeline services are not fully configured", ErrDependencyUnavailable)
	}
	if d.Loader == nil || d.Store == nil || d.RunRepo == nil ||
		d.TransferRepo == nil || d.MatchLogRepo == nil || d.EloRepo == nil {
		return fmt.Errorf("%w: pipeline storage is not fully configured", ErrDependencyUnavailable)
	}
	return nil
}

func (s *PipelineService) runLevel(ctx context.Context, logger *logging.Logger, level []string, state *pipelineState) ([]StageResult, error) {
	if len(level) == 1 {
		return []StageResult{s.runStage(ctx, logger, level[0], state)}, nil
	}

	workerCount := normalizeStageWorkerCount(s.cfg.StageWorkers, len(level))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create stage worker pool: %w", err)
	}
	defer pool.Release()

	rows := make([]StageResult, len(level))
	var workers sync.WaitGroup
	for i, stage := range level {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			rows[i] = s.runStage(ctx, logger, stage, state)
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit stage to worker pool: %w", err)
		}
	}
	workers.Wait()

	return rows, nil
}

func (s *PipelineService) runStage(ctx context.Context, logger *logging.Logger, stage string, state *pipelineState) StageResult {
	stageLogger := logger.WithStage(stage)
	start := time.Now()

	counts, artifacts, err := s.dispatchStage(ctx, stage, state)
	row := StageResult{
		Stage:      stage,
		Status:     pipelineStatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
		Counts:     counts,
		Artifacts:  artifacts,
	}
	if err != nil {
		row.Status = pipelineStatusFailed
		row.Message = err.Error()
		stageLogger.ErrorContext(ctx, "pipeline stage failed", "error", err, "duration_ms", row.DurationMs)
		return row
	}

	stageLogger.InfoContext(ctx, "pipeline stage finished", "duration_ms", row.DurationMs)
	return row
}

func (s *PipelineService) dispatchStage(ctx context.Context, stage string, state *pipelineState) (map[string]int, []string, error) {
	switch stage {
	case StageIngest:
		return s.runIngest(ctx, state)
	case StageSelectTransfers:
		return s.runSelectTransfers(ctx, state)
	case StageMapTransfers:
		return s.runMapTransfers(ctx, state)
	case StagePostTransfer:
		return s.runPostTransfer(ctx, state)
	case StageTrainSet:
		return s.runTrainSet(ctx, state)
	case StageTestSet:
		return s.runTestSet(ctx, state)
	case StageScrapeList:
		return s.runScrapeList(ctx, state)
	case StageTeamNames:
		return s.runTeamNames(ctx, state)
	case StageUniqueClubs:
		return s.runUniqueClubs(ctx, state)
	case StageFetchElos:
		return s.runFetchElos(ctx, state)
	case StageFormatElos:
		return s.runFormatElos(ctx, state)
	case StageAttachElos:
		return s.runAttachElos(ctx, state)
	case StageFeatures:
		return s.runFeatures(ctx, state)
	default:
		return nil, nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, stage)
	}
}

func (s *PipelineService) runIngest(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	result, err := s.deps.Ingest.Ingest(ctx)
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.checksums = result.Checksums
	state.mu.Unlock()

	counts := map[string]int{
		"transfer_rows":     result.TransferRows,
		"club_rows":         result.ClubRows,
		"match_log_rows":    result.MatchLogRows,
		"match_log_files":   result.MatchLogFiles,
		"transfer_warnings": result.TransferWarnings,
		"club_warnings":     result.ClubWarnings,
		"dropped_log_rows":  result.DroppedLogRows,
	}
	return counts, nil, nil
}

func (s *PipelineService) runSelectTransfers(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	result, err := s.deps.Select.Select(ctx)
	if err != nil {
		return nil, nil, err
	}
	if result.Report.RowsIn == 0 {
		return nil, nil, fmt.Errorf("%w: no ingested transfer records, run the ingest stage first", ErrNotFound)
	}

	state.mu.Lock()
	state.selected = result.Selected
	state.mu.Unlock()

	path, err := s.deps.Store.WriteSelectedTransfers(ctx, result.Selected)
	if err != nil {
		return nil, nil, fmt.Errorf("write selected transfers artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runMapTransfers(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	selected, err := s.ensureSelected(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	mapping, err := s.ensureMapping(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.MapNames.Map(ctx, selected, mapping)
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.mapped = result.Mapped
	state.mu.Unlock()

	path, err := s.deps.Store.WriteMappedTransfers(ctx, result.Mapped)
	if err != nil {
		return nil, nil, fmt.Errorf("write mapped transfers artifact: %w", err)
	}

	counts := reportCounts(result.Report)
	counts["unresolved_from_competition"] = result.UnresolvedFromCompetition
	counts["unresolved_to_competition"] = result.UnresolvedToCompetition
	return counts, []string{path}, nil
}

func (s *PipelineService) runPostTransfer(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	if _, err := s.ensureMapped(ctx, state); err != nil {
		return nil, nil, err
	}

	result, err := s.deps.Post.Extract(ctx, PostTransferInput{
		MatchCount: s.cfg.MatchCount,
		MaxWorkers: s.cfg.PlayerWorkers,
	})
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.postRows = result.Entries
	state.mu.Unlock()

	path, err := s.deps.Store.WritePostTransferLogs(ctx, result.Entries)
	if err != nil {
		return nil, nil, fmt.Errorf("write post-transfer logs artifact: %w", err)
	}

	counts := reportCounts(result.Report)
	counts["transfers_in"] = result.TransfersIn
	counts["transfers_with_matches"] = result.TransfersWithMatches
	counts["workers"] = result.WorkerCount
	return counts, []string{path}, nil
}

func (s *PipelineService) runTrainSet(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, nil, err
	}

	result, err := s.deps.Dataset.BuildTrain(ctx)
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.train = result.Entries
	state.mu.Unlock()

	path, err := s.deps.Store.WriteTrainLogs(ctx, result.Entries)
	if err != nil {
		return nil, nil, fmt.Errorf("write train logs artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runTestSet(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, nil, err
	}

	result, err := s.deps.Dataset.BuildTest(ctx)
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.testRows = result.Rows
	state.mu.Unlock()

	path, err := s.deps.Store.WriteTestLogs(ctx, result.Rows)
	if err != nil {
		return nil, nil, fmt.Errorf("write test logs artifact: %w", err)
	}

	counts := reportCounts(result.Report)
	counts["transfers"] = result.TransferCount
	counts["outcome_rows"] = result.OutcomeCount
	counts["history_rows"] = result.HistoryCount
	return counts, []string{path}, nil
}

func (s *PipelineService) runScrapeList(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, nil, err
	}
	mapping, err := s.ensureMapping(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.ScrapeList.Build(ctx, mapping)
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.targets = result.Targets
	state.mu.Unlock()

	path, err := s.deps.Store.WriteScrapeTargets(ctx, result.Targets)
	if err != nil {
		return nil, nil, fmt.Errorf("write scrape targets artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runTeamNames(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	targets, err := s.ensureTargets(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	train, err := s.ensureTrain(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	testRows, err := s.ensureTestRows(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.ClubNames.TeamNames(ctx, TeamNamesInput{
		Targets:      targets,
		TrainEntries: train,
		TestRows:     testRows,
	})
	if err != nil {
		return nil, nil, err
	}

	state.mu.Lock()
	state.teams = result.Teams
	state.mu.Unlock()

	path, err := s.deps.Store.WriteTeamNames(ctx, result.Teams)
	if err != nil {
		return nil, nil, fmt.Errorf("write team names artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runUniqueClubs(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	targets, err := s.ensureTargets(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.ClubNames.UniqueClubs(ctx, targets)
	if err != nil {
		return nil, nil, err
	}

	path, err := s.deps.Store.WriteUniqueClubs(ctx, result.Clubs)
	if err != nil {
		return nil, nil, fmt.Errorf("write unique clubs artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runFetchElos(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	teams, err := s.ensureTeams(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.Elo.FetchHistories(ctx, teams, EloFetchInput{PoliteDelay: s.cfg.EloFetchDelay})
	if err != nil {
		return nil, nil, err
	}

	histories, err := s.loadStoredHistories(ctx)
	if err != nil {
		return nil, nil, err
	}
	path, err := s.deps.Store.WriteEloHistories(ctx, histories)
	if err != nil {
		return nil, nil, fmt.Errorf("write rating histories artifact: %w", err)
	}

	counts := map[string]int{
		"teams_in":        result.TeamsIn,
		"fetched":         result.Fetched,
		"missing":         result.Missing,
		"skipped":         result.Skipped,
		"invalid_ratings": result.InvalidRatings,
	}
	return counts, []string{path}, nil
}

func (s *PipelineService) runFormatElos(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	teams, err := s.ensureTeams(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.deps.Elo.FormatHistories(ctx, teams)
	if err != nil {
		return nil, nil, err
	}

	path, err := s.deps.Store.WriteFormattedElos(ctx, result.Ratings)
	if err != nil {
		return nil, nil, fmt.Errorf("write formatted ratings artifact: %w", err)
	}
	return reportCounts(result.Report), []string{path}, nil
}

func (s *PipelineService) runAttachElos(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	train, err := s.ensureTrain(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	testRows, err := s.ensureTestRows(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	trainResult, err := s.deps.Elo.AttachEntries(ctx, dataset.SplitTrain, train)
	if err != nil {
		return nil, nil, err
	}
	testEntries := make([]matchlog.Entry, 0, len(testRows))
	for _, row := range testRows {
		testEntries = append(testEntries, row.Entry)
	}
	testResult, err := s.deps.Elo.AttachEntries(ctx, dataset.SplitTest, testEntries)
	if err != nil {
		return nil, nil, err
	}

	combined := make([]clubelo.Attachment, 0, len(trainResult.Attachments)+len(testResult.Attachments))
	combined = append(combined, trainResult.Attachments...)
	combined = append(combined, testResult.Attachments...)

	path, err := s.deps.Store.WriteEloAttachments(ctx, combined)
	if err != nil {
		return nil, nil, fmt.Errorf("write rating attachments artifact: %w", err)
	}

	counts := map[string]int{
		"train_rows":      trainResult.RowsIn,
		"test_rows":       testResult.RowsIn,
		"fully_attached":  trainResult.FullyAttached + testResult.FullyAttached,
		"team_misses":     trainResult.TeamMisses + testResult.TeamMisses,
		"opponent_misses": trainResult.OpponentMisses + testResult.OpponentMisses,
	}
	return counts, []string{path}, nil
}

func (s *PipelineService) runFeatures(ctx context.Context, state *pipelineState) (map[string]int, []string, error) {
	train, err := s.ensureTrain(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	testRows, err := s.ensureTestRows(ctx, state)
	if err != nil {
		return nil, nil, err
	}

	input := FeatureInput{WindowSize: s.cfg.WindowSize, MaxWorkers: s.cfg.PlayerWorkers}
	trainResult, err := s.deps.Features.BuildTrainFeatures(ctx, train, input)
	if err != nil {
		return nil, nil, err
	}
	testResult, err := s.deps.Features.BuildTestFeatures(ctx, testRows, input)
	if err != nil {
		return nil, nil, err
	}

	trainPath, err := s.deps.Store.WriteTrainSamples(ctx, trainResult.Samples)
	if err != nil {
		return nil, nil, fmt.Errorf("write train samples artifact: %w", err)
	}
	testPath, err := s.deps.Store.WriteTestSamples(ctx, testResult.Samples)
	if err != nil {
		return nil, nil, fmt.Errorf("write test samples artifact: %w", err)
	}

	counts := make(map[string]int)
	for key, value := range reportCounts(trainResult.Report) {
		counts["train_"+key] = value
	}
	for key, value := range reportCounts(testResult.Report) {
		counts["test_"+key] = value
	}
	counts["train_unlabeled"] = trainResult.UnlabeledCount
	return counts, []string{trainPath, testPath}, nil
}

func (s *PipelineService) ensureMapping(ctx context.Context, state *pipelineState) (clubname.Mapping, error) {
	state.mu.Lock()
	if state.mapping != nil {
		mapping := *state.mapping
		state.mu.Unlock()
		return mapping, nil
	}
	state.mu.Unlock()

	mapping, err := s.deps.Loader.Mapping(ctx)
	if err != nil {
		return clubname.Mapping{}, fmt.Errorf("load name mappings: %w", err)
	}

	state.mu.Lock()
	state.mapping = &mapping
	state.mu.Unlock()
	return mapping, nil
}

func (s *PipelineService) ensureSelected(ctx context.Context, state *pipelineState) ([]transfer.Record, error) {
	state.mu.Lock()
	if state.selected != nil {
		selected := state.selected
		state.mu.Unlock()
		return selected, nil
	}
	state.mu.Unlock()

	result, err := s.deps.Select.Select(ctx)
	if err != nil {
		return nil, err
	}
	if result.Report.RowsIn == 0 {
		return nil, fmt.Errorf("%w: no ingested transfer records, run the ingest stage first", ErrNotFound)
	}

	state.mu.Lock()
	state.selected = result.Selected
	state.mu.Unlock()
	return result.Selected, nil
}

func (s *PipelineService) ensureMapped(ctx context.Context, state *pipelineState) ([]transfer.Mapped, error) {
	state.mu.Lock()
	if state.mapped != nil {
		mapped := state.mapped
		state.mu.Unlock()
		return mapped, nil
	}
	state.mu.Unlock()

	mapped, err := s.deps.TransferRepo.ListMapped(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mapped transfers: %w", err)
	}
	if len(mapped) == 0 {
		selected, err := s.ensureSelected(ctx, state)
		if err != nil {
			return nil, err
		}
		mapping, err := s.ensureMapping(ctx, state)
		if err != nil {
			return nil, err
		}
		result, err := s.deps.MapNames.Map(ctx, selected, mapping)
		if err != nil {
			return nil, err
		}
		mapped = result.Mapped
	}

	state.mu.Lock()
	state.mapped = mapped
	state.mu.Unlock()
	return mapped, nil
}

func (s *PipelineService) ensurePostRows(ctx context.Context, state *pipelineState) ([]matchlog.PostTransferEntry, error) {
	state.mu.Lock()
	if state.postRows != nil {
		rows := state.postRows
		state.mu.Unlock()
		return rows, nil
	}
	state.mu.Unlock()

	rows, err := s.deps.MatchLogRepo.ListPostTransfer(ctx)
	if err != nil {
		return nil, fmt.Errorf("list post-transfer entries: %w", err)
	}
	if len(rows) == 0 {
		if _, err := s.ensureMapped(ctx, state); err != nil {
			return nil, err
		}
		result, err := s.deps.Post.Extract(ctx, PostTransferInput{
			MatchCount: s.cfg.MatchCount,
			MaxWorkers: s.cfg.PlayerWorkers,
		})
		if err != nil {
			return nil, err
		}
		rows = result.Entries
	}

	state.mu.Lock()
	state.postRows = rows
	state.mu.Unlock()
	return rows, nil
}

func (s *PipelineService) ensureTrain(ctx context.Context, state *pipelineState) ([]matchlog.Entry, error) {
	state.mu.Lock()
	if state.train != nil {
		train := state.train
		state.mu.Unlock()
		return train, nil
	}
	state.mu.Unlock()

	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, err
	}
	result, err := s.deps.Dataset.BuildTrain(ctx)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	state.train = result.Entries
	state.mu.Unlock()
	return result.Entries, nil
}

func (s *PipelineService) ensureTestRows(ctx context.Context, state *pipelineState) ([]TestSetRow, error) {
	state.mu.Lock()
	if state.testRows != nil {
		rows := state.testRows
		state.mu.Unlock()
		return rows, nil
	}
	state.mu.Unlock()

	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, err
	}
	result, err := s.deps.Dataset.BuildTest(ctx)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	state.testRows = result.Rows
	state.mu.Unlock()
	return result.Rows, nil
}

func (s *PipelineService) ensureTargets(ctx context.Context, state *pipelineState) ([]transfer.ScrapeTarget, error) {
	state.mu.Lock()
	if state.targets != nil {
		targets := state.targets
		state.mu.Unlock()
		return targets, nil
	}
	state.mu.Unlock()

	if _, err := s.ensurePostRows(ctx, state); err != nil {
		return nil, err
	}
	mapping, err := s.ensureMapping(ctx, state)
	if err != nil {
		return nil, err
	}
	result, err := s.deps.ScrapeList.Build(ctx, mapping)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	state.targets = result.Targets
	state.mu.Unlock()
	return result.Targets, nil
}

func (s *PipelineService) ensureTeams(ctx context.Context, state *pipelineState) ([]clubname.TeamName, error) {
	state.mu.Lock()
	if state.teams != nil {
		teams := state.teams
		state.mu.Unlock()
		return teams, nil
	}
	state.mu.Unlock()

	targets, err := s.ensureTargets(ctx, state)
	if err != nil {
		return nil, err
	}
	train, err := s.ensureTrain(ctx, state)
	if err != nil {
		return nil, err
	}
	testRows, err := s.ensureTestRows(ctx, state)
	if err != nil {
		return nil, err
	}

	result, err := s.deps.ClubNames.TeamNames(ctx, TeamNamesInput{
		Targets:      targets,
		TrainEntries: train,
		TestRows:     testRows,
	})
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	state.teams = result.Teams
	state.mu.Unlock()
	return result.Teams, nil
}

func (s *PipelineService) loadStoredHistories(ctx context.Context) ([]EloTeamHistory, error) {
	teams, err := s.deps.EloRepo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored rating teams: %w", err)
	}
	teams = append([]string(nil), teams...)
	sort.Strings(teams)

	histories := make([]EloTeamHistory, 0, len(teams))
	for _, team := range teams {
		ratings, fetchedAt, err := s.deps.EloRepo.History(ctx, team)
		if err != nil {
			return nil, fmt.Errorf("load stored history for %s: %w", team, err)
		}
		// Provider misses are stored as empty histories; there is no
		// file to export for them.
		if len(ratings) == 0 {
			continue
		}
		histories = append(histories, EloTeamHistory{
			NormalizedTeam: team,
			Ratings:        ratings,
			FetchedAt:      fetchedAt,
		})
	}
	return histories, nil
}

func normalizePipelineStage(raw string) (string, error) {
	stage := strings.ToLower(strings.TrimSpace(raw))
	if stage == "" || stage == StageAll {
		return StageAll, nil
	}
	if _, ok := stageOrder[stage]; !ok {
		return "", fmt.Errorf("%w: unknown stage %q (valid: all, %s)",
			ErrInvalidInput, raw, strings.Join(PipelineStages(), ", "))
	}
	return stage, nil
}

func reportCounts(report dataset.BuildReport) map[string]int {
	counts := map[string]int{
		"rows_in":  report.RowsIn,
		"rows_out": report.RowsOut,
	}
	for _, exclusion := range report.Exclusions {
		counts["excluded_"+exclusion.Reason] = exclusion.Count
	}
	return counts
}
