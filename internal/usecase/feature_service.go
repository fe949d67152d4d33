package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

// DefaultFeatureWindowSize is the trailing match count feature aggregates
// are computed over.
const DefaultFeatureWindowSize = 5

type FeatureInput struct {
	WindowSize int
	MaxWorkers int
}

type FeatureResult struct {
	Samples []dataset.Sample
	Report  dataset.BuildReport

	// Rows kept but left unlabeled because the source had no goal count.
	UnlabeledCount int
}

// EloLookup resolves a club's rating on a date. A nil rating means the club
// is not covered; that is data absence, not an error.
type EloLookup interface {
	RatingOn(ctx context.Context, team, league string, date time.Time) (*float64, error)
}

// FeatureService turns split rows into modeling samples. Train and test
// share one aggregation path; they differ only in where the trailing
// window is anchored. Train rows anchor at their own match date. Test rows
// anchor at the transfer date, so every outcome of one transfer shares the
// same pre-transfer window and nothing after the move can enter it.
type FeatureService struct {
	eloLookup EloLookup
}

// NewFeatureService builds the enricher. eloLookup may be nil, in which
// case the elo covariates stay null.
func NewFeatureService(eloLookup EloLookup) *FeatureService {
	return &FeatureService{eloLookup: eloLookup}
}

// BuildTrainFeatures computes one sample per train row. The window holds
// the player's last K train rows dated strictly before the row's own date;
// rows from the same day never feed their own window.
func (s *FeatureService) BuildTrainFeatures(ctx context.Context, entries []matchlog.Entry, input FeatureInput) (FeatureResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.BuildTrainFeatures")
	defer span.End()

	windowSize := input.WindowSize
	if windowSize <= 0 {
		windowSize = DefaultFeatureWindowSize
	}

	byPlayer := make(map[string][]matchlog.Entry)
	for _, entry := range entries {
		byPlayer[entry.PlayerID] = append(byPlayer[entry.PlayerID], entry)
	}
	players := make([]string, 0, len(byPlayer))
	for playerID := range byPlayer {
		players = append(players, playerID)
	}
	sort.Strings(players)

	result := FeatureResult{
		Report: dataset.BuildReport{Stage: "features-train", RowsIn: len(entries)},
	}
	perPlayer := make([][]dataset.Sample, len(players))
	emptyWindows := make([]int, len(players))
	unlabeled := make([]int, len(players))

	workers := pool.New().
		WithMaxGoroutines(normalizeStageWorkerCount(input.MaxWorkers, len(players))).
		WithErrors()
	for idx, playerID := range players {
		rows := byPlayer[playerID]
		workers.Go(func() error {
			samples, empty, noLabel, err := s.buildPlayerTrainSamples(ctx, rows, windowSize)
			if err != nil {
				return err
			}
			perPlayer[idx] = samples
			emptyWindows[idx] = empty
			unlabeled[idx] = noLabel
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return FeatureResult{}, err
	}

	for idx := range perPlayer {
		result.Samples = append(result.Samples, perPlayer[idx]...)
		result.UnlabeledCount += unlabeled[idx]
		if emptyWindows[idx] > 0 {
			result.Report.Exclude("empty_window", players[idx], emptyWindows[idx])
		}
	}
	sort.SliceStable(result.Samples, func(i, j int) bool {
		if !result.Samples[i].MatchDate.Equal(result.Samples[j].MatchDate) {
			return result.Samples[i].MatchDate.Before(result.Samples[j].MatchDate)
		}
		if result.Samples[i].PlayerID != result.Samples[j].PlayerID {
			return result.Samples[i].PlayerID < result.Samples[j].PlayerID
		}
		return result.Samples[i].PlayerMatchID < result.Samples[j].PlayerMatchID
	})
	result.Report.RowsOut = len(result.Samples)

	return result, nil
}

func (s *FeatureService) buildPlayerTrainSamples(ctx context.Context, rows []matchlog.Entry, windowSize int) (samples []dataset.Sample, emptyWindows, unlabeled int, err error) {
	windowStart := 0
	for i, row := range rows {
		// Rows are date-ascending, so everything before the first row of
		// the current date is the strict past.
		if i > 0 && rows[i].Date.After(rows[windowStart].Date) {
			windowStart = i
		}
		window := trailingWindow(rows[:windowStart], windowSize)
		if len(window) == 0 {
			emptyWindows++
			continue
		}

		sample := s.newSample(row, dataset.SplitTrain, window, windowSize)
		if sample.Scored == nil {
			unlabeled++
		}
		if err := s.attachElo(ctx, &sample); err != nil {
			return nil, 0, 0, err
		}
		samples = append(samples, sample)
	}
	return samples, emptyWindows, unlabeled, nil
}

// BuildTestFeatures computes one sample per outcome row. The shared window
// per transfer holds the last K history rows, all dated strictly before the
// transfer.
func (s *FeatureService) BuildTestFeatures(ctx context.Context, rows []TestSetRow, input FeatureInput) (FeatureResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.BuildTestFeatures")
	defer span.End()

	windowSize := input.WindowSize
	if windowSize <= 0 {
		windowSize = DefaultFeatureWindowSize
	}

	type transferGroup struct {
		transferID string
		history    []matchlog.Entry
		outcomes   []TestSetRow
	}
	var groups []*transferGroup
	groupByID := make(map[string]*transferGroup)
	outcomeTotal := 0
	for _, row := range rows {
		group, ok := groupByID[row.TransferID]
		if !ok {
			group = &transferGroup{transferID: row.TransferID}
			groupByID[row.TransferID] = group
			groups = append(groups, group)
		}
		switch row.Role {
		case dataset.RoleHistory:
			group.history = append(group.history, row.Entry)
		case dataset.RoleOutcome:
			group.outcomes = append(group.outcomes, row)
			outcomeTotal++
		}
	}

	result := FeatureResult{
		Report: dataset.BuildReport{Stage: "features-test", RowsIn: outcomeTotal},
	}
	perGroup := make([][]dataset.Sample, len(groups))
	emptyWindows := make([]int, len(groups))
	unlabeled := make([]int, len(groups))

	workers := pool.New().
		WithMaxGoroutines(normalizeStageWorkerCount(input.MaxWorkers, len(groups))).
		WithErrors()
	for idx, group := range groups {
		workers.Go(func() error {
			window := trailingWindow(group.history, windowSize)
			if len(window) == 0 {
				emptyWindows[idx] = len(group.outcomes)
				return nil
			}
			for _, outcome := range group.outcomes {
				sample := s.newSample(outcome.Entry, dataset.SplitTest, window, windowSize)
				sample.TransferID = outcome.TransferID
				transferDate := outcome.TransferDate
				sample.TransferDate = &transferDate
				sample.MatchNumberAfterTransfer = outcome.MatchNumberAfterTransfer
				sample.DaysSinceTransfer = outcome.DaysSinceTransfer
				if sample.Scored == nil {
					unlabeled[idx]++
				}
				if err := s.attachElo(ctx, &sample); err != nil {
					return err
				}
				perGroup[idx] = append(perGroup[idx], sample)
			}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return FeatureResult{}, err
	}

	for idx := range perGroup {
		result.Samples = append(result.Samples, perGroup[idx]...)
		result.UnlabeledCount += unlabeled[idx]
		if emptyWindows[idx] > 0 {
			result.Report.Exclude("empty_window", groups[idx].transferID, emptyWindows[idx])
		}
	}
	result.Report.RowsOut = len(result.Samples)

	return result, nil
}

func (s *FeatureService) newSample(entry matchlog.Entry, split dataset.Split, window []matchlog.Entry, windowSize int) dataset.Sample {
	sample := dataset.Sample{
		PlayerMatchID:  entry.PlayerMatchID(),
		PlayerID:       entry.PlayerID,
		PlayerName:     entry.PlayerName,
		Split:          split,
		MatchDate:      entry.Date,
		Team:           entry.Team,
		Opponent:       entry.Opponent,
		Venue:          entry.Venue,
		League:         entry.League,
		Season:         entry.Season,
		Features:       computeWindowFeatures(window),
		WindowSize:     len(window),
		WindowComplete: len(window) == windowSize,
	}
	if scored, known := entry.Scored(); known {
		value := scored
		sample.Scored = &value
	}
	return sample
}

func (s *FeatureService) attachElo(ctx context.Context, sample *dataset.Sample) error {
	if s.eloLookup == nil {
		return nil
	}
	teamElo, err := s.eloLookup.RatingOn(ctx, sample.Team, sample.League, sample.MatchDate)
	if err != nil {
		return fmt.Errorf("team elo for %s: %w", sample.PlayerMatchID, err)
	}
	opponentElo, err := s.eloLookup.RatingOn(ctx, sample.Opponent, sample.League, sample.MatchDate)
	if err != nil {
		return fmt.Errorf("opponent elo for %s: %w", sample.PlayerMatchID, err)
	}
	sample.TeamElo = teamElo
	sample.OpponentElo = opponentElo
	if teamElo != nil && opponentElo != nil {
		diff := *teamElo - *opponentElo
		sample.EloDiff = &diff
	}
	return nil
}

// trailingWindow returns the last windowSize rows, or all of them when the
// history is shorter.
func trailingWindow(rows []matchlog.Entry, windowSize int) []matchlog.Entry {
	if len(rows) <= windowSize {
		return rows
	}
	return rows[len(rows)-windowSize:]
}

// computeWindowFeatures aggregates one trailing window. Means skip unknown
// values; a stat unknown across the whole window aggregates to zero.
func computeWindowFeatures(window []matchlog.Entry) dataset.Features {
	features := dataset.Features{Matches: len(window)}

	features.MinutesMean = meanValue(intWindowValues(window, func(e matchlog.Entry) *int { return e.Minutes }))
	features.ShotsMean = meanValue(intWindowValues(window, func(e matchlog.Entry) *int { return e.Shots }))
	features.ShotsOnTargetMean = meanValue(intWindowValues(window, func(e matchlog.Entry) *int { return e.ShotsOnTarget }))
	features.AssistsMean = meanValue(intWindowValues(window, func(e matchlog.Entry) *int { return e.Assists }))
	features.XGMean = meanValue(floatWindowValues(window, func(e matchlog.Entry) *float64 { return e.XG }))
	features.NPXGMean = meanValue(floatWindowValues(window, func(e matchlog.Entry) *float64 { return e.NPXG }))
	features.SCAMean = meanValue(floatWindowValues(window, func(e matchlog.Entry) *float64 { return e.SCA }))
	features.GCAMean = meanValue(floatWindowValues(window, func(e matchlog.Entry) *float64 { return e.GCA }))

	goals := intWindowValues(window, func(e matchlog.Entry) *int { return e.Goals })
	features.GoalsMean = meanValue(goals)
	scored := 0
	for _, value := range goals {
		features.GoalsSum += int(value)
		if value > 0 {
			scored++
		}
	}
	if len(goals) > 0 {
		features.ScoredRate = float64(scored) / float64(len(goals))
	}

	return features
}

func intWindowValues(window []matchlog.Entry, pick func(matchlog.Entry) *int) []float64 {
	values := make([]float64, 0, len(window))
	for _, entry := range window {
		if v := pick(entry); v != nil {
			values = append(values, float64(*v))
		}
	}
	return values
}

func floatWindowValues(window []matchlog.Entry, pick func(matchlog.Entry) *float64) []float64 {
	values := make([]float64, 0, len(window))
	for _, entry := range window {
		if v := pick(entry); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func meanValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
