package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/clubname"
	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
	"github.com/strikerlab/debutform/internal/platform/logging"
)

// DefaultEloFetchDelay spaces requests to the rating provider. It is a free
// service; do not hammer it.
const DefaultEloFetchDelay = time.Second

// FormattedEloFloor is the oldest from_date the formatted table keeps.
// Ratings before it predate the season window and never match a log row.
var FormattedEloFloor = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// ExternalRating is one validity interval of a club's rating history as
// decoded from the provider.
type ExternalRating struct {
	Rank    int
	Club    string
	Country string
	Level   int
	Elo     float64
	From    time.Time
	To      *time.Time
}

// RatingProvider fetches one club's full rating history by normalized
// name. found is false for clubs the provider does not track.
type RatingProvider interface {
	FetchHistory(ctx context.Context, normalizedTeam string) ([]ExternalRating, bool, error)
}

type EloFetchInput struct {
	PoliteDelay time.Duration
}

type EloFetchResult struct {
	TeamsIn        int
	Fetched        int
	Missing        int
	Skipped        int
	InvalidRatings int
}

type EloFormatResult struct {
	Ratings []clubelo.TeamRating
	Report  dataset.BuildReport
}

type EloAttachResult struct {
	Attachments    []clubelo.Attachment
	RowsIn         int
	FullyAttached  int
	TeamMisses     int
	OpponentMisses int
}

// EloService owns the rating side of the pipeline: pulling histories from
// the provider, joining them to the team directory, and resolving a club's
// rating on a date for feature attachment.
type EloService struct {
	provider       RatingProvider
	eloRepo        clubelo.Repository
	logger         *logging.Logger
	now            func() time.Time
	formattedFloor time.Time

	lookupMu   sync.Mutex
	lookupMemo map[string]eloLookupResult
}

type eloLookupResult struct {
	value float64
	found bool
}

func (r eloLookupResult) ptr() *float64 {
	if !r.found {
		return nil
	}
	value := r.value
	return &value
}

func NewEloService(provider RatingProvider, eloRepo clubelo.Repository, logger *logging.Logger) *EloService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EloService{
		provider:       provider,
		eloRepo:        eloRepo,
		logger:         logger,
		now:            time.Now,
		formattedFloor: FormattedEloFloor,
		lookupMemo:     make(map[string]eloLookupResult),
	}
}

// SetFormattedFloor overrides the oldest from_date the formatted table
// keeps. Zero keeps the default floor.
func (s *EloService) SetFormattedFloor(floor time.Time) {
	if !floor.IsZero() {
		s.formattedFloor = floor
	}
}

// FetchHistories pulls the rating history for every directory row. A team
// already fetched within the current UTC day is skipped, which also covers
// clubs listed under several leagues: the first row fetches, the rest skip.
// Provider misses are stored as empty histories so the daily skip applies
// to them too.
func (s *EloService) FetchHistories(ctx context.Context, teams []clubname.TeamName, input EloFetchInput) (EloFetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.FetchHistories")
	defer span.End()

	if s.provider == nil {
		return EloFetchResult{}, fmt.Errorf("%w: rating provider is not configured", ErrDependencyUnavailable)
	}
	delay := input.PoliteDelay
	if delay <= 0 {
		delay = DefaultEloFetchDelay
	}

	result := EloFetchResult{TeamsIn: len(teams)}
	requests := 0
	for _, team := range teams {
		if team.NormalizedTeamName == "" {
			result.InvalidRatings++
			continue
		}

		_, fetchedAt, err := s.eloRepo.History(ctx, team.NormalizedTeamName)
		if err != nil {
			return EloFetchResult{}, fmt.Errorf("load stored history for %s: %w", team.NormalizedTeamName, err)
		}
		if !fetchedAt.IsZero() && sameUTCDay(fetchedAt, s.now()) {
			result.Skipped++
			continue
		}

		if requests > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				return EloFetchResult{}, err
			}
		}
		external, found, err := s.provider.FetchHistory(ctx, team.NormalizedTeamName)
		requests++
		if err != nil {
			return EloFetchResult{}, fmt.Errorf("fetch rating history for %s: %w", team.NormalizedTeamName, err)
		}
		if !found {
			result.Missing++
			if err := s.eloRepo.SaveHistory(ctx, team.NormalizedTeamName, nil, s.now()); err != nil {
				return EloFetchResult{}, fmt.Errorf("record rating miss for %s: %w", team.NormalizedTeamName, err)
			}
			s.logger.DebugContext(ctx, "rating provider does not track club", "team", team.NormalizedTeamName)
			continue
		}

		ratings := make([]clubelo.Rating, 0, len(external))
		for _, row := range external {
			rating := clubelo.Rating{
				Rank:    row.Rank,
				Club:    row.Club,
				Country: row.Country,
				Level:   row.Level,
				Elo:     row.Elo,
				From:    row.From,
				To:      row.To,
			}
			if err := rating.Validate(); err != nil {
				result.InvalidRatings++
				continue
			}
			ratings = append(ratings, rating)
		}
		if err := s.eloRepo.SaveHistory(ctx, team.NormalizedTeamName, ratings, s.now()); err != nil {
			return EloFetchResult{}, fmt.Errorf("save rating history for %s: %w", team.NormalizedTeamName, err)
		}
		result.Fetched++
	}

	s.logger.InfoContext(ctx, "rating fetch pass finished",
		"teams", result.TeamsIn,
		"fetched", result.Fetched,
		"missing", result.Missing,
		"skipped", result.Skipped,
		"invalid_ratings", result.InvalidRatings,
	)
	return result, nil
}

// FormatHistories joins every stored history to the team directory and
// rebuilds the formatted table the attachment path reads. A club listed
// under several leagues produces one row set per league. Histories no
// directory row claims are dropped with a count.
func (s *EloService) FormatHistories(ctx context.Context, directory []clubname.TeamName) (EloFormatResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.FormatHistories")
	defer span.End()

	stored, err := s.eloRepo.ListTeams(ctx)
	if err != nil {
		return EloFormatResult{}, fmt.Errorf("list stored rating teams: %w", err)
	}
	stored = append([]string(nil), stored...)
	sort.Strings(stored)

	directoryByNormalized := make(map[string][]clubname.TeamName)
	for _, team := range directory {
		directoryByNormalized[team.NormalizedTeamName] = append(directoryByNormalized[team.NormalizedTeamName], team)
	}

	result := EloFormatResult{
		Report: dataset.BuildReport{Stage: "format-elos"},
	}
	for _, normalized := range stored {
		rows := directoryByNormalized[normalized]
		ratings, _, err := s.eloRepo.History(ctx, normalized)
		if err != nil {
			return EloFormatResult{}, fmt.Errorf("load stored history for %s: %w", normalized, err)
		}
		result.Report.RowsIn += len(ratings)
		if len(rows) == 0 {
			result.Report.Exclude("history_without_directory_row", normalized, len(ratings))
			continue
		}
		for _, rating := range ratings {
			if rating.From.Before(s.formattedFloor) {
				result.Report.Exclude("before_rating_floor", normalized, 1)
				continue
			}
			for _, row := range rows {
				result.Ratings = append(result.Ratings, clubelo.TeamRating{
					TeamName:           row.TeamName,
					LeagueName:         row.LeagueName,
					NormalizedTeamName: normalized,
					Rating:             rating,
				})
			}
		}
	}

	sort.SliceStable(result.Ratings, func(i, j int) bool {
		if result.Ratings[i].TeamName != result.Ratings[j].TeamName {
			return result.Ratings[i].TeamName < result.Ratings[j].TeamName
		}
		return result.Ratings[i].From.Before(result.Ratings[j].From)
	})
	result.Report.RowsOut = len(result.Ratings)

	if err := s.eloRepo.ReplaceFormatted(ctx, result.Ratings); err != nil {
		return EloFormatResult{}, fmt.Errorf("replace formatted ratings: %w", err)
	}

	return result, nil
}

// RatingOn resolves a club's rating on a date. The interval covering the
// date wins; with no covering interval the latest one starting on or
// before the date applies; with nothing before the date the rating is
// null. Team aliases and league canonicalization apply here, so callers
// pass names exactly as the log rows carry them. Results are memoized per
// (team, league, date).
func (s *EloService) RatingOn(ctx context.Context, team, league string, date time.Time) (*float64, error) {
	lookupTeam := clubname.EloLookupName(team)
	lookupLeague := clubname.CanonicalLeague(league)
	key := lookupTeam + "\x00" + lookupLeague + "\x00" + date.Format("2006-01-02")

	s.lookupMu.Lock()
	if cached, ok := s.lookupMemo[key]; ok {
		s.lookupMu.Unlock()
		return cached.ptr(), nil
	}
	s.lookupMu.Unlock()

	ratings, err := s.eloRepo.ListFormattedByTeam(ctx, lookupTeam, lookupLeague)
	if err != nil {
		return nil, fmt.Errorf("list formatted ratings for %s: %w", lookupTeam, err)
	}

	var resolved eloLookupResult
	for _, rating := range ratings {
		if rating.CoversDate(date) {
			resolved = eloLookupResult{value: rating.Elo, found: true}
			break
		}
	}
	if !resolved.found {
		// Rows arrive from-date ascending; walk back to the newest
		// interval that had started by the lookup date.
		for i := len(ratings) - 1; i >= 0; i-- {
			if !ratings[i].From.After(date) {
				resolved = eloLookupResult{value: ratings[i].Elo, found: true}
				break
			}
		}
	}

	s.lookupMu.Lock()
	s.lookupMemo[key] = resolved
	s.lookupMu.Unlock()

	return resolved.ptr(), nil
}

// AttachEntries resolves both clubs' ratings for every row of one split.
// Misses stay null; they mean the rating source does not cover the club,
// not that the row is bad.
func (s *EloService) AttachEntries(ctx context.Context, split dataset.Split, entries []matchlog.Entry) (EloAttachResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.AttachEntries")
	defer span.End()

	result := EloAttachResult{
		Attachments: make([]clubelo.Attachment, 0, len(entries)),
		RowsIn:      len(entries),
	}
	for _, entry := range entries {
		teamElo, err := s.RatingOn(ctx, entry.Team, entry.League, entry.Date)
		if err != nil {
			return EloAttachResult{}, err
		}
		opponentElo, err := s.RatingOn(ctx, entry.Opponent, entry.League, entry.Date)
		if err != nil {
			return EloAttachResult{}, err
		}

		attachment := clubelo.Attachment{
			Split:         string(split),
			PlayerMatchID: entry.PlayerMatchID(),
			Team:          entry.Team,
			Opponent:      entry.Opponent,
			League:        entry.League,
			MatchDate:     entry.Date,
			TeamElo:       teamElo,
			OpponentElo:   opponentElo,
		}
		if teamElo != nil && opponentElo != nil {
			diff := *teamElo - *opponentElo
			attachment.EloDiff = &diff
			result.FullyAttached++
		}
		if teamElo == nil {
			result.TeamMisses++
		}
		if opponentElo == nil {
			result.OpponentMisses++
		}
		result.Attachments = append(result.Attachments, attachment)
	}

	return result, nil
}

func sameUTCDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// sleepContext waits for d unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
