package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
)

type eloHistory struct {
	ratings   []clubelo.Rating
	fetchedAt time.Time
}

type EloRepository struct {
	mu        sync.RWMutex
	histories map[string]eloHistory
	formatted []clubelo.TeamRating
}

func NewEloRepository() *EloRepository {
	return &EloRepository{histories: make(map[string]eloHistory)}
}

func (r *EloRepository) SaveHistory(_ context.Context, normalizedTeam string, ratings []clubelo.Rating, fetchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.histories[normalizedTeam] = eloHistory{
		ratings:   append([]clubelo.Rating(nil), ratings...),
		fetchedAt: fetchedAt,
	}

	return nil
}

// History returns a team's stored ratings and when they were fetched. An
// unknown team returns an empty history and a zero fetch time.
func (r *EloRepository) History(_ context.Context, normalizedTeam string) ([]clubelo.Rating, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.histories[normalizedTeam]
	if !ok {
		return nil, time.Time{}, nil
	}
	out := make([]clubelo.Rating, 0, len(h.ratings))
	out = append(out, h.ratings...)

	return out, h.fetchedAt, nil
}

func (r *EloRepository) ListTeams(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.histories))
	for team := range r.histories {
		out = append(out, team)
	}
	sort.Strings(out)

	return out, nil
}

func (r *EloRepository) ReplaceFormatted(_ context.Context, ratings []clubelo.TeamRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formatted = append([]clubelo.TeamRating(nil), ratings...)
	return nil
}

func (r *EloRepository) ListFormatted(_ context.Context) ([]clubelo.TeamRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clubelo.TeamRating, 0, len(r.formatted))
	out = append(out, r.formatted...)

	return out, nil
}

func (r *EloRepository) ListFormattedByTeam(_ context.Context, teamName, leagueName string) ([]clubelo.TeamRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clubelo.TeamRating, 0, 8)
	for _, rating := range r.formatted {
		if rating.TeamName == teamName && rating.LeagueName == leagueName {
			out = append(out, rating)
		}
	}

	return out, nil
}
