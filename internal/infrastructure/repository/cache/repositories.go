package cache

import (
	"context"
	"time"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	"github.com/strikerlab/debutform/internal/domain/transfer"
	basecache "github.com/strikerlab/debutform/internal/platform/cache"
)

type EloRepository struct {
	next  clubelo.Repository
	cache *basecache.Store
}

func NewEloRepository(next clubelo.Repository, cache *basecache.Store) *EloRepository {
	return &EloRepository{next: next, cache: cache}
}

func (r *EloRepository) SaveHistory(ctx context.Context, normalizedTeam string, ratings []clubelo.Rating, fetchedAt time.Time) error {
	if err := r.next.SaveHistory(ctx, normalizedTeam, ratings, fetchedAt); err != nil {
		return err
	}
	r.cache.Delete(ctx, eloHistoryKey(normalizedTeam))
	r.cache.Delete(ctx, "elo:teams")
	return nil
}

func (r *EloRepository) History(ctx context.Context, normalizedTeam string) ([]clubelo.Rating, time.Time, error) {
	key := eloHistoryKey(normalizedTeam)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		ratings, fetchedAt, err := r.next.History(ctx, normalizedTeam)
		if err != nil {
			return nil, err
		}
		return cachedEloHistory{
			ratings:   append([]clubelo.Rating(nil), ratings...),
			fetchedAt: fetchedAt,
		}, nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}

	cached, _ := v.(cachedEloHistory)
	return append([]clubelo.Rating(nil), cached.ratings...), cached.fetchedAt, nil
}

func (r *EloRepository) ListTeams(ctx context.Context) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, "elo:teams", func(ctx context.Context) (any, error) {
		teams, err := r.next.ListTeams(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), teams...), nil
	})
	if err != nil {
		return nil, err
	}

	teams, _ := v.([]string)
	return append([]string(nil), teams...), nil
}

func (r *EloRepository) ReplaceFormatted(ctx context.Context, ratings []clubelo.TeamRating) error {
	if err := r.next.ReplaceFormatted(ctx, ratings); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "elo:formatted:")
	return nil
}

func (r *EloRepository) ListFormatted(ctx context.Context) ([]clubelo.TeamRating, error) {
	v, err := r.cache.GetOrLoad(ctx, "elo:formatted:all", func(ctx context.Context) (any, error) {
		items, err := r.next.ListFormatted(ctx)
		if err != nil {
			return nil, err
		}
		return append([]clubelo.TeamRating(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]clubelo.TeamRating)
	return append([]clubelo.TeamRating(nil), items...), nil
}

func (r *EloRepository) ListFormattedByTeam(ctx context.Context, teamName, leagueName string) ([]clubelo.TeamRating, error) {
	key := "elo:formatted:team:" + teamName + ":" + leagueName
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListFormattedByTeam(ctx, teamName, leagueName)
		if err != nil {
			return nil, err
		}
		return append([]clubelo.TeamRating(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]clubelo.TeamRating)
	return append([]clubelo.TeamRating(nil), items...), nil
}

type cachedEloHistory struct {
	ratings   []clubelo.Rating
	fetchedAt time.Time
}

func eloHistoryKey(normalizedTeam string) string {
	return "elo:history:" + normalizedTeam
}

type ClubRepository struct {
	next  transfer.ClubRepository
	cache *basecache.Store
}

func NewClubRepository(next transfer.ClubRepository, cache *basecache.Store) *ClubRepository {
	return &ClubRepository{next: next, cache: cache}
}

func (r *ClubRepository) UpsertClubs(ctx context.Context, clubs []transfer.Club) error {
	if err := r.next.UpsertClubs(ctx, clubs); err != nil {
		return err
	}
	r.cache.Delete(ctx, "club:list")
	return nil
}

func (r *ClubRepository) ListClubs(ctx context.Context) ([]transfer.Club, error) {
	v, err := r.cache.GetOrLoad(ctx, "club:list", func(ctx context.Context) (any, error) {
		clubs, err := r.next.ListClubs(ctx)
		if err != nil {
			return nil, err
		}
		return append([]transfer.Club(nil), clubs...), nil
	})
	if err != nil {
		return nil, err
	}

	clubs, _ := v.([]transfer.Club)
	return append([]transfer.Club(nil), clubs...), nil
}
