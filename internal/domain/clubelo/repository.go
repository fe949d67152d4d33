package clubelo

import (
	"context"
	"time"
)

// Repository stores per-team rating histories and the formatted,
// name-joined table downstream attachment reads.
type Repository interface {
	SaveHistory(ctx context.Context, normalizedTeam string, ratings []Rating, fetchedAt time.Time) error
	History(ctx context.Context, normalizedTeam string) ([]Rating, time.Time, error)
	ListTeams(ctx context.Context) ([]string, error)
	ReplaceFormatted(ctx context.Context, ratings []TeamRating) error
	ListFormatted(ctx context.Context) ([]TeamRating, error)
	ListFormattedByTeam(ctx context.Context, teamName, leagueName string) ([]TeamRating, error)
}
