package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
	qb "github.com/strikerlab/debutform/internal/platform/querybuilder"
)

type EloRepository struct {
	db *sqlx.DB
}

func NewEloRepository(db *sqlx.DB) *EloRepository {
	return &EloRepository{db: db}
}

func (r *EloRepository) SaveHistory(ctx context.Context, normalizedTeam string, ratings []clubelo.Rating, fetchedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save elo history: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	fetchQuery, fetchArgs, err := qb.InsertInto("club_elo_fetches").
		Columns("normalized_team", "fetched_at").
		Values(normalizedTeam, fetchedAt).
		Suffix("ON CONFLICT (normalized_team) DO UPDATE SET fetched_at = EXCLUDED.fetched_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert elo fetch query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fetchQuery, fetchArgs...); err != nil {
		return fmt.Errorf("upsert elo fetch team=%s: %w", normalizedTeam, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM club_elo_ratings WHERE normalized_team = $1", normalizedTeam); err != nil {
		return fmt.Errorf("clear elo ratings team=%s: %w", normalizedTeam, err)
	}
	for _, rating := range ratings {
		query, args, err := qb.InsertModel("club_elo_ratings", eloRatingToInsertModel(normalizedTeam, rating), "")
		if err != nil {
			return fmt.Errorf("build insert elo rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert elo rating team=%s: %w", normalizedTeam, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save elo history tx: %w", err)
	}
	return nil
}

func (r *EloRepository) History(ctx context.Context, normalizedTeam string) ([]clubelo.Rating, time.Time, error) {
	var fetchedAt time.Time
	err := r.db.GetContext(ctx, &fetchedAt,
		"SELECT fetched_at FROM club_elo_fetches WHERE normalized_team = $1", normalizedTeam)
	if err != nil {
		if isNotFound(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("get elo fetch team=%s: %w", normalizedTeam, err)
	}

	query, args, err := qb.Select(eloRatingSelectColumns...).
		From("club_elo_ratings").
		Where(qb.Eq("normalized_team", normalizedTeam)).
		OrderBy("from_date", "id").
		ToSQL()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("build list elo ratings query: %w", err)
	}

	var rows []eloRatingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, time.Time{}, fmt.Errorf("list elo ratings team=%s: %w", normalizedTeam, err)
	}

	out := make([]clubelo.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, eloRatingFromRow(row))
	}
	return out, fetchedAt, nil
}

func (r *EloRepository) ListTeams(ctx context.Context) ([]string, error) {
	var teams []string
	err := r.db.SelectContext(ctx, &teams,
		"SELECT normalized_team FROM club_elo_fetches ORDER BY normalized_team")
	if err != nil {
		return nil, fmt.Errorf("list elo teams: %w", err)
	}
	return teams, nil
}

func (r *EloRepository) ReplaceFormatted(ctx context.Context, ratings []clubelo.TeamRating) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace formatted elos: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM formatted_elos"); err != nil {
		return fmt.Errorf("clear formatted elos: %w", err)
	}
	for _, rating := range ratings {
		query, args, err := qb.InsertModel("formatted_elos", formattedEloToInsertModel(rating), "")
		if err != nil {
			return fmt.Errorf("build insert formatted elo query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert formatted elo team=%s: %w", rating.TeamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace formatted elos tx: %w", err)
	}
	return nil
}

func (r *EloRepository) ListFormatted(ctx context.Context) ([]clubelo.TeamRating, error) {
	query, args, err := formattedEloBaseSelectBuilder().
		OrderBy("team_name", "from_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formatted elos query: %w", err)
	}

	var rows []formattedEloTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list formatted elos: %w", err)
	}

	return formattedElosFromRows(rows), nil
}

// ListFormattedByTeam is the attachment hot path. Poolers in transaction
// mode can reject its two-parameter bind, so it degrades to a single
// array parameter and then to literals, the same ladder other lookups
// here would use.
func (r *EloRepository) ListFormattedByTeam(ctx context.Context, teamName, leagueName string) ([]clubelo.TeamRating, error) {
	query, args, err := formattedEloBaseSelectBuilder().
		Where(
			qb.Eq("team_name", teamName),
			qb.Eq("league_name", leagueName),
		).
		OrderBy("from_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formatted elos by team query: %w", err)
	}

	var rows []formattedEloTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.listFormattedByTeamSingleParam(ctx, teamName, leagueName)
		}
		return nil, fmt.Errorf("list formatted elos by team: %w", err)
	}

	return formattedElosFromRows(rows), nil
}

func (r *EloRepository) listFormattedByTeamSingleParam(ctx context.Context, teamName, leagueName string) ([]clubelo.TeamRating, error) {
	query, _, err := formattedEloBaseSelectBuilder().
		Where(
			qb.Expr("team_name = ($1::text[])[1]"),
			qb.Expr("league_name = ($1::text[])[2]"),
		).
		OrderBy("from_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formatted elos single param fallback query: %w", err)
	}

	var rows []formattedEloTableModel
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array([]string{teamName, leagueName})); err != nil {
		if isUnnamedPreparedStatementMissing(err) {
			return r.listFormattedByTeamLiteral(ctx, teamName, leagueName)
		}
		return nil, fmt.Errorf("list formatted elos by team fallback: %w", err)
	}

	return formattedElosFromRows(rows), nil
}

func (r *EloRepository) listFormattedByTeamLiteral(ctx context.Context, teamName, leagueName string) ([]clubelo.TeamRating, error) {
	query, args, err := formattedEloBaseSelectBuilder().
		Where(
			qb.EqLiteral("team_name", teamName),
			qb.EqLiteral("league_name", leagueName),
		).
		OrderBy("from_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list formatted elos literal fallback query: %w", err)
	}

	var rows []formattedEloTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list formatted elos by team literal fallback: %w", err)
	}

	return formattedElosFromRows(rows), nil
}

func formattedEloBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(formattedEloSelectColumns...).From("formatted_elos")
}

func formattedElosFromRows(rows []formattedEloTableModel) []clubelo.TeamRating {
	out := make([]clubelo.TeamRating, 0, len(rows))
	for _, row := range rows {
		out = append(out, formattedEloFromRow(row))
	}
	return out
}
