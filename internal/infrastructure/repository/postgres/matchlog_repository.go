package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strikerlab/debutform/internal/domain/matchlog"
	qb "github.com/strikerlab/debutform/internal/platform/querybuilder"
)

type MatchLogRepository struct {
	db *sqlx.DB
}

func NewMatchLogRepository(db *sqlx.DB) *MatchLogRepository {
	return &MatchLogRepository{db: db}
}

const matchLogUpsertSuffix = `ON CONFLICT (player_match_id, stat_type)
DO UPDATE SET
    match_date = EXCLUDED.match_date,
    dayofweek = EXCLUDED.dayofweek,
    round = EXCLUDED.round,
    venue = EXCLUDED.venue,
    result = EXCLUDED.result,
    game_started = EXCLUDED.game_started,
    position = EXCLUDED.position,
    minutes = EXCLUDED.minutes,
    goals = EXCLUDED.goals,
    assists = EXCLUDED.assists,
    pens_made = EXCLUDED.pens_made,
    pens_att = EXCLUDED.pens_att,
    shots = EXCLUDED.shots,
    shots_on_target = EXCLUDED.shots_on_target,
    cards_yellow = EXCLUDED.cards_yellow,
    cards_red = EXCLUDED.cards_red,
    touches = EXCLUDED.touches,
    tackles = EXCLUDED.tackles,
    interceptions = EXCLUDED.interceptions,
    blocks = EXCLUDED.blocks,
    xg = EXCLUDED.xg,
    npxg = EXCLUDED.npxg,
    xg_assist = EXCLUDED.xg_assist,
    sca = EXCLUDED.sca,
    gca = EXCLUDED.gca,
    passes_completed = EXCLUDED.passes_completed,
    passes = EXCLUDED.passes,
    passes_pct = EXCLUDED.passes_pct,
    progressive_passes = EXCLUDED.progressive_passes,
    carries = EXCLUDED.carries,
    progressive_carries = EXCLUDED.progressive_carries,
    take_ons = EXCLUDED.take_ons,
    take_ons_won = EXCLUDED.take_ons_won,
    player_name = EXCLUDED.player_name,
    season = EXCLUDED.season,
    league = EXCLUDED.league`

func (r *MatchLogRepository) UpsertEntries(ctx context.Context, entries []matchlog.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert match logs: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		query, args, err := qb.InsertModel("match_logs", matchLogToInsertModel(entry), matchLogUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert match log query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match log player_match_id=%s: %w", entry.PlayerMatchID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert match logs tx: %w", err)
	}
	return nil
}

func (r *MatchLogRepository) ListEntries(ctx context.Context) ([]matchlog.Entry, error) {
	return r.list(ctx, nil)
}

func (r *MatchLogRepository) ListByPlayer(ctx context.Context, playerID string) ([]matchlog.Entry, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("player_id", playerID)})
}

func (r *MatchLogRepository) ListByPlayerBefore(ctx context.Context, playerID string, before time.Time) ([]matchlog.Entry, error) {
	return r.list(ctx, []qb.Condition{
		qb.Eq("player_id", playerID),
		qb.Lt("match_date", before),
	})
}

func (r *MatchLogRepository) list(ctx context.Context, conditions []qb.Condition) ([]matchlog.Entry, error) {
	builder := qb.Select(matchLogSelectColumns...).
		From("match_logs").
		OrderBy("match_date", "player_id", "id")
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match logs query: %w", err)
	}

	var rows []matchLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match logs: %w", err)
	}

	out := make([]matchlog.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchLogFromRow(row))
	}
	return out, nil
}

func (r *MatchLogRepository) ReplacePostTransfer(ctx context.Context, entries []matchlog.PostTransferEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace post-transfer logs: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM post_transfer_logs"); err != nil {
		return fmt.Errorf("clear post-transfer logs: %w", err)
	}
	for _, entry := range entries {
		query, args, err := qb.InsertModel("post_transfer_logs", postTransferToInsertModel(entry), "")
		if err != nil {
			return fmt.Errorf("build insert post-transfer log query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert post-transfer log transfer_id=%s: %w", entry.TransferID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace post-transfer logs tx: %w", err)
	}
	return nil
}

func (r *MatchLogRepository) ListPostTransfer(ctx context.Context) ([]matchlog.PostTransferEntry, error) {
	query, args, err := qb.Select(postTransferSelectColumns...).
		From("post_transfer_logs").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list post-transfer logs query: %w", err)
	}

	var rows []postTransferTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list post-transfer logs: %w", err)
	}

	out := make([]matchlog.PostTransferEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, postTransferFromRow(row))
	}
	return out, nil
}
