package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/strikerlab/debutform/internal/domain/transfer"
	qb "github.com/strikerlab/debutform/internal/platform/querybuilder"
)

type TransferRepository struct {
	db *sqlx.DB
}

func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferUpsertSuffix = `ON CONFLICT (player_id, transfer_date, from_club_id, to_club_id)
DO UPDATE SET
    player_name = EXCLUDED.player_name,
    transfer_season = EXCLUDED.transfer_season,
    from_club_name = EXCLUDED.from_club_name,
    to_club_name = EXCLUDED.to_club_name,
    transfer_fee = EXCLUDED.transfer_fee,
    market_value_in_eur = EXCLUDED.market_value_in_eur`

func (r *TransferRepository) UpsertRecords(ctx context.Context, records []transfer.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert transfers: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, record := range records {
		query, args, err := qb.InsertModel("transfers", transferToInsertModel(record), transferUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert transfer query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert transfer player_id=%d: %w", record.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert transfers tx: %w", err)
	}
	return nil
}

// ListRecords returns transfers in first-ingest order. The transfer
// selector's first-wins dedup depends on that order.
func (r *TransferRepository) ListRecords(ctx context.Context) ([]transfer.Record, error) {
	query, args, err := qb.Select(transferSelectColumns...).
		From("transfers").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfers query: %w", err)
	}

	var rows []transferTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	out := make([]transfer.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, transferFromRow(row))
	}
	return out, nil
}

func (r *TransferRepository) ReplaceMapped(ctx context.Context, transfers []transfer.Mapped) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace mapped transfers: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM mapped_transfers"); err != nil {
		return fmt.Errorf("clear mapped transfers: %w", err)
	}
	for _, m := range transfers {
		query, args, err := qb.InsertModel("mapped_transfers", mappedToInsertModel(m), "")
		if err != nil {
			return fmt.Errorf("build insert mapped transfer query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert mapped transfer player_id=%d: %w", m.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace mapped transfers tx: %w", err)
	}
	return nil
}

func (r *TransferRepository) ListMapped(ctx context.Context) ([]transfer.Mapped, error) {
	query, args, err := qb.Select(mappedTransferSelectColumns...).
		From("mapped_transfers").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list mapped transfers query: %w", err)
	}

	var rows []mappedTransferTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list mapped transfers: %w", err)
	}

	out := make([]transfer.Mapped, 0, len(rows))
	for _, row := range rows {
		out = append(out, mappedFromRow(row))
	}
	return out, nil
}

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

const clubUpsertSuffix = `ON CONFLICT (club_id)
DO UPDATE SET
    club_code = EXCLUDED.club_code,
    name = EXCLUDED.name,
    domestic_competition_id = EXCLUDED.domestic_competition_id,
    squad_size = EXCLUDED.squad_size,
    average_age = EXCLUDED.average_age,
    foreigners_number = EXCLUDED.foreigners_number,
    national_team_players = EXCLUDED.national_team_players,
    stadium_name = EXCLUDED.stadium_name,
    stadium_seats = EXCLUDED.stadium_seats,
    last_season = EXCLUDED.last_season`

func (r *ClubRepository) UpsertClubs(ctx context.Context, clubs []transfer.Club) error {
	if len(clubs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert clubs: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, club := range clubs {
		query, args, err := qb.InsertModel("clubs", clubToInsertModel(club), clubUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert club query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert club club_id=%d: %w", club.ClubID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert clubs tx: %w", err)
	}
	return nil
}

func (r *ClubRepository) ListClubs(ctx context.Context) ([]transfer.Club, error) {
	query, args, err := qb.Select(clubSelectColumns...).
		From("clubs").
		OrderBy("club_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	out := make([]transfer.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, clubFromRow(row))
	}
	return out, nil
}
