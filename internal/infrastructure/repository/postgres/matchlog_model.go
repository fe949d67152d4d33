package postgres

import (
	"database/sql"
	"time"

	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

type matchLogTableModel struct {
	MatchDate   time.Time `db:"match_date"`
	DayOfWeek   string    `db:"dayofweek"`
	Round       string    `db:"round"`
	Venue       string    `db:"venue"`
	Result      string    `db:"result"`
	Team        string    `db:"team"`
	Opponent    string    `db:"opponent"`
	GameStarted string    `db:"game_started"`
	Position    string    `db:"position"`

	Minutes            sql.NullInt64   `db:"minutes"`
	Goals              sql.NullInt64   `db:"goals"`
	Assists            sql.NullInt64   `db:"assists"`
	PensMade           sql.NullInt64   `db:"pens_made"`
	PensAtt            sql.NullInt64   `db:"pens_att"`
	Shots              sql.NullInt64   `db:"shots"`
	ShotsOnTarget      sql.NullInt64   `db:"shots_on_target"`
	CardsYellow        sql.NullInt64   `db:"cards_yellow"`
	CardsRed           sql.NullInt64   `db:"cards_red"`
	Touches            sql.NullInt64   `db:"touches"`
	Tackles            sql.NullInt64   `db:"tackles"`
	Interceptions      sql.NullInt64   `db:"interceptions"`
	Blocks             sql.NullInt64   `db:"blocks"`
	XG                 sql.NullFloat64 `db:"xg"`
	NPXG               sql.NullFloat64 `db:"npxg"`
	XGAssist           sql.NullFloat64 `db:"xg_assist"`
	SCA                sql.NullFloat64 `db:"sca"`
	GCA                sql.NullFloat64 `db:"gca"`
	PassesCompleted    sql.NullInt64   `db:"passes_completed"`
	Passes             sql.NullInt64   `db:"passes"`
	PassesPct          sql.NullFloat64 `db:"passes_pct"`
	ProgressivePasses  sql.NullInt64   `db:"progressive_passes"`
	Carries            sql.NullInt64   `db:"carries"`
	ProgressiveCarries sql.NullInt64   `db:"progressive_carries"`
	TakeOns            sql.NullInt64   `db:"take_ons"`
	TakeOnsWon         sql.NullInt64   `db:"take_ons_won"`

	PlayerName string `db:"player_name"`
	PlayerID   string `db:"player_id"`
	StatType   string `db:"stat_type"`
	Season     string `db:"season"`
	League     string `db:"league"`
}

type matchLogInsertModel struct {
	PlayerMatchID string    `db:"player_match_id"`
	MatchDate     time.Time `db:"match_date"`
	DayOfWeek     string    `db:"dayofweek"`
	Round         string    `db:"round"`
	Venue         string    `db:"venue"`
	Result        string    `db:"result"`
	Team          string    `db:"team"`
	Opponent      string    `db:"opponent"`
	GameStarted   string    `db:"game_started"`
	Position      string    `db:"position"`

	Minutes            *int64   `db:"minutes"`
	Goals              *int64   `db:"goals"`
	Assists            *int64   `db:"assists"`
	PensMade           *int64   `db:"pens_made"`
	PensAtt            *int64   `db:"pens_att"`
	Shots              *int64   `db:"shots"`
	ShotsOnTarget      *int64   `db:"shots_on_target"`
	CardsYellow        *int64   `db:"cards_yellow"`
	CardsRed           *int64   `db:"cards_red"`
	Touches            *int64   `db:"touches"`
	Tackles            *int64   `db:"tackles"`
	Interceptions      *int64   `db:"interceptions"`
	Blocks             *int64   `db:"blocks"`
	XG                 *float64 `db:"xg"`
	NPXG               *float64 `db:"npxg"`
	XGAssist           *float64 `db:"xg_assist"`
	SCA                *float64 `db:"sca"`
	GCA                *float64 `db:"gca"`
	PassesCompleted    *int64   `db:"passes_completed"`
	Passes             *int64   `db:"passes"`
	PassesPct          *float64 `db:"passes_pct"`
	ProgressivePasses  *int64   `db:"progressive_passes"`
	Carries            *int64   `db:"carries"`
	ProgressiveCarries *int64   `db:"progressive_carries"`
	TakeOns            *int64   `db:"take_ons"`
	TakeOnsWon         *int64   `db:"take_ons_won"`

	PlayerName string `db:"player_name"`
	PlayerID   string `db:"player_id"`
	StatType   string `db:"stat_type"`
	Season     string `db:"season"`
	League     string `db:"league"`
}

var matchLogSelectColumns = []string{
	"match_date", "dayofweek", "round", "venue", "result", "team", "opponent",
	"game_started", "position", "minutes", "goals", "assists",
	"pens_made", "pens_att", "shots", "shots_on_target",
	"cards_yellow", "cards_red", "touches", "tackles", "interceptions",
	"blocks", "xg", "npxg", "xg_assist", "sca", "gca",
	"passes_completed", "passes", "passes_pct", "progressive_passes",
	"carries", "progressive_carries", "take_ons", "take_ons_won",
	"player_name", "player_id", "stat_type", "season", "league",
}

func matchLogFromRow(row matchLogTableModel) matchlog.Entry {
	return matchlog.Entry{
		Date:        row.MatchDate,
		DayOfWeek:   row.DayOfWeek,
		Round:       row.Round,
		Venue:       row.Venue,
		Result:      row.Result,
		Team:        row.Team,
		Opponent:    row.Opponent,
		GameStarted: row.GameStarted,
		Position:    row.Position,

		Minutes:            nullInt64ToIntPtr(row.Minutes),
		Goals:              nullInt64ToIntPtr(row.Goals),
		Assists:            nullInt64ToIntPtr(row.Assists),
		PensMade:           nullInt64ToIntPtr(row.PensMade),
		PensAtt:            nullInt64ToIntPtr(row.PensAtt),
		Shots:              nullInt64ToIntPtr(row.Shots),
		ShotsOnTarget:      nullInt64ToIntPtr(row.ShotsOnTarget),
		CardsYellow:        nullInt64ToIntPtr(row.CardsYellow),
		CardsRed:           nullInt64ToIntPtr(row.CardsRed),
		Touches:            nullInt64ToIntPtr(row.Touches),
		Tackles:            nullInt64ToIntPtr(row.Tackles),
		Interceptions:      nullInt64ToIntPtr(row.Interceptions),
		Blocks:             nullInt64ToIntPtr(row.Blocks),
		XG:                 nullFloat64ToPtr(row.XG),
		NPXG:               nullFloat64ToPtr(row.NPXG),
		XGAssist:           nullFloat64ToPtr(row.XGAssist),
		SCA:                nullFloat64ToPtr(row.SCA),
		GCA:                nullFloat64ToPtr(row.GCA),
		PassesCompleted:    nullInt64ToIntPtr(row.PassesCompleted),
		Passes:             nullInt64ToIntPtr(row.Passes),
		PassesPct:          nullFloat64ToPtr(row.PassesPct),
		ProgressivePasses:  nullInt64ToIntPtr(row.ProgressivePasses),
		Carries:            nullInt64ToIntPtr(row.Carries),
		ProgressiveCarries: nullInt64ToIntPtr(row.ProgressiveCarries),
		TakeOns:            nullInt64ToIntPtr(row.TakeOns),
		TakeOnsWon:         nullInt64ToIntPtr(row.TakeOnsWon),

		PlayerName: row.PlayerName,
		PlayerID:   row.PlayerID,
		StatType:   row.StatType,
		Season:     row.Season,
		League:     row.League,
	}
}

func matchLogToInsertModel(e matchlog.Entry) matchLogInsertModel {
	return matchLogInsertModel{
		PlayerMatchID: e.PlayerMatchID(),
		MatchDate:     e.Date,
		DayOfWeek:     e.DayOfWeek,
		Round:         e.Round,
		Venue:         e.Venue,
		Result:        e.Result,
		Team:          e.Team,
		Opponent:      e.Opponent,
		GameStarted:   e.GameStarted,
		Position:      e.Position,

		Minutes:            intPtrToNullable(e.Minutes),
		Goals:              intPtrToNullable(e.Goals),
		Assists:            intPtrToNullable(e.Assists),
		PensMade:           intPtrToNullable(e.PensMade),
		PensAtt:            intPtrToNullable(e.PensAtt),
		Shots:              intPtrToNullable(e.Shots),
		ShotsOnTarget:      intPtrToNullable(e.ShotsOnTarget),
		CardsYellow:        intPtrToNullable(e.CardsYellow),
		CardsRed:           intPtrToNullable(e.CardsRed),
		Touches:            intPtrToNullable(e.Touches),
		Tackles:            intPtrToNullable(e.Tackles),
		Interceptions:      intPtrToNullable(e.Interceptions),
		Blocks:             intPtrToNullable(e.Blocks),
		XG:                 e.XG,
		NPXG:               e.NPXG,
		XGAssist:           e.XGAssist,
		SCA:                e.SCA,
		GCA:                e.GCA,
		PassesCompleted:    intPtrToNullable(e.PassesCompleted),
		Passes:             intPtrToNullable(e.Passes),
		PassesPct:          e.PassesPct,
		ProgressivePasses:  intPtrToNullable(e.ProgressivePasses),
		Carries:            intPtrToNullable(e.Carries),
		ProgressiveCarries: intPtrToNullable(e.ProgressiveCarries),
		TakeOns:            intPtrToNullable(e.TakeOns),
		TakeOnsWon:         intPtrToNullable(e.TakeOnsWon),

		PlayerName: e.PlayerName,
		PlayerID:   e.PlayerID,
		StatType:   e.StatType,
		Season:     e.Season,
		League:     e.League,
	}
}

type postTransferTableModel struct {
	matchLogTableModel
	TransferID               string    `db:"transfer_id"`
	TransferDate             time.Time `db:"transfer_date"`
	FromClub                 string    `db:"from_club"`
	ToClub                   string    `db:"to_club"`
	MatchNumberAfterTransfer int       `db:"match_number_after_transfer"`
	DaysSinceTransfer        int       `db:"days_since_transfer"`
}

type postTransferInsertModel struct {
	matchLogInsertModel
	TransferID               string    `db:"transfer_id"`
	TransferDate             time.Time `db:"transfer_date"`
	FromClub                 string    `db:"from_club"`
	ToClub                   string    `db:"to_club"`
	MatchNumberAfterTransfer int       `db:"match_number_after_transfer"`
	DaysSinceTransfer        int       `db:"days_since_transfer"`
}

var postTransferSelectColumns = append(append([]string(nil), matchLogSelectColumns...),
	"transfer_id", "transfer_date", "from_club", "to_club",
	"match_number_after_transfer", "days_since_transfer",
)

func postTransferFromRow(row postTransferTableModel) matchlog.PostTransferEntry {
	return matchlog.PostTransferEntry{
		Entry:                    matchLogFromRow(row.matchLogTableModel),
		TransferID:               row.TransferID,
		TransferDate:             row.TransferDate,
		FromClub:                 row.FromClub,
		ToClub:                   row.ToClub,
		MatchNumberAfterTransfer: row.MatchNumberAfterTransfer,
		DaysSinceTransfer:        row.DaysSinceTransfer,
	}
}

func postTransferToInsertModel(p matchlog.PostTransferEntry) postTransferInsertModel {
	return postTransferInsertModel{
		matchLogInsertModel:      matchLogToInsertModel(p.Entry),
		TransferID:               p.TransferID,
		TransferDate:             p.TransferDate,
		FromClub:                 p.FromClub,
		ToClub:                   p.ToClub,
		MatchNumberAfterTransfer: p.MatchNumberAfterTransfer,
		DaysSinceTransfer:        p.DaysSinceTransfer,
	}
}
