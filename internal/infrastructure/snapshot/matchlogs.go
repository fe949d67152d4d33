package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

var matchLogColumns = []string{
	"date", "dayofweek", "round", "venue", "result", "team", "opponent",
	"game_started", "position", "minutes", "goals", "assists",
	"pens_made", "pens_att", "shots", "shots_on_target",
	"cards_yellow", "cards_red", "touches", "tackles", "interceptions",
	"blocks", "xg", "npxg", "xg_assist", "sca", "gca",
	"passes_completed", "passes", "passes_pct", "progressive_passes",
	"carries", "progressive_carries", "take_ons", "take_ons_won",
	"player_name", "player_id", "stat_type", "season", "league",
}

// MatchLogStats counts what a decode pass kept and dropped.
type MatchLogStats struct {
	RowsTotal     int
	HeaderRepeats int
	MissingDates  int
	Invalid       int
	Decoded       int
}

// FileHint supplies season and league for scrape batches whose files
// carry them in the path instead of in columns.
type FileHint struct {
	Season string
	League string
}

type matchLogRowDTO struct {
	PlayerName string `validate:"required"`
	PlayerID   string `validate:"required"`
	StatType   string `validate:"required"`
}

// MatchLogs decodes one stats-source scrape file. Rows repeating the
// header inside the body (date column holding the literal word "Date")
// and rows without a parseable date are dropped and counted. Empty cells
// decode to nil, never zero.
func (d *Decoder) MatchLogs(ctx context.Context, r io.Reader, hint FileHint) ([]matchlog.Entry, MatchLogStats, []Warning, error) {
	t, warnings, err := readTable(r)
	if err != nil {
		return nil, MatchLogStats{}, nil, err
	}

	stats := MatchLogStats{RowsTotal: len(t.rows)}
	entries := make([]matchlog.Entry, 0, len(t.rows))
	for i, row := range t.rows {
		rowNum := i + 2

		rawDate := t.cell(row, "date")
		if rawDate == "Date" {
			stats.HeaderRepeats++
			continue
		}
		date, ok := parseDate(rawDate)
		if !ok {
			stats.MissingDates++
			continue
		}

		dto := matchLogRowDTO{
			PlayerName: t.cell(row, "player_name"),
			PlayerID:   t.cell(row, "player_id"),
			StatType:   t.cell(row, "stat_type"),
		}
		if err := d.validate.StructCtx(ctx, dto); err != nil {
			stats.Invalid++
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("validation failed: %v", err)})
			continue
		}

		season := t.cell(row, "season")
		if season == "" {
			season = hint.Season
		}
		league := t.cell(row, "league")
		if league == "" {
			league = hint.League
		}

		entry := matchlog.Entry{
			Date:        date,
			DayOfWeek:   t.cell(row, "dayofweek"),
			Round:       t.cell(row, "round"),
			Venue:       t.cell(row, "venue"),
			Result:      t.cell(row, "result"),
			Team:        t.cell(row, "team"),
			Opponent:    t.cell(row, "opponent"),
			GameStarted: t.cell(row, "game_started"),
			Position:    t.cell(row, "position"),
			PlayerName:  dto.PlayerName,
			PlayerID:    dto.PlayerID,
			StatType:    dto.StatType,
			Season:      season,
			League:      league,
		}

		badCells := 0
		entry.Minutes = intCell(t, row, "minutes", &badCells)
		entry.Goals = intCell(t, row, "goals", &badCells)
		entry.Assists = intCell(t, row, "assists", &badCells)
		entry.PensMade = intCell(t, row, "pens_made", &badCells)
		entry.PensAtt = intCell(t, row, "pens_att", &badCells)
		entry.Shots = intCell(t, row, "shots", &badCells)
		entry.ShotsOnTarget = intCell(t, row, "shots_on_target", &badCells)
		entry.CardsYellow = intCell(t, row, "cards_yellow", &badCells)
		entry.CardsRed = intCell(t, row, "cards_red", &badCells)
		entry.Touches = intCell(t, row, "touches", &badCells)
		entry.Tackles = intCell(t, row, "tackles", &badCells)
		entry.Interceptions = intCell(t, row, "interceptions", &badCells)
		entry.Blocks = intCell(t, row, "blocks", &badCells)
		entry.XG = floatCell(t, row, "xg", &badCells)
		entry.NPXG = floatCell(t, row, "npxg", &badCells)
		entry.XGAssist = floatCell(t, row, "xg_assist", &badCells)
		entry.SCA = floatCell(t, row, "sca", &badCells)
		entry.GCA = floatCell(t, row, "gca", &badCells)
		entry.PassesCompleted = intCell(t, row, "passes_completed", &badCells)
		entry.Passes = intCell(t, row, "passes", &badCells)
		entry.PassesPct = floatCell(t, row, "passes_pct", &badCells)
		entry.ProgressivePasses = intCell(t, row, "progressive_passes", &badCells)
		entry.Carries = intCell(t, row, "carries", &badCells)
		entry.ProgressiveCarries = intCell(t, row, "progressive_carries", &badCells)
		entry.TakeOns = intCell(t, row, "take_ons", &badCells)
		entry.TakeOnsWon = intCell(t, row, "take_ons_won", &badCells)
		if badCells > 0 {
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("%d unparseable stat cells kept as null", badCells)})
		}

		stats.Decoded++
		entries = append(entries, entry)
	}

	return entries, stats, warnings, nil
}

func intCell(t *table, row []string, column string, bad *int) *int {
	v, ok := parseIntPtr(t.cell(row, column))
	if !ok {
		*bad++
		return nil
	}
	return v
}

func floatCell(t *table, row []string, column string, bad *int) *float64 {
	v, ok := parseFloatPtr(t.cell(row, column))
	if !ok {
		*bad++
		return nil
	}
	return v
}

func matchLogRow(e matchlog.Entry) []string {
	return []string{
		formatDate(e.Date), e.DayOfWeek, e.Round, e.Venue, e.Result,
		e.Team, e.Opponent, e.GameStarted, e.Position,
		formatIntPtr(e.Minutes), formatIntPtr(e.Goals), formatIntPtr(e.Assists),
		formatIntPtr(e.PensMade), formatIntPtr(e.PensAtt),
		formatIntPtr(e.Shots), formatIntPtr(e.ShotsOnTarget),
		formatIntPtr(e.CardsYellow), formatIntPtr(e.CardsRed),
		formatIntPtr(e.Touches), formatIntPtr(e.Tackles), formatIntPtr(e.Interceptions),
		formatIntPtr(e.Blocks), formatFloatPtr(e.XG), formatFloatPtr(e.NPXG),
		formatFloatPtr(e.XGAssist), formatFloatPtr(e.SCA), formatFloatPtr(e.GCA),
		formatIntPtr(e.PassesCompleted), formatIntPtr(e.Passes), formatFloatPtr(e.PassesPct),
		formatIntPtr(e.ProgressivePasses), formatIntPtr(e.Carries),
		formatIntPtr(e.ProgressiveCarries), formatIntPtr(e.TakeOns), formatIntPtr(e.TakeOnsWon),
		e.PlayerName, e.PlayerID, e.StatType, e.Season, e.League,
	}
}

var postTransferColumns = append(append([]string(nil), matchLogColumns...),
	"transfer_id", "transfer_date", "from_club", "to_club",
	"match_number_after_transfer", "days_since_transfer",
)

// WritePostTransferLogs writes the annotated first-N-matches artifact.
func WritePostTransferLogs(path string, entries []matchlog.PostTransferEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := matchLogRow(e.Entry)
		row = append(row,
			e.TransferID,
			formatDate(e.TransferDate),
			e.FromClub,
			e.ToClub,
			fmt.Sprintf("%d", e.MatchNumberAfterTransfer),
			fmt.Sprintf("%d", e.DaysSinceTransfer),
		)
		rows = append(rows, row)
	}
	return writeCSVFile(path, postTransferColumns, rows)
}

var trainColumns = append(append([]string(nil), matchLogColumns...),
	"match_id", "player_match_id",
)

// WriteTrainLogs writes the train split with its identity keys.
func WriteTrainLogs(path string, entries []matchlog.Entry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := matchLogRow(e)
		row = append(row, e.MatchID(), e.PlayerMatchID())
		rows = append(rows, row)
	}
	return writeCSVFile(path, trainColumns, rows)
}

// TestRow is one test-split row: a labeled post-transfer outcome or a
// pre-transfer history row carried as feature input.
type TestRow struct {
	Entry                    matchlog.Entry
	Role                     dataset.Role
	TransferID               string
	TransferDate             string
	MatchNumberAfterTransfer int
	DaysSinceTransfer        int
}

var testColumns = append(append([]string(nil), matchLogColumns...),
	"match_id", "player_match_id", "row_role",
	"transfer_id", "transfer_date", "match_number_after_transfer", "days_since_transfer",
)

// WriteTestLogs writes the test split. History rows leave the transfer
// annotation columns empty.
func WriteTestLogs(path string, rows []TestRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := matchLogRow(r.Entry)
		row = append(row, r.Entry.MatchID(), r.Entry.PlayerMatchID(), string(r.Role), r.TransferID, r.TransferDate)
		if r.Role == dataset.RoleOutcome {
			row = append(row, fmt.Sprintf("%d", r.MatchNumberAfterTransfer), fmt.Sprintf("%d", r.DaysSinceTransfer))
		} else {
			row = append(row, "", "")
		}
		out = append(out, row)
	}
	return writeCSVFile(path, testColumns, out)
}
