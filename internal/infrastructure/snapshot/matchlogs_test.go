package snapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/strikerlab/debutform/internal/domain/dataset"
	"github.com/strikerlab/debutform/internal/domain/matchlog"
)

const matchLogTestHeader = "date,team,opponent,minutes,goals,xg,player_name,player_id,stat_type,season,league"

func matchLogCSV(rows ...string) string {
	return matchLogTestHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestMatchLogs_DropsRepeatedHeaderRows(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		"2023-08-13,Chelsea,Liverpool,90,0,0.3,Moises Caicedo,abc123,summary,23/24,PremierLeague",
		"Date,Squad,Opponent,Min,Gls,xG,Player,PlayerID,Stat,Season,League",
		"2023-08-20,Chelsea,West Ham,78,1,0.8,Moises Caicedo,abc123,summary,23/24,PremierLeague",
	)

	entries, stats, _, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), FileHint{})
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if stats.RowsTotal != 3 {
		t.Fatalf("expected rows_total=3, got=%d", stats.RowsTotal)
	}
	if stats.HeaderRepeats != 1 {
		t.Fatalf("expected header_repeats=1, got=%d", stats.HeaderRepeats)
	}
	if stats.Decoded != 2 || len(entries) != 2 {
		t.Fatalf("expected 2 decoded entries, got stats=%d len=%d", stats.Decoded, len(entries))
	}
}

func TestMatchLogs_DropsRowsWithoutDates(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		",Chelsea,Arsenal,45,0,0.1,Moises Caicedo,abc123,summary,23/24,PremierLeague",
		"not a date,Chelsea,Arsenal,45,0,0.1,Moises Caicedo,abc123,summary,23/24,PremierLeague",
		"2023-10-21,Chelsea,Arsenal,90,0,0.4,Moises Caicedo,abc123,summary,23/24,PremierLeague",
	)

	entries, stats, _, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), FileHint{})
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if stats.MissingDates != 2 {
		t.Fatalf("expected missing_dates=2, got=%d", stats.MissingDates)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 surviving entry, got=%d", len(entries))
	}
	if got := entries[0].Date.Format("2006-01-02"); got != "2023-10-21" {
		t.Fatalf("expected surviving date 2023-10-21, got=%s", got)
	}
}

func TestMatchLogs_EmptyCellsDecodeToNull(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		"2023-08-13,Chelsea,Liverpool,,,,Moises Caicedo,abc123,summary,23/24,PremierLeague",
		"2023-08-20,Chelsea,West Ham,78,0,0.8,Moises Caicedo,abc123,summary,23/24,PremierLeague",
	)

	entries, _, warnings, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), FileHint{})
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got=%d", len(entries))
	}
	if len(warnings) != 0 {
		t.Fatalf("expected empty cells to decode without warnings, got=%v", warnings)
	}

	blank := entries[0]
	if blank.Minutes != nil || blank.Goals != nil || blank.XG != nil {
		t.Fatalf("expected empty cells to stay nil, got minutes=%v goals=%v xg=%v", blank.Minutes, blank.Goals, blank.XG)
	}
	if scored, known := blank.Scored(); known || scored {
		t.Fatalf("expected unknown scored for nil goals, got scored=%v known=%v", scored, known)
	}

	filled := entries[1]
	if filled.Goals == nil || *filled.Goals != 0 {
		t.Fatalf("expected explicit zero goals to decode as 0, got=%v", filled.Goals)
	}
	if scored, known := filled.Scored(); !known || scored {
		t.Fatalf("expected known non-scoring row, got scored=%v known=%v", scored, known)
	}
	if filled.XG == nil || *filled.XG != 0.8 {
		t.Fatalf("expected xg=0.8, got=%v", filled.XG)
	}
}

func TestMatchLogs_UnparseableStatCellsWarnAndStayNull(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		"2023-08-13,Chelsea,Liverpool,On matchday squad,0,0.3,Moises Caicedo,abc123,summary,23/24,PremierLeague",
	)

	entries, stats, warnings, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), FileHint{})
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if stats.Decoded != 1 {
		t.Fatalf("expected row to survive, decoded=%d", stats.Decoded)
	}
	if entries[0].Minutes != nil {
		t.Fatalf("expected unparseable minutes to stay nil, got=%v", entries[0].Minutes)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 bad-cell warning, got=%v", warnings)
	}
}

func TestMatchLogs_FileHintFillsSeasonAndLeague(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		"2023-08-13,Chelsea,Liverpool,90,0,0.3,Moises Caicedo,abc123,summary,,",
		"2023-08-20,Chelsea,West Ham,78,1,0.8,Moises Caicedo,abc123,summary,22/23,LaLiga",
	)

	hint := FileHint{Season: "23/24", League: "PremierLeague"}
	entries, _, _, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), hint)
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if entries[0].Season != "23/24" || entries[0].League != "PremierLeague" {
		t.Fatalf("expected hint fallback, got season=%q league=%q", entries[0].Season, entries[0].League)
	}
	if entries[1].Season != "22/23" || entries[1].League != "LaLiga" {
		t.Fatalf("expected explicit cells to win over the hint, got season=%q league=%q", entries[1].Season, entries[1].League)
	}
}

func TestMatchLogs_SkipsRowsMissingPlayerIdentity(t *testing.T) {
	t.Parallel()

	in := matchLogCSV(
		"2023-08-13,Chelsea,Liverpool,90,0,0.3,Moises Caicedo,,summary,23/24,PremierLeague",
	)

	entries, stats, warnings, err := NewDecoder().MatchLogs(context.Background(), strings.NewReader(in), FileHint{})
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if stats.Invalid != 1 || len(entries) != 0 {
		t.Fatalf("expected row without player_id to be dropped, invalid=%d len=%d", stats.Invalid, len(entries))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected validation warning, got=%v", warnings)
	}
}

func TestWriteTestLogs_HistoryRowsLeaveAnnotationsEmpty(t *testing.T) {
	t.Parallel()

	entry := matchlog.Entry{
		Date:       mustDate(t, "2024-09-14"),
		Team:       "Arsenal",
		Opponent:   "Tottenham",
		PlayerName: "Riccardo Calafiori",
		PlayerID:   "xyz987",
		StatType:   "summary",
	}
	rows := []TestRow{
		{
			Entry:                    entry,
			Role:                     dataset.RoleOutcome,
			TransferID:               "Riccardo Calafiori_Bologna_Arsenal_2024-07-29",
			TransferDate:             "2024-07-29",
			MatchNumberAfterTransfer: 3,
			DaysSinceTransfer:        47,
		},
		{Entry: entry, Role: dataset.RoleHistory, TransferID: "Riccardo Calafiori_Bologna_Arsenal_2024-07-29", TransferDate: "2024-07-29"},
	}

	path := writeTempCSV(t, func(path string) error { return WriteTestLogs(path, rows) })
	table := readTempCSV(t, path)

	if len(table.rows) != 2 {
		t.Fatalf("expected 2 rows, got=%d", len(table.rows))
	}
	outcome := table.rows[0]
	if got := table.cell(outcome, "row_role"); got != "outcome" {
		t.Fatalf("expected row_role=outcome, got=%q", got)
	}
	if got := table.cell(outcome, "match_number_after_transfer"); got != "3" {
		t.Fatalf("expected match_number_after_transfer=3, got=%q", got)
	}
	if got := table.cell(outcome, "player_match_id"); got != "xyz987_Arsenal_Tottenham_2024-09-14" {
		t.Fatalf("unexpected player_match_id: %q", got)
	}

	history := table.rows[1]
	if got := table.cell(history, "row_role"); got != "history" {
		t.Fatalf("expected row_role=history, got=%q", got)
	}
	if got := table.cell(history, "match_number_after_transfer"); got != "" {
		t.Fatalf("expected empty match number on history row, got=%q", got)
	}
	if got := table.cell(history, "days_since_transfer"); got != "" {
		t.Fatalf("expected empty days on history row, got=%q", got)
	}
}

func TestWriteTrainLogs_AppendsIdentityKeys(t *testing.T) {
	t.Parallel()

	minutes := 90
	entries := []matchlog.Entry{{
		Date:       mustDate(t, "2023-05-06"),
		Team:       "Bologna",
		Opponent:   "Roma",
		Minutes:    &minutes,
		PlayerName: "Riccardo Calafiori",
		PlayerID:   "xyz987",
		StatType:   "summary",
		Season:     "22/23",
		League:     "SerieA",
	}}

	path := writeTempCSV(t, func(path string) error { return WriteTrainLogs(path, entries) })
	table := readTempCSV(t, path)

	row := table.rows[0]
	if got := table.cell(row, "match_id"); got != "Bologna_Roma_2023-05-06" {
		t.Fatalf("unexpected match_id: %q", got)
	}
	if got := table.cell(row, "player_match_id"); got != "xyz987_Bologna_Roma_2023-05-06" {
		t.Fatalf("unexpected player_match_id: %q", got)
	}
	if got := table.cell(row, "minutes"); got != "90" {
		t.Fatalf("expected minutes=90, got=%q", got)
	}
	if got := table.cell(row, "goals"); got != "" {
		t.Fatalf("expected nil goals to write empty, got=%q", got)
	}
}
