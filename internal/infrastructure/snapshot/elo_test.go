package snapshot

import (
	"strings"
	"testing"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
)

func TestEloHistory_DecodesAPIFormat(t *testing.T) {
	t.Parallel()

	in := "Rank,Club,Country,Level,Elo,From,To\n" +
		"12,Chelsea,ENG,1,1912.4,2024-08-01,2024-08-07\n" +
		",Chelsea,ENG,1,1899.25,2024-08-08,\n"

	ratings, warnings, err := NewDecoder().EloHistory(strings.NewReader(in))
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got=%v", warnings)
	}
	if len(ratings) != 2 {
		t.Fatalf("expected 2 ratings, got=%d", len(ratings))
	}

	ranked := ratings[0]
	if ranked.Rank != 12 || ranked.Elo != 1912.4 {
		t.Fatalf("expected rank=12 elo=1912.4, got rank=%d elo=%v", ranked.Rank, ranked.Elo)
	}
	if ranked.To == nil || ranked.To.Format("2006-01-02") != "2024-08-07" {
		t.Fatalf("expected closed period, got=%v", ranked.To)
	}

	unranked := ratings[1]
	if unranked.Rank != 0 {
		t.Fatalf("expected missing rank to decode as 0, got=%d", unranked.Rank)
	}
	if unranked.To != nil {
		t.Fatalf("expected open period to decode as nil, got=%v", unranked.To)
	}
}

func TestEloHistory_SkipsRowsWithoutElo(t *testing.T) {
	t.Parallel()

	in := "Rank,Club,Country,Level,Elo,From,To\n" +
		"1,Chelsea,ENG,1,,2024-08-01,\n" +
		"1,Chelsea,ENG,1,1900,bad-date,\n"

	ratings, warnings, err := NewDecoder().EloHistory(strings.NewReader(in))
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if len(ratings) != 0 {
		t.Fatalf("expected both rows dropped, got=%d", len(ratings))
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got=%v", warnings)
	}
}

func TestWriteEloHistory_KeepsAPIHeader(t *testing.T) {
	t.Parallel()

	from := mustDate(t, "2024-08-01")
	ratings := []clubelo.Rating{{Club: "Chelsea", Country: "ENG", Level: 1, Elo: 1912.4, From: from}}

	path := writeTempCSV(t, func(path string) error { return WriteEloHistory(path, ratings) })
	f := readTempCSV(t, path)

	if f.headers[0] != "Rank" || f.headers[4] != "Elo" {
		t.Fatalf("expected API header order, got=%v", f.headers)
	}
	if got := f.cell(f.rows[0], "Rank"); got != "" {
		t.Fatalf("expected zero rank to write empty, got=%q", got)
	}
	if got := f.cell(f.rows[0], "Elo"); got != "1912.4" {
		t.Fatalf("expected elo=1912.4, got=%q", got)
	}
}

func TestEloHistoryFileName_RoundTrip(t *testing.T) {
	t.Parallel()

	fetchedAt := mustDate(t, "2025-03-30")
	name := EloHistoryFileName("manchestercity", fetchedAt)
	if name != "manchestercity_2025-03-30.csv" {
		t.Fatalf("unexpected file name: %q", name)
	}

	team, date, ok := ParseEloHistoryFileName(name)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if team != "manchestercity" {
		t.Fatalf("expected team=manchestercity, got=%q", team)
	}
	if !date.Equal(fetchedAt) {
		t.Fatalf("expected fetch date %v, got=%v", fetchedAt, date)
	}
}

func TestParseEloHistoryFileName_RejectsForeignFiles(t *testing.T) {
	t.Parallel()

	tests := []string{"README.csv", "notes.txt", "_2025-03-30.csv", "team_notadate.csv"}
	for _, name := range tests {
		if _, _, ok := ParseEloHistoryFileName(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
