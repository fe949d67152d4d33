package snapshot

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/strikerlab/debutform/internal/domain/clubelo"
)

// Per-team rating files keep the rating API's own header so previously
// fetched data stays readable.
var eloHistoryColumns = []string{"Rank", "Club", "Country", "Level", "Elo", "From", "To"}

// EloHistory decodes one per-team rating file. A missing rank decodes
// as 0, matching how the API marks unranked periods.
func (d *Decoder) EloHistory(r io.Reader) ([]clubelo.Rating, []Warning, error) {
	t, warnings, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}

	ratings := make([]clubelo.Rating, 0, len(t.rows))
	for i, row := range t.rows {
		rowNum := i + 2

		elo, ok := parseFloatPtr(t.cell(row, "Elo"))
		if !ok || elo == nil {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable elo value"})
			continue
		}
		from, ok := parseDate(t.cell(row, "From"))
		if !ok {
			warnings = append(warnings, Warning{Row: rowNum, Message: "unparseable from date"})
			continue
		}

		rank := 0
		if v, ok := parseIntPtr(t.cell(row, "Rank")); ok && v != nil {
			rank = *v
		}
		level := 0
		if v, ok := parseIntPtr(t.cell(row, "Level")); ok && v != nil {
			level = *v
		}
		var to *time.Time
		if v, ok := parseDate(t.cell(row, "To")); ok {
			to = &v
		}

		ratings = append(ratings, clubelo.Rating{
			Rank:    rank,
			Club:    t.cell(row, "Club"),
			Country: t.cell(row, "Country"),
			Level:   level,
			Elo:     *elo,
			From:    from,
			To:      to,
		})
	}

	return ratings, warnings, nil
}

// WriteEloHistory writes one team's rating history in the API's format.
func WriteEloHistory(path string, ratings []clubelo.Rating) error {
	rows := make([][]string, 0, len(ratings))
	for _, r := range ratings {
		rank := ""
		if r.Rank > 0 {
			rank = strconv.Itoa(r.Rank)
		}
		rows = append(rows, []string{
			rank,
			r.Club,
			r.Country,
			strconv.Itoa(r.Level),
			formatFloat(r.Elo),
			formatDate(r.From),
			formatDatePtr(r.To),
		})
	}
	return writeCSVFile(path, eloHistoryColumns, rows)
}

// EloHistoryFileName names a per-team rating file after the normalized
// team and the fetch date.
func EloHistoryFileName(normalizedTeam string, fetchedAt time.Time) string {
	return normalizedTeam + "_" + fetchedAt.Format("2006-01-02") + ".csv"
}

// ParseEloHistoryFileName recovers the normalized team name and fetch
// date from a rating file name. The team may itself contain underscores,
// so only the last segment is treated as the date.
func ParseEloHistoryFileName(name string) (normalizedTeam string, fetchedAt time.Time, ok bool) {
	base := strings.TrimSuffix(filepath.Base(name), ".csv")
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", time.Time{}, false
	}
	date, parsed := parseDate(base[i+1:])
	if !parsed {
		return "", time.Time{}, false
	}
	return base[:i], date, true
}

var formattedEloColumns = []string{
	"team_name", "league_name", "normalized_team_name",
	"rank", "club", "country", "level", "elo", "from_date", "to_date",
}

var eloAttachmentColumns = []string{
	"split", "player_match_id", "team", "opponent", "league",
	"match_date", "team_elo", "opponent_elo", "elo_diff",
}

// WriteAttachments writes the per-row rating join for both splits. Empty
// elo cells mean the club had no usable rating on the match date.
func WriteAttachments(path string, attachments []clubelo.Attachment) error {
	rows := make([][]string, 0, len(attachments))
	for _, a := range attachments {
		rows = append(rows, []string{
			a.Split,
			a.PlayerMatchID,
			a.Team,
			a.Opponent,
			a.League,
			formatDate(a.MatchDate),
			formatFloatPtr(a.TeamElo),
			formatFloatPtr(a.OpponentElo),
			formatFloatPtr(a.EloDiff),
		})
	}
	return writeCSVFile(path, eloAttachmentColumns, rows)
}

// WriteFormattedElos writes the combined, name-joined rating table.
func WriteFormattedElos(path string, ratings []clubelo.TeamRating) error {
	rows := make([][]string, 0, len(ratings))
	for _, r := range ratings {
		rank := ""
		if r.Rank > 0 {
			rank = strconv.Itoa(r.Rank)
		}
		rows = append(rows, []string{
			r.TeamName,
			r.LeagueName,
			r.NormalizedTeamName,
			rank,
			r.Club,
			r.Country,
			strconv.Itoa(r.Level),
			formatFloat(r.Elo),
			formatDate(r.From),
			formatDatePtr(r.To),
		})
	}
	return writeCSVFile(path, formattedEloColumns, rows)
}
