package clubelo

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/strikerlab/debutform/internal/usecase"
)

const ratingDateLayout = "2006-01-02"

// parseHistoryCSV decodes the provider's history body. Rows without a
// usable Elo or From value are counted and dropped rather than failing
// the whole fetch; a missing Rank means the club was unranked then.
func parseHistoryCSV(raw []byte) ([]usecase.ExternalRating, int, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv body: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("empty rating history body")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"club", "elo", "from"} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("rating history header missing %q column", required)
		}
	}

	ratings := make([]usecase.ExternalRating, 0, len(records)-1)
	skipped := 0
	for _, record := range records[1:] {
		elo, ok := parseRatingFloat(historyCell(record, index, "elo"))
		if !ok {
			skipped++
			continue
		}
		from, err := time.Parse(ratingDateLayout, historyCell(record, index, "from"))
		if err != nil {
			skipped++
			continue
		}

		var to *time.Time
		if parsed, err := time.Parse(ratingDateLayout, historyCell(record, index, "to")); err == nil {
			to = &parsed
		}

		ratings = append(ratings, usecase.ExternalRating{
			Rank:    parseRatingInt(historyCell(record, index, "rank")),
			Club:    historyCell(record, index, "club"),
			Country: historyCell(record, index, "country"),
			Level:   parseRatingInt(historyCell(record, index, "level")),
			Elo:     elo,
			From:    from,
			To:      to,
		})
	}

	return ratings, skipped, nil
}

// isUntrackedBody recognizes the provider's miss marker, which arrives
// with a 200 status for clubs it does not track.
func isUntrackedBody(raw []byte) bool {
	return strings.EqualFold(strings.TrimSpace(string(raw)), "404 page not found")
}

func historyCell(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRatingFloat(raw string) (float64, bool) {
	if raw == "" || strings.EqualFold(raw, "none") {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func parseRatingInt(raw string) int {
	if raw == "" || strings.EqualFold(raw, "none") {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
