package snapshot

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// Warning is a non-fatal problem found in a snapshot row. Bad rows are
// skipped and counted, never fatal.
type Warning struct {
	Row     int
	Message string
}

type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) hasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// readTable reads a whole CSV stream. Rows with mismatched column counts
// are padded or truncated to the header width and reported as warnings.
func readTable(r io.Reader) (*table, []Warning, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if crerr.Is(err, io.EOF) {
			return nil, nil, crerr.New("empty snapshot: no header row")
		}
		return nil, nil, crerr.Wrap(err, "read header row")
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		index[headers[i]] = i
	}

	t := &table{headers: headers, index: index}
	var warnings []Warning
	rowNum := 1
	for {
		row, err := reader.Read()
		if crerr.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			warnings = append(warnings, Warning{Row: rowNum, Message: "parse error: " + err.Error()})
			continue
		}

		if len(row) != len(headers) {
			if len(row) < len(headers) {
				padded := make([]string, len(headers))
				copy(padded, row)
				row = padded
			} else {
				row = row[:len(headers)]
			}
			warnings = append(warnings, Warning{Row: rowNum, Message: "column count mismatch, row repaired"})
		}
		t.rows = append(t.rows, row)
	}

	return t, warnings, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if out, err := time.Parse(layout, value); err == nil {
			return time.Date(out.Year(), out.Month(), out.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseIntPtr(value string) (*int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	// The stats source writes whole numbers as "2.0" in some exports.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		n := int(f)
		if float64(n) == f {
			return &n, true
		}
		return nil, false
	}
	return nil, false
}

func parseFloatPtr(value string) (*float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func parseInt64(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		n := int64(f)
		if float64(n) == f {
			return n, true
		}
	}
	return 0, false
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("2006-01-02")
}

func formatDatePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatDate(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

// writeCSVFile writes headers and rows through a pooled buffer, then lands
// the file atomically via a temp-and-rename in the target directory.
func writeCSVFile(path string, headers []string, rows [][]string) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	if err := w.Write(headers); err != nil {
		return crerr.Wrap(err, "write csv header")
	}
	if err := w.WriteAll(rows); err != nil {
		return crerr.Wrap(err, "write csv rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return crerr.Wrap(err, "flush csv")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrap(err, "create output dir")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.B, 0o644); err != nil {
		return crerr.Wrap(err, "write csv file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return crerr.Wrap(err, "rename csv file")
	}

	return nil
}

// FileChecksum returns the hex SHA-256 of a file, for run manifests.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", crerr.Wrap(err, "open snapshot for checksum")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", crerr.Wrap(err, "hash snapshot")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
