package app

import "strings"

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses a statement onto one line and truncates
// it before it is attached to a span.
func formatDBQueryForTrace(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	normalized := strings.Join(fields, " ")
	if len(normalized) > maxTracedQueryLength {
		return normalized[:maxTracedQueryLength] + "..."
	}

	return normalized
}
