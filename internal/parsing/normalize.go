// Package parsing normalizes raw spreadsheet rows into event records.
package parsing

import (
	"strings"

	"github.com/BMANick25-26/Ballot-Events/internal/ingestion"
)

// CanonicalLocationKey returns the cache key for a free-text location:
// lowercased, trimmed, with inner whitespace runs collapsed to single
// spaces. The same rule is applied everywhere a location is compared, so
// "Leeds  Town Hall" and "leeds town hall " share one cache entry.
func CanonicalLocationKey(location string) string {
	fields := strings.Fields(strings.ToLower(location))
	return strings.Join(fields, " ")
}

// FormatDate coerces a date cell to ISO YYYY-MM-DD, or "" when the cell
// is empty or does not parse as a date.
func FormatDate(c ingestion.Cell) string {
	if c.Kind != ingestion.CellDate {
		return ""
	}
	return c.Time.Format("2006-01-02")
}

// FormatTime coerces a time cell to HH:MM, or "" when the cell is empty
// or does not parse as a time of day.
func FormatTime(c ingestion.Cell) string {
	if c.Kind != ingestion.CellTime {
		return ""
	}
	return c.Time.Format("15:04")
}
