package ingestion

import (
	"strings"
	"time"

	"github.com/johnquangdev/meeting-sync/internal/domain/entities"
)

// instantLayouts are tried in order. Layouts without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	entities.DateLayout,
}

// ParseInstant parses a provider timestamp
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToCalendarDate truncates a provider timestamp to its UTC calendar date.
func ToCalendarDate(s string) string {
	if t, ok := ParseInstant(s); ok {
		return t.UTC().Format(entities.DateLayout)
	}
	// unreachable for validated input
	s = strings.TrimSpace(s)
	if len(s) >= len(entities.DateLayout) {
		return s[:len(entities.DateLayout)]
	}
	return s
}
