package derive

import (
	"strings"
	"time"
)

const (
	// NotApplicable marks a derived cell that could not be computed.
	NotApplicable = "N/A"

	// DateLayout is the canonical date format written to the sheets (04-Jan-2024).
	DateLayout = "02-Jan-2006"
)

// inputLayouts are tried in order. The last one lets already-normalized
// cells read back from a sheet parse again.
var inputLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/Jan/06 3:04 PM",
	"2/Jan/06 3:04 PM",
	DateLayout,
}

// ParseDate parses any of the known export or sheet date formats.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == NotApplicable {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate renders s in DateLayout, dropping any time component.
// Text that does not parse is returned unchanged.
func NormalizeDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

// daysBetween counts calendar days from a to b.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
