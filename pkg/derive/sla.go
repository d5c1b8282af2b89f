package derive

import (
	"strconv"
	"time"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// RankPriority converts a tracker priority to its ranked sheet label
// ("Blocker" -> "5-Blocker"). Unknown labels pass through unchanged.
func RankPriority(label string) string {
	return model.ParsePriority(label).Label()
}

// SLALimitDays returns the number of days a task of the given priority
// may stay open.
func SLALimitDays(priority string) int {
	switch model.ParsePriority(priority) {
	case model.Blocker, model.Critical:
		return 3
	case model.Major:
		return 10
	default:
		return 60
	}
}

// SLADeadline adds limit days to the creation date. It returns
// NotApplicable when the creation date is missing or does not parse.
func SLADeadline(created string, limit int) string {
	t, ok := ParseDate(created)
	if !ok {
		return NotApplicable
	}
	return t.AddDate(0, 0, limit).Format(DateLayout)
}

// SLAOverdueDays counts the whole days now is past deadline. It is never
// negative and is 0 for a missing or unparseable deadline.
func SLAOverdueDays(deadline string, now time.Time) int {
	d, ok := ParseDate(deadline)
	if !ok {
		return 0
	}
	return max(daysBetween(d, now), 0)
}

// DaysToComplete returns the calendar days between creation and
// resolution. ok is false unless both dates parse.
func DaysToComplete(created, resolved string) (days int, ok bool) {
	c, ok := ParseDate(created)
	if !ok {
		return 0, false
	}
	r, ok := ParseDate(resolved)
	if !ok {
		return 0, false
	}
	return daysBetween(c, r), true
}

// FormatDaysToComplete renders DaysToComplete as a cell value.
func FormatDaysToComplete(created, resolved string) string {
	days, ok := DaysToComplete(created, resolved)
	if !ok {
		return NotApplicable
	}
	return strconv.Itoa(days)
}
