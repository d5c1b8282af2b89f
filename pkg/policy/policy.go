// Package policy decides whether an incoming tracker status may overwrite
// the status recorded in a store.
package policy

import (
	"strings"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// MayUpdateStatus reports whether newStatus may replace oldStatus.
// Moving to Done is always allowed; a task parked in one of the frozen
// statuses keeps it otherwise.
func MayUpdateStatus(oldStatus, newStatus string) bool {
	if strings.EqualFold(strings.TrimSpace(newStatus), model.StatusDone) {
		return true
	}
	if model.FrozenStatuses.Has(oldStatus) {
		return false
	}
	return true
}

// Gate applies MayUpdateStatus and keeps count of its decisions.
type Gate struct {
	Allowed int
	Denied  int
}

// Allow evaluates one candidate update.
func (g *Gate) Allow(oldStatus, newStatus string) bool {
	if MayUpdateStatus(oldStatus, newStatus) {
		g.Allowed++
		return true
	}
	g.Denied++
	return false
}

// Report copies the counters into s.
func (g *Gate) Report(s *model.Summary) {
	s.Allowed += g.Allowed
	s.Denied += g.Denied
}
