package model

import "strings"

// Status values with fixed meaning in the tracker workflow.
const (
	StatusToDo             = "To Do"
	StatusInProgress       = "In Progress"
	StatusDone             = "Done"
	StatusReleased         = "Released"
	StatusClosed           = "Closed"
	StatusWontDo           = "Won't Do"
	StatusDuplicate        = "Duplicate"
	StatusBusinessDecision = "Business Decision"
	StatusOutOfScope       = "Out of Scope"
	StatusWaitingForNewUI  = "Waiting for New UI"
)

// StatusSet is a case-insensitive set of status values.
type StatusSet map[string]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...string) StatusSet {
	s := make(StatusSet, len(statuses))
	for _, st := range statuses {
		s[normalizeStatus(st)] = struct{}{}
	}
	return s
}

// Has reports whether status is in the set.
func (s StatusSet) Has(status string) bool {
	_, ok := s[normalizeStatus(status)]
	return ok
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var (
	// ArchiveStatuses move a board row to the archive.
	ArchiveStatuses = NewStatusSet(StatusDone, StatusReleased)
	// RemovalStatuses drop a row from the board.
	RemovalStatuses = NewStatusSet(StatusDone, StatusReleased, StatusClosed, StatusWontDo, StatusDuplicate)
	// FrozenStatuses may only be left by moving to Done.
	FrozenStatuses = NewStatusSet(StatusBusinessDecision, StatusOutOfScope, StatusDuplicate, StatusWaitingForNewUI)
	// ActionableStatuses qualify a task for the board backfill.
	ActionableStatuses = NewStatusSet(StatusToDo, StatusInProgress)
)
