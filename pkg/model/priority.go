package model

import (
	"fmt"
	"strings"
)

// Priority is one of the five tracker priority levels, or an
// unrecognized label kept verbatim.
type Priority struct {
	level int
	raw   string
}

// Known priority levels, ordered by rank.
var (
	Trivial  = Priority{level: 1, raw: "Trivial"}
	Minor    = Priority{level: 2, raw: "Minor"}
	Major    = Priority{level: 3, raw: "Major"}
	Critical = Priority{level: 4, raw: "Critical"}
	Blocker  = Priority{level: 5, raw: "Blocker"}
)

var priorities = []Priority{Blocker, Critical, Major, Minor, Trivial}

// ParsePriority accepts a bare label ("Major") or a ranked label ("3-Major")
// whose rank agrees with the label. Anything else, "5-Trivial" included,
// becomes an unrecognized priority with rank 0.
func ParsePriority(label string) Priority {
	s := strings.TrimSpace(label)
	rank := 0
	if len(s) > 2 && s[1] == '-' && s[0] >= '1' && s[0] <= '5' {
		rank = int(s[0] - '0')
		s = s[2:]
	}
	for _, p := range priorities {
		if strings.EqualFold(s, p.raw) {
			if rank != 0 && rank != p.level {
				break
			}
			return p
		}
	}
	return Priority{raw: label}
}

// Known reports whether p is one of the five fixed levels.
func (p Priority) Known() bool { return p.level > 0 }

// Rank orders priorities, Blocker highest. Unrecognized labels rank 0.
func (p Priority) Rank() int { return p.level }

// Name returns the bare label.
func (p Priority) Name() string { return p.raw }

// Label renders the ranked label ("5-Blocker"). Unrecognized priorities
// render their original text.
func (p Priority) Label() string {
	if !p.Known() {
		return p.raw
	}
	return fmt.Sprintf("%d-%s", p.level, p.raw)
}
