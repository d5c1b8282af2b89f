// Package reconcile moves and reconciles task rows between the task database,
// the triage board and the archive.
package reconcile

import (
	"strings"

	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/model"
)

// Mapping copies the cell in column From into column To.
type Mapping struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// ColumnMap is an ordered list of column mappings.
type ColumnMap []Mapping

// Apply builds a new row from src.
func (m ColumnMap) Apply(src model.Row) model.Row {
	r := make(model.Row, len(m))
	for _, f := range m {
		r[f.To] = src[f.From]
	}
	return r
}

// Targets lists the destination columns.
func (m ColumnMap) Targets() []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.To
	}
	return out
}

var (
	// DatabaseToBoard maps task database columns onto board columns.
	DatabaseToBoard = ColumnMap{
		{From: model.ColTicket, To: model.ColTicketID},
		{From: model.ColClient, To: model.ColClient},
		{From: model.ColPriority, To: model.ColPriority},
		{From: model.ColStatus, To: model.ColStatus},
		{From: model.ColSummary, To: model.ColSummary},
		{From: model.ColSLAOverdue, To: model.ColSLAOverdue},
		{From: model.ColCategory, To: model.ColBoardTeam},
	}

	// BoardToArchive maps board columns onto archive columns.
	BoardToArchive = ColumnMap{
		{From: model.ColBoardTicket, To: model.ColBoardTicket},
		{From: model.ColTicketID, To: model.ColTicketID},
		{From: model.ColClient, To: model.ColClient},
		{From: model.ColPriority, To: model.ColPriority},
		{From: model.ColStatus, To: model.ColStatus},
		{From: model.ColSummary, To: model.ColSummary},
		{From: model.ColBoardPlatform, To: model.ColBoardPlatform},
		{From: model.ColBoardVersion, To: model.ColBoardVersion},
	}

	// DatabaseToArchive fills archive columns the board does not carry.
	DatabaseToArchive = ColumnMap{
		{From: model.ColType, To: model.ColType},
		{From: model.ColCreated, To: model.ColCreated},
		{From: model.ColResolved, To: model.ColResolved},
	}

	// BoardToDatabase lists the board-curated columns written back to the database.
	BoardToDatabase = ColumnMap{
		{From: model.ColBoardPlatform, To: model.ColBoardPlatform},
		{From: model.ColBoardVersion, To: model.ColBoardVersion},
		{From: model.ColComments, To: model.ColComments},
	}
)

// BoardKey returns the stable ticket id of a board or archive row,
// falling back to the key shown by its hyperlink.
func BoardKey(r model.Row) string {
	if id := strings.TrimSpace(r[model.ColTicketID]); id != "" {
		return id
	}
	return derive.KeyFromDisplay(r[model.ColBoardTicket])
}

// Finder locates rows of a board-shaped table by ticket id.
type Finder struct {
	t      *model.Table
	idx    map[string]int
	legacy bool
}

// NewFinder indexes t. With legacy set, a miss falls back to a substring
// search of the hyperlink column, which can confuse AB-1 with AB-10.
func NewFinder(t *model.Table, legacy bool) *Finder {
	f := &Finder{t: t, legacy: legacy, idx: make(map[string]int, t.Len())}
	for i, r := range t.Rows {
		if k := BoardKey(r); k != "" {
			if _, dup := f.idx[k]; !dup {
				f.idx[k] = i
			}
		}
	}
	return f
}

// Find returns the row position for key, or -1.
func (f *Finder) Find(key string) int {
	if i, ok := f.idx[key]; ok {
		return i
	}
	if f.legacy && key != "" {
		for i, r := range f.t.Rows {
			if strings.Contains(r[model.ColBoardTicket], key) {
				return i
			}
		}
	}
	return -1
}

// Add indexes a row appended at position i.
func (f *Finder) Add(key string, i int) {
	if _, dup := f.idx[key]; !dup {
		f.idx[key] = i
	}
}
