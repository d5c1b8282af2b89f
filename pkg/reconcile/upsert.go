package reconcile

import (
	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/policy"
)

// UpsertOptions configures a filtered upsert from the task database into a board.
type UpsertOptions struct {
	// Match selects the source rows to upsert.
	Match func(model.Row) bool
	// Columns maps source columns onto board columns for inserts.
	Columns ColumnMap
	// Mutable lists the board columns refreshed on existing rows, besides Status.
	Mutable []string
	// BaseURL is used to render hyperlinks for rows without a stored URL.
	BaseURL string
	// LegacyMatch enables substring matching on the hyperlink column.
	LegacyMatch bool
	// Gate decides status overwrites. A nil Gate allows everything and counts nothing.
	Gate *policy.Gate
}

// TeamFilter selects unresolved rows owned by team.
func TeamFilter(team string, terminal model.StatusSet) func(model.Row) bool {
	return func(r model.Row) bool {
		return r[model.ColCategory] == team && !terminal.Has(r[model.ColStatus])
	}
}

// Upsert inserts matching src rows missing from dst and refreshes the
// mutable fields of those already present.
func Upsert(src, dst *model.Table, opts UpsertOptions) model.Summary {
	sum := model.Summary{Stage: "upsert"}
	gate := opts.Gate
	if gate == nil {
		gate = &policy.Gate{}
	}
	dst.EnsureColumn(model.ColBoardTicket)
	for _, c := range opts.Columns.Targets() {
		dst.EnsureColumn(c)
	}

	finder := NewFinder(dst, opts.LegacyMatch)
	for _, s := range src.Rows {
		if opts.Match != nil && !opts.Match(s) {
			continue
		}
		key := s[model.ColTicket]
		if key == "" {
			sum.Skipped++
			continue
		}

		i := finder.Find(key)
		if i < 0 {
			r := opts.Columns.Apply(s)
			r[model.ColTicketID] = key
			r[model.ColBoardTicket] = derive.RenderDisplayKey(key, linkBase(s, opts.BaseURL))
			dst.Append(r)
			finder.Add(key, len(dst.Rows)-1)
			sum.Created++
			continue
		}

		if refresh(dst.Rows[i], opts.Columns.Apply(s), opts.Mutable, gate) {
			sum.Updated++
		} else {
			sum.Skipped++
		}
	}
	gate.Report(&sum)
	return sum
}

// refresh updates the mutable cells of an existing row. Empty incoming
// values never erase recorded ones.
func refresh(dst, in model.Row, mutable []string, gate *policy.Gate) bool {
	changed := false
	if st := in[model.ColStatus]; st != "" && st != dst[model.ColStatus] {
		if gate.Allow(dst[model.ColStatus], st) {
			dst[model.ColStatus] = st
			changed = true
		}
	}
	for _, c := range mutable {
		v, ok := in[c]
		if !ok || v == "" || v == dst[c] {
			continue
		}
		dst[c] = v
		changed = true
	}
	return changed
}

// linkBase prefers the URL stored with the task, which already ends with its key.
func linkBase(r model.Row, fallback string) string {
	if u := r[model.ColURLConcat]; u != "" {
		return u
	}
	return fallback
}
