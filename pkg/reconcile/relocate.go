package reconcile

import "github.com/harrisonrobin/backlog/pkg/model"

// RelocateOptions configures archival of terminal rows.
type RelocateOptions struct {
	// Terminal selects the rows to move.
	Terminal model.StatusSet
	// Columns maps source columns onto archive columns.
	Columns ColumnMap
	// Lookup, when set, fills archive cells the source row lacks from the
	// task database row with the same ticket.
	Lookup *model.Table
	Enrich ColumnMap
}

// Relocate splits src into the rows that stay and the rows that move to
// archive. It returns the new content of both; nothing is written here.
// A ticket already in the archive is refreshed in place, without blanking
// recorded cells, instead of being appended a second time.
func Relocate(src, archive *model.Table, opts RelocateOptions) (kept, archived *model.Table, sum model.Summary) {
	sum.Stage = "archive"
	kept = model.NewTable(src.Columns...)
	archived = archive.Clone()
	if len(archived.Columns) == 0 {
		archived.Columns = append([]string(nil), model.ArchiveColumns...)
	}
	for _, c := range opts.Columns.Targets() {
		archived.EnsureColumn(c)
	}

	var lookup map[string]int
	if opts.Lookup != nil {
		lookup = opts.Lookup.Index(model.ColTicket)
	}
	finder := NewFinder(archived, false)

	for _, r := range src.Rows {
		if !opts.Terminal.Has(r[model.ColStatus]) {
			kept.Append(r)
			continue
		}
		key := BoardKey(r)
		moved := opts.Columns.Apply(r)
		moved[model.ColTicketID] = key
		if i, ok := lookup[key]; ok {
			db := opts.Lookup.Rows[i]
			for _, f := range opts.Enrich {
				if moved[f.To] == "" {
					moved[f.To] = db[f.From]
				}
			}
		}

		if i := finder.Find(key); i >= 0 {
			for k, v := range moved {
				if v != "" {
					archived.Rows[i][k] = v
				}
			}
			sum.Updated++
		} else {
			archived.Append(moved)
			finder.Add(key, len(archived.Rows)-1)
			sum.Created++
		}
		sum.Removed++
	}
	return kept, archived, sum
}
