// Package board maintains the triage board: a bounded working set of
// open tasks rebuilt from the task database on every run.
package board

import (
	"sort"
	"strconv"
	"strings"

	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/reconcile"
)

// DefaultCapacity is the number of top tasks considered per backfill.
const DefaultCapacity = 25

// Prune copies the authoritative status of every board row from the task
// database and drops rows whose status is in the removal set. A row
// whose status changed and which is then dropped counts as both updated
// and removed. Hyperlinks are regenerated from the ticket id, and a row
// whose link or ticket id was stale counts as updated.
func Prune(board, database *model.Table, baseURL string) model.Summary {
	sum := model.Summary{Stage: "board"}
	idx := database.Index(model.ColTicket)
	board.EnsureColumn(model.ColBoardTicket)
	board.EnsureColumn(model.ColTicketID)

	kept := make([]model.Row, 0, len(board.Rows))
	for _, r := range board.Rows {
		changed := false
		if i, ok := idx[reconcile.BoardKey(r)]; ok {
			st := database.Rows[i][model.ColStatus]
			if st != r[model.ColStatus] {
				r[model.ColStatus] = st
				changed = true
			}
			if model.RemovalStatuses.Has(st) {
				if changed {
					sum.Updated++
				}
				sum.Removed++
				continue
			}
		}
		if relinkRow(r, baseURL) {
			changed = true
		}
		if changed {
			sum.Updated++
		} else {
			sum.Skipped++
		}
		kept = append(kept, r)
	}
	board.Rows = kept
	return sum
}

// Relink rewrites every row's hyperlink from its ticket id and returns
// how many rows changed. Running it twice gives the same result.
func Relink(board *model.Table, baseURL string) int {
	board.EnsureColumn(model.ColBoardTicket)
	board.EnsureColumn(model.ColTicketID)
	n := 0
	for _, r := range board.Rows {
		if relinkRow(r, baseURL) {
			n++
		}
	}
	return n
}

func relinkRow(r model.Row, baseURL string) bool {
	key := reconcile.BoardKey(r)
	if key == "" {
		return false
	}
	link := derive.RenderDisplayKey(key, baseURL)
	if r[model.ColTicketID] == key && r[model.ColBoardTicket] == link {
		return false
	}
	r[model.ColTicketID] = key
	r[model.ColBoardTicket] = link
	return true
}

// BackfillOptions selects and bounds the tasks pulled onto the board.
type BackfillOptions struct {
	Capacity         int
	Actionable       model.StatusSet
	ExcludedTeam     string
	ExcludedPrefixes []string
	BaseURL          string
	LegacyMatch      bool
}

// Backfill ranks the actionable database tasks by priority and then by
// days overdue, and inserts the top Capacity of them that the board does
// not already hold.
func Backfill(board, database *model.Table, opts BackfillOptions) model.Summary {
	sum := model.Summary{Stage: "backfill"}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	actionable := opts.Actionable
	if actionable == nil {
		actionable = model.ActionableStatuses
	}

	var candidates []model.Row
	for _, r := range database.Rows {
		if !actionable.Has(r[model.ColStatus]) {
			continue
		}
		if opts.ExcludedTeam != "" && r[model.ColCategory] == opts.ExcludedTeam {
			continue
		}
		if hasAnyPrefix(r[model.ColTicket], opts.ExcludedPrefixes) {
			continue
		}
		candidates = append(candidates, r)
	}
	Rank(candidates)
	if len(candidates) > capacity {
		candidates = candidates[:capacity]
	}

	for _, c := range model.BoardColumns {
		board.EnsureColumn(c)
	}
	finder := reconcile.NewFinder(board, opts.LegacyMatch)
	for _, r := range candidates {
		key := r[model.ColTicket]
		if finder.Find(key) >= 0 {
			sum.Skipped++
			continue
		}
		row := reconcile.DatabaseToBoard.Apply(r)
		row[model.ColTicketID] = key
		board.Append(row)
		finder.Add(key, len(board.Rows)-1)
		sum.Created++
	}

	sum.Sanitized = reconcile.Sanitize(board)
	Relink(board, opts.BaseURL)
	return sum
}

// Rank sorts rows by priority rank, then by days overdue, both
// descending. Equal rows keep their relative order.
func Rank(rows []model.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi := model.ParsePriority(rows[i][model.ColPriority]).Rank()
		pj := model.ParsePriority(rows[j][model.ColPriority]).Rank()
		if pi != pj {
			return pi > pj
		}
		return overdue(rows[i]) > overdue(rows[j])
	})
}

func overdue(r model.Row) int {
	n, err := strconv.Atoi(strings.TrimSpace(r[model.ColSLAOverdue]))
	if err != nil {
		return 0
	}
	return n
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
