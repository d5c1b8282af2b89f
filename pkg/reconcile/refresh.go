package reconcile

import (
	"strconv"
	"time"

	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/policy"
)

// RefreshStatuses overwrites database statuses with the snapshot's,
// through the status policy.
func RefreshStatuses(database, snapshot *model.Table, gate *policy.Gate) model.Summary {
	sum := model.Summary{Stage: "statuses"}
	if gate == nil {
		gate = &policy.Gate{}
	}
	idx := snapshot.Index(model.JiraKey)
	for _, r := range database.Rows {
		i, ok := idx[r[model.ColTicket]]
		if !ok {
			sum.Skipped++
			continue
		}
		st := snapshot.Rows[i][model.JiraStatus]
		if st == "" || st == r[model.ColStatus] {
			sum.Skipped++
			continue
		}
		if gate.Allow(r[model.ColStatus], st) {
			r[model.ColStatus] = st
			sum.Updated++
		}
	}
	gate.Report(&sum)
	return sum
}

// RefreshResolved records resolution dates of newly resolved tasks and
// recomputes the time-dependent cells. A recorded resolution date is
// never cleared.
func RefreshResolved(database, snapshot *model.Table, now time.Time) model.Summary {
	sum := model.Summary{Stage: "resolved"}
	idx := snapshot.Index(model.JiraKey)
	for _, r := range database.Rows {
		before := r.Clone()

		if i, ok := idx[r[model.ColTicket]]; ok && r[model.ColResolved] == "" {
			r[model.ColResolved] = derive.NormalizeDate(snapshot.Rows[i][model.JiraResolved])
		}

		// Unresolved rows read N/A.
		r[model.ColDaysToDone] = derive.FormatDaysToComplete(r[model.ColCreated], r[model.ColResolved])
		if r[model.ColResolved] == "" {
			limit := derive.SLALimitDays(r[model.ColPriority])
			if r[model.ColSLALimit] == "" {
				r[model.ColSLALimit] = strconv.Itoa(limit)
			}
			if r[model.ColSLADeadline] == "" {
				r[model.ColSLADeadline] = derive.SLADeadline(r[model.ColCreated], limit)
			}
			r[model.ColSLAOverdue] = strconv.Itoa(derive.SLAOverdueDays(r[model.ColSLADeadline], now))
		}

		if rowChanged(before, r) {
			sum.Updated++
		} else {
			sum.Skipped++
		}
	}
	return sum
}

func rowChanged(a, b model.Row) bool {
	if len(a) != len(b) {
		return true
	}
	for k, v := range b {
		if a[k] != v {
			return true
		}
	}
	return false
}
