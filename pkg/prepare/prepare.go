// Package prepare turns tracker rows that are missing from the task
// database into fully derived database rows.
package prepare

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/diff"
	"github.com/harrisonrobin/backlog/pkg/model"
)

// Preparer derives database rows from snapshot rows.
type Preparer struct {
	Clients derive.ClientTable
	BaseURL string
	Now     func() time.Time
}

// New creates a Preparer.
func New(clients derive.ClientTable, baseURL string) *Preparer {
	return &Preparer{Clients: clients, BaseURL: baseURL, Now: time.Now}
}

// Prepare returns the snapshot tasks absent from database, mapped onto
// model.DatabaseColumns. The result always carries exactly those columns.
func (p *Preparer) Prepare(snapshot, database *model.Table) (*model.Table, error) {
	fresh, err := diff.FindNew(snapshot, database, model.JiraKey, model.ColTicket)
	if err != nil {
		return model.NewTable(model.DatabaseColumns...), fmt.Errorf("could not diff snapshot against database: %w", err)
	}
	if fresh.Len() == 0 {
		return model.NewTable(model.DatabaseColumns...), nil
	}

	labels := LabelColumns(fresh)
	now := p.now()

	out := model.NewTable()
	for _, src := range fresh.Rows {
		r := rename(src)

		r[model.ColPriority] = derive.RankPriority(r[model.ColPriority])
		r[model.ColCreated] = derive.NormalizeDate(r[model.ColCreated])
		r[model.ColResolved] = derive.NormalizeDate(r[model.ColResolved])

		key := r[model.ColTicket]
		r[model.ColTicketID] = key
		r[model.ColURLConcat] = derive.IssueURL(p.BaseURL, key)
		r[model.ColURLText] = derive.RenderDisplayKey(key, p.BaseURL)

		// Each step reads the previous step's cell.
		limit := derive.SLALimitDays(r[model.ColPriority])
		r[model.ColSLALimit] = strconv.Itoa(limit)
		r[model.ColSLADeadline] = derive.SLADeadline(r[model.ColCreated], limit)
		r[model.ColSLAOverdue] = strconv.Itoa(derive.SLAOverdueDays(r[model.ColSLADeadline], now))

		r[model.ColDaysToDone] = derive.FormatDaysToComplete(r[model.ColCreated], r[model.ColResolved])

		values := make([]string, 0, len(labels))
		for _, c := range labels {
			values = append(values, src[c])
		}
		r[model.ColClient] = p.Clients.Attribute(values...)

		out.Append(r)
	}

	out.Reorder(model.DatabaseColumns)
	return out, nil
}

func (p *Preparer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func rename(src model.Row) model.Row {
	r := make(model.Row, len(model.DatabaseColumns))
	for from, to := range model.SnapshotRename {
		if v, ok := src[from]; ok {
			r[to] = strings.TrimSpace(v)
		}
	}
	return r
}

// LabelColumns lists the label columns of a snapshot ("Labels", "Labels.1", ...)
// in a stable order.
func LabelColumns(t *model.Table) []string {
	var cols []string
	for _, c := range t.Columns {
		if c == model.JiraLabels || strings.HasPrefix(c, model.JiraLabels+".") {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}
