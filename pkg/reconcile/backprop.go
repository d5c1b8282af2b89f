package reconcile

import "github.com/harrisonrobin/backlog/pkg/model"

// BackPropagate copies board-curated cells onto the matching task database
// rows. Only columns the database declares are written, and empty board
// cells are ignored.
func BackPropagate(board, database *model.Table, fields ColumnMap) model.Summary {
	sum := model.Summary{Stage: "back-propagate"}
	idx := database.Index(model.ColTicket)
	for _, b := range board.Rows {
		i, ok := idx[BoardKey(b)]
		if !ok {
			sum.Skipped++
			continue
		}
		r := database.Rows[i]
		changed := false
		for _, f := range fields {
			v := b[f.From]
			if v == "" || !database.HasColumn(f.To) || r[f.To] == v {
				continue
			}
			r[f.To] = v
			changed = true
		}
		if changed {
			sum.Updated++
		}
	}
	return sum
}
