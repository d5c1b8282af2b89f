package reconcile

import (
	"github.com/harrisonrobin/backlog/pkg/derive"
	"github.com/harrisonrobin/backlog/pkg/model"
)

// NumericColumns are the derived number cells Sanitize inspects.
var NumericColumns = []string{
	model.ColSLALimit,
	model.ColSLAOverdue,
	model.ColDaysToDone,
}

// Sanitize blanks NaN and infinite values in the numeric columns and
// returns how many cells it changed. Free text is left alone.
func Sanitize(t *model.Table) int {
	n := 0
	for _, r := range t.Rows {
		for _, c := range NumericColumns {
			if v, ok := r[c]; ok && derive.IsNonFinite(v) {
				r[c] = ""
				n++
			}
		}
	}
	return n
}
