package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// ErrSchemaMismatch is returned when a key column is missing from one of the tables.
var ErrSchemaMismatch = errors.New("key column not found")

// FindNew returns the incoming rows whose key does not appear in existing.
// If either key column is missing, it returns an empty table along with an
// error wrapping ErrSchemaMismatch; callers treat that as "nothing new".
// A table with no columns at all is an empty store and has every key absent.
func FindNew(incoming, existing *model.Table, incomingKey, existingKey string) (*model.Table, error) {
	if !incoming.HasColumn(incomingKey) {
		return emptyLike(incoming), fmt.Errorf("%w: '%s' not in incoming data", ErrSchemaMismatch, incomingKey)
	}
	if existing != nil && len(existing.Columns) > 0 && !existing.HasColumn(existingKey) {
		return emptyLike(incoming), fmt.Errorf("%w: '%s' not in store", ErrSchemaMismatch, existingKey)
	}

	seen := make(map[string]struct{}, existing.Len())
	if existing != nil {
		for _, r := range existing.Rows {
			if k := strings.TrimSpace(r[existingKey]); k != "" {
				seen[k] = struct{}{}
			}
		}
	}

	out := emptyLike(incoming)
	for _, r := range incoming.Rows {
		k := strings.TrimSpace(r[incomingKey])
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		out.Rows = append(out.Rows, r.Clone())
	}
	return out, nil
}

func emptyLike(t *model.Table) *model.Table {
	if t == nil {
		return model.NewTable()
	}
	return model.NewTable(t.Columns...)
}
