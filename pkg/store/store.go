// Package store defines the keyed table stores the pipeline reads and
// rewrites, and a staged write that restores stores on failure.
package store

import (
	"context"
	"errors"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// ErrNotFound is returned when a store id is not configured.
var ErrNotFound = errors.New("store not found")

// Store reads and rewrites whole tables. Replace clears the destination
// before writing, so a failed Replace may leave it empty.
type Store interface {
	Read(ctx context.Context, id string) (*model.Table, error)
	Replace(ctx context.Context, id string, t *model.Table) error
}
