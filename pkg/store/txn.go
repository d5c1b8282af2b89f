package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// Journal persists the pre-write content of stores while a commit runs.
type Journal interface {
	Record(id string, t *model.Table)
	Clear()
	Save() error
}

// Txn stages new table contents and commits them in order. If a write
// fails, every store written so far, the failing one included, is
// restored to the content it had when it was read.
type Txn struct {
	st      Store
	journal Journal
	before  map[string]*model.Table
	staged  map[string]*model.Table
	order   []string
}

// Begin starts a transaction over st. journal may be nil.
func Begin(st Store, journal Journal) *Txn {
	return &Txn{
		st:      st,
		journal: journal,
		before:  make(map[string]*model.Table),
		staged:  make(map[string]*model.Table),
	}
}

// Read returns a copy of the store content and remembers the original
// for rollback. Repeated reads of the same id return the first snapshot.
func (tx *Txn) Read(ctx context.Context, id string) (*model.Table, error) {
	if t, ok := tx.before[id]; ok {
		return t.Clone(), nil
	}
	t, err := tx.st.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read store '%s': %w", id, err)
	}
	if t == nil {
		t = model.NewTable()
	}
	tx.before[id] = t.Clone()
	return t, nil
}

// Stage records the new content of a store. Stores are written in the
// order they were first staged.
func (tx *Txn) Stage(id string, t *model.Table) {
	if _, ok := tx.staged[id]; !ok {
		tx.order = append(tx.order, id)
	}
	tx.staged[id] = t
}

// Staged returns the store ids with pending writes, in commit order.
func (tx *Txn) Staged() []string {
	return append([]string(nil), tx.order...)
}

// Commit writes every staged table.
func (tx *Txn) Commit(ctx context.Context) error {
	for _, id := range tx.order {
		if _, ok := tx.before[id]; !ok {
			if _, err := tx.Read(ctx, id); err != nil {
				return err
			}
		}
	}

	if tx.journal != nil {
		for _, id := range tx.order {
			tx.journal.Record(id, tx.before[id])
		}
		if err := tx.journal.Save(); err != nil {
			return fmt.Errorf("failed to save backup journal: %w", err)
		}
	}

	var touched []string
	for _, id := range tx.order {
		touched = append(touched, id)
		if err := tx.st.Replace(ctx, id, tx.staged[id]); err != nil {
			werr := fmt.Errorf("failed to write store '%s': %w", id, err)
			// Restore even when ctx was cancelled mid-write.
			rerr := tx.rollback(context.WithoutCancel(ctx), touched)
			if rerr == nil {
				tx.clearJournal()
			}
			return errors.Join(werr, rerr)
		}
	}

	tx.clearJournal()
	return nil
}

// clearJournal drops the backup once every store holds consistent content.
func (tx *Txn) clearJournal() {
	if tx.journal == nil {
		return
	}
	tx.journal.Clear()
	if err := tx.journal.Save(); err != nil {
		log.Printf("Warning: could not clear backup journal: %v", err)
	}
}

func (tx *Txn) rollback(ctx context.Context, ids []string) error {
	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		log.Printf("restoring store '%s' to its previous content", id)
		if err := tx.st.Replace(ctx, id, tx.before[id]); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore store '%s': %w", id, err))
		}
	}
	return errors.Join(errs...)
}
