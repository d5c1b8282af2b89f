package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/backlog/pkg/model"
	"github.com/harrisonrobin/backlog/pkg/store"
)

const journalFile = "journal.json"

// Entry is the content a store had before a commit started writing it.
type Entry struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	SavedAt time.Time           `json:"saved_at"`
}

// Table converts the entry back into a table.
func (e Entry) Table() *model.Table {
	t := model.NewTable(e.Columns...)
	for _, r := range e.Rows {
		t.Append(model.Row(r).Clone())
	}
	return t
}

// Journal keeps the pre-write content of every store a commit is about to
// rewrite. A non-empty journal on disk means the last commit did not finish.
type Journal struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	mu      sync.Mutex
	dirty   bool
}

var _ store.Journal = (*Journal)(nil)

// NewJournal opens the journal in dir, loading it if it exists.
func NewJournal(dir string) (*Journal, error) {
	j := &Journal{
		Entries: make(map[string]Entry),
		Path:    filepath.Join(dir, journalFile),
	}

	if _, err := os.Stat(j.Path); err == nil {
		if err := j.Load(); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *Journal) Load() error {
	f, err := os.Open(j.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(j)
}

func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.dirty {
		return nil
	}

	dir := filepath.Dir(j.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(j.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(j); err != nil {
		return err
	}
	j.dirty = false
	return nil
}

// Record stores the content of a store under id, replacing any earlier entry.
func (j *Journal) Record(id string, t *model.Table) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e := Entry{Columns: append([]string(nil), t.Columns...), SavedAt: time.Now()}
	for _, r := range t.Rows {
		e.Rows = append(e.Rows, r.Clone())
	}
	j.Entries[id] = e
	j.dirty = true
}

// Clear drops all entries.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.Entries) > 0 {
		j.Entries = make(map[string]Entry)
		j.dirty = true
	}
}

// Pending returns the recorded store ids, sorted.
func (j *Journal) Pending() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	ids := make([]string, 0, len(j.Entries))
	for id := range j.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the recorded content of a store.
func (j *Journal) Get(id string) (*model.Table, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.Entries[id]
	if !ok {
		return nil, false
	}
	return e.Table(), true
}

// Restore writes every recorded table back to st and clears the journal.
// Entries that fail to restore stay in the journal for the next attempt.
func (j *Journal) Restore(ctx context.Context, st store.Store) ([]string, error) {
	var restored []string
	for _, id := range j.Pending() {
		t, _ := j.Get(id)
		if err := st.Replace(ctx, id, t); err != nil {
			return restored, fmt.Errorf("failed to restore store '%s': %w", id, err)
		}
		j.mu.Lock()
		delete(j.Entries, id)
		j.dirty = true
		j.mu.Unlock()
		restored = append(restored, id)
		if err := j.Save(); err != nil {
			return restored, err
		}
	}
	return restored, nil
}
