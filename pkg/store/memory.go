package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// Memory is a Store kept in process memory.
type Memory struct {
	mu     sync.Mutex
	tables map[string]*model.Table
	fail   map[string]int
	writes map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string]*model.Table),
		fail:   make(map[string]int),
		writes: make(map[string]int),
	}
}

// Put sets the content of a store.
func (m *Memory) Put(id string, t *model.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id] = t.Clone()
}

// FailWrites makes the next n Replace calls on id fail after clearing it,
// the way a spreadsheet clear followed by a failed update does.
func (m *Memory) FailWrites(id string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[id] = n
}

// Writes returns the number of successful Replace calls on id.
func (m *Memory) Writes(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[id]
}

// Read implements Store. Unknown ids read as an empty table.
func (m *Memory) Read(_ context.Context, id string) (*model.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return model.NewTable(), nil
	}
	return t.Clone(), nil
}

// Replace implements Store.
func (m *Memory) Replace(_ context.Context, id string, t *model.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.fail[id]; n > 0 {
		m.fail[id] = n - 1
		m.tables[id] = model.NewTable()
		return fmt.Errorf("write to '%s' rejected", id)
	}
	m.tables[id] = t.Clone()
	m.writes[id]++
	return nil
}
