package history

import (
	"context"
	"sync"

	"github.com/JaimeStill/attest/pkg/pagination"
)

type memory struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
}

// NewMemory returns a process-local Store. Records do not survive restart.
func NewMemory() Store {
	return &memory{index: make(map[string]int)}
}

func (m *memory) Append(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[r.ID]; ok {
		return ErrDuplicate
	}

	m.index[r.ID] = len(m.records)
	m.records = append(m.records, r.Clone())
	return nil
}

func (m *memory) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records))
	for i, r := range m.records {
		out[len(m.records)-1-i] = r.Clone()
	}
	return out, nil
}

func (m *memory) Find(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, ErrNotFound
	}

	r := m.records[i].Clone()
	return &r, nil
}

func (m *memory) Search(ctx context.Context, f Filter, page pagination.PageRequest) (pagination.PageResult[Record], error) {
	all, err := m.List(ctx)
	if err != nil {
		return pagination.PageResult[Record]{}, err
	}
	return pagination.Slice(filterRecords(all, f), page), nil
}
