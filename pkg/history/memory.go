package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It is used by tests and when
// no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.RunID == "" {
		return NewStorageError("memory", "save", fmt.Errorf("record must have a run id"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError("memory", "save", fmt.Errorf("store is closed"))
	}
	for _, r := range m.records {
		if r.RunID == rec.RunID {
			return NewStorageError("memory", "save", fmt.Errorf("duplicate run id %q", rec.RunID))
		}
	}

	cp := *rec
	m.records = append(m.records, &cp)
	// Stable so records saved in the same instant keep insertion order.
	sort.SliceStable(m.records, func(i, j int) bool {
		return m.records[i].Timestamp.Before(m.records[j].Timestamp)
	})
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		cp := *m.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteBefore implements Store.
func (m *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// DeleteOldest implements Store.
func (m *MemoryStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n > int64(len(m.records)) {
		n = int64(len(m.records))
	}
	m.records = append([]*Record(nil), m.records[n:]...)
	return n, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
