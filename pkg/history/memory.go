package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in memory. Data is lost when the process
// exits; it exists for tests and for runs where persistence is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*RunRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*RunRecord)}
}

// Save appends a run record.
func (s *MemoryStore) Save(ctx context.Context, record *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

// Get retrieves a run by ID, or nil when absent.
func (s *MemoryStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

// Query returns matching runs, newest first.
func (s *MemoryStore) Query(ctx context.Context, q *Query) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*RunRecord
	for _, record := range s.records {
		if !matches(record, q) {
			continue
		}
		copied := *record
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if q != nil && q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matches(record *RunRecord, q *Query) bool {
	if q == nil {
		return true
	}
	if q.Status != "" && record.Status != q.Status {
		return false
	}
	if q.DocumentName != "" && record.DocumentName != q.DocumentName {
		return false
	}
	if q.Since != nil && record.CreatedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && record.CreatedAt.After(*q.Until) {
		return false
	}
	return true
}

// Prune removes runs created before the cutoff.
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, record := range s.records {
		if record.CreatedAt.Before(olderThan) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
