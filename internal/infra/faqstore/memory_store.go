package faqstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

// MemoryStore keeps trending counters in process memory. Counts are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	counts   map[string]int64
	displays map[string]string
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counts:   make(map[string]int64),
		displays: make(map[string]string),
	}
}

// IncrementQuery bumps the counter for a canonical query; the first display string wins.
func (s *MemoryStore) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[canonical]++
	if _, exists := s.displays[canonical]; !exists && display != "" {
		s.displays[canonical] = display
	}
	return nil
}

// TopQueries returns the most frequent questions, ties broken alphabetically.
func (s *MemoryStore) TopQueries(_ context.Context, limit int) ([]faq.TrendingQuery, error) {
	s.mu.RLock()
	items := make([]faq.TrendingQuery, 0, len(s.counts))
	for canonical, count := range s.counts {
		display, ok := s.displays[canonical]
		if !ok {
			display = canonical
		}
		items = append(items, faq.TrendingQuery{Query: display, Count: count})
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ faq.Store = (*MemoryStore)(nil)
