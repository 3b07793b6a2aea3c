package faqrepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

// MemoryRepository is an in-memory QueryLog used for tests/dev.
// It keeps at most capacity records, dropping the oldest.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	capacity int
	records  []faq.QueryRecord
}

// NewMemoryRepository constructs a repo backed by memory. capacity <= 0 means unbounded.
func NewMemoryRepository(capacity int) *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		capacity: capacity,
	}
}

// Append implements faq.QueryLog.
func (r *MemoryRepository) Append(_ context.Context, record faq.QueryRecord) (faq.QueryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.records = append(r.records, record)
	if r.capacity > 0 && len(r.records) > r.capacity {
		r.records = append([]faq.QueryRecord(nil), r.records[len(r.records)-r.capacity:]...)
	}
	return record, nil
}

// Recent implements faq.QueryLog, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]faq.QueryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	out := make([]faq.QueryRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

var _ faq.QueryLog = (*MemoryRepository)(nil)
