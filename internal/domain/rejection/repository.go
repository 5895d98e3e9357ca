package rejection

import (
	"context"
	"sync"
)

// Sink persists rejected records for review.
type Sink interface {
	Write(ctx context.Context, records []Record) error
}

// MemorySink keeps written records in memory. Safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
	limit   int
	dropped int
}

// NewMemorySink keeps every written record.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// NewBoundedMemorySink keeps only the most recent limit records. A limit <= 0 keeps all.
func NewBoundedMemorySink(limit int) *MemorySink {
	if limit < 0 {
		limit = 0
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Write(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	if s.limit > 0 && len(s.records) > s.limit {
		over := len(s.records) - s.limit
		s.dropped += over
		s.records = append([]Record(nil), s.records[over:]...)
	}
	return nil
}

func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Dropped is the number of records evicted to stay within the limit.
func (s *MemorySink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
