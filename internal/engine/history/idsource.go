package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDSource generates snapshot ids. Ids must be unique for the lifetime of the
// process and increase in creation order.
type IDSource interface {
	NextID() string
}

// IDSourceFunc adapts a function to IDSource.
type IDSourceFunc func() string

// NextID calls f.
func (f IDSourceFunc) NextID() string { return f() }

// UUIDSource issues UUIDv7 ids, which sort by creation time.
type UUIDSource struct{}

// NewUUIDSource returns the default id source.
func NewUUIDSource() UUIDSource { return UUIDSource{} }

// NextID returns a new UUIDv7 string.
func (UUIDSource) NextID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does.
		return uuid.NewString()
	}
	return id.String()
}

// SequenceSource issues ids of the form "snapshot_<unixms>_<n>" from a
// counter owned by the source.
type SequenceSource struct {
	mu     sync.Mutex
	prefix string
	next   uint64
	now    func() time.Time
}

// NewSequenceSource creates a counter-based id source. A nil clock uses
// time.Now.
func NewSequenceSource(now func() time.Time) *SequenceSource {
	if now == nil {
		now = time.Now
	}
	return &SequenceSource{prefix: "snapshot", now: now}
}

// NextID returns the next id in the sequence.
func (s *SequenceSource) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%s_%d_%d", s.prefix, s.now().UnixMilli(), s.next)
	s.next++
	return id
}
