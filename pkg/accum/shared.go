// Package accum holds the shared side of the local-accumulate / exclusive-merge
// protocol: workers build private partial results without locking and fold
// them into one Shared value exactly once, inside a critical section.
package accum

import (
	"sync"
	"sync/atomic"
)

// MergeFunc folds a worker's partial result src into dst. It runs with the
// Shared lock held and may report an invariant violation, which is
// returned from Merge unchanged.
type MergeFunc[T, L any] func(dst *T, src L) error

// Shared is the single aggregate of type T that partial results of type L
// are merged into.
type Shared[T, L any] struct {
	mu     sync.Mutex
	value  T
	merge  MergeFunc[T, L]
	merges int
}

func NewShared[T, L any](initial T, merge MergeFunc[T, L]) *Shared[T, L] {
	return &Shared[T, L]{value: initial, merge: merge}
}

// Merge folds a worker's private result into the shared value.
func (s *Shared[T, L]) Merge(local L) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.merge(&s.value, local); err != nil {
		return err
	}
	s.merges++
	return nil
}

// Value returns the shared value. Call it only after every worker has
// been joined.
func (s *Shared[T, L]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Merges is the number of successful merges.
func (s *Shared[T, L]) Merges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merges
}

// Counter is the lock-free alternative for a single shared total that is
// bumped on every hit instead of once per worker.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Add(delta int64) {
	c.n.Add(delta)
}

func (c *Counter) Load() int64 {
	return c.n.Load()
}
