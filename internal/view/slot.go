package view

import "sync"

// Slot holds the latest result of a view fetch. Each fetch takes a
// generation from Begin; Apply only accepts the newest generation, so a
// slow response for an outdated request cannot overwrite fresher data.
type Slot[T any] struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	value   T
}

// Begin issues the generation for a new fetch.
func (s *Slot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply stores v if gen is still the latest issued generation and reports
// whether it did.
func (s *Slot[T]) Apply(gen uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.issued || gen <= s.applied {
		return false
	}
	s.applied = gen
	s.value = v
	return true
}

// Current returns the applied value and whether a newer fetch is still
// outstanding.
func (s *Slot[T]) Current() (v T, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.applied != s.issued
}

func (s *Slot[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}
