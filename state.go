package summon

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// State is a versioned reactive value cell.
//
// Reading a cell while a composer is actively composing registers the
// owning Recomposer as a listener. Writing a cell while no composer is
// active notifies listeners, which coalesce the notification into a single
// scheduled recomposition. Writes performed during a composition pass apply
// synchronously and schedule nothing - the running pass already observes
// them.
type State[T any] struct {
	mu        sync.Mutex
	value     T
	version   uint64
	listeners mapset.Set[*Recomposer]
}

// NewState creates a cell holding initial. Inside a composition prefer
// RememberState, which memoizes the cell positionally.
func NewState[T any](initial T) *State[T] {
	return &State[T]{
		value:     initial,
		listeners: mapset.NewSet[*Recomposer](),
	}
}

// Get returns the current value. When called during an active composition
// pass it records a dependency edge from this cell to the composition.
func (s *State[T]) Get() T {
	if c := activeComposer(); c != nil && c.composing {
		s.listeners.Add(c.recomposer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores v, bumps the version, and notifies listeners.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.version++
	s.mu.Unlock()

	for _, rec := range s.listeners.ToSlice() {
		rec.invalidate()
	}
}

// Version returns the write counter. Each effective Set increments it.
func (s *State[T]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// RemoveListener detaches a recomposer, used when its composition disposes.
func (s *State[T]) RemoveListener(rec *Recomposer) {
	s.listeners.Remove(rec)
}

// SetIfChanged writes v only when it differs from the current value,
// avoiding a recomposition for no-op writes.
func SetIfChanged[T comparable](s *State[T], v T) {
	s.mu.Lock()
	same := s.value == v
	s.mu.Unlock()
	if same {
		return
	}
	s.Set(v)
}
