package index

import "sync/atomic"

// Store publishes the live index snapshot. Rebuilds construct a complete new
// Index and swap it in atomically, so concurrent readers never observe a
// half-built index and the hot query path takes no locks.
type Store struct {
	current atomic.Pointer[Index]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot, or nil when no index has been built yet.
// A nil Index behaves as an empty one.
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Swap publishes a new snapshot. In-flight queries keep using the snapshot
// they started with.
func (s *Store) Swap(ix *Index) {
	s.current.Store(ix)
}
