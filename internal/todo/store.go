package todo

import (
	"slices"
	"sync"
)

// Store holds the current known todo state keyed by date. The absence of
// a key means "not yet loaded", which is distinct from a present key
// with an empty bucket ("loaded, nothing there"). Remove restores
// absence when a bucket empties; Replace never does.
//
// Snapshots returned by Get are shared, not copied: callers treat them
// as read-only, and the equality gate in Replace guarantees that an
// unchanged bucket keeps its slice identity, so consumers can use
// slice identity (or the generation counter) to skip re-rendering.
type Store struct {
	mu      sync.RWMutex
	buckets map[string][]Todo
	gen     map[string]uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		buckets: make(map[string][]Todo),
		gen:     make(map[string]uint64),
	}
}

// Get returns the bucket for dateKey and whether it has been loaded.
func (s *Store) Get(dateKey string) ([]Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.buckets[dateKey]

	return items, ok
}

// Generation returns a counter that increments every time dateKey's
// bucket actually changes. Unloaded buckets report zero.
func (s *Store) Generation(dateKey string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gen[dateKey]
}

// Dates returns the loaded date keys in ascending order.
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Replace installs todos as the bucket for dateKey, sorted by position.
// When the incoming collection is element-wise equal to the current one
// (CompletedAt excluded, see EqualContent) the store is left untouched
// and false is returned: an echo of the client's own write must not
// produce a new snapshot. Returns true when the bucket changed.
func (s *Store) Replace(dateKey string, todos []Todo) bool {
	incoming := SortedBucket(todos)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, loaded := s.buckets[dateKey]
	if loaded && EqualBuckets(current, incoming) {
		return false
	}

	s.buckets[dateKey] = incoming
	s.gen[dateKey]++

	return true
}

// Patch inserts or updates a single item by identity and re-sorts the
// bucket. The incoming row's identity is matched against existing
// entries by row ID first, falling back to the recurrence key, so a
// canonical row returned by a materializing write replaces the virtual
// entry it was born from rather than duplicating it.
func (s *Store) Patch(dateKey string, t Todo) {
	id := t.Identity()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := slices.Clone(s.buckets[dateKey])

	idx := indexOf(bucket, id)
	if idx < 0 && t.RecurringTodoID != 0 {
		// A materialized row carries a fresh row ID; re-key the virtual
		// entry it was born from instead of duplicating it.
		idx = indexOf(bucket, VirtualIdentity(t.RecurringTodoID, t.InstanceDate))
	}

	if idx >= 0 {
		bucket[idx] = t
	} else {
		bucket = append(bucket, t)
	}

	sortBucket(bucket)

	s.buckets[dateKey] = bucket
	s.gen[dateKey]++
}

// Remove deletes the item id names from dateKey's bucket and renumbers
// the remainder 1..N. A bucket that empties is dropped entirely so the
// key reverts to the canonical "nothing here" state of absence. Returns
// whether an item was removed.
func (s *Store) Remove(dateKey string, id Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, loaded := s.buckets[dateKey]
	if !loaded {
		return false
	}

	if indexOf(bucket, id) < 0 {
		return false
	}

	remaining := RemoveAndRenumber(bucket, id)
	if len(remaining) == 0 {
		delete(s.buckets, dateKey)
	} else {
		s.buckets[dateKey] = remaining
	}

	s.gen[dateKey]++

	return true
}

// Find scans all loaded buckets for the item id names.
func (s *Store) Find(id Identity) (dateKey string, t Todo, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, bucket := range s.buckets {
		if idx := indexOf(bucket, id); idx >= 0 {
			return key, bucket[idx], true
		}
	}

	return "", Todo{}, false
}

// Drop forgets dateKey entirely, reverting it to "not yet loaded".
func (s *Store) Drop(dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loaded := s.buckets[dateKey]; !loaded {
		return
	}

	delete(s.buckets, dateKey)
	s.gen[dateKey]++
}
