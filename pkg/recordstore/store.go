package recordstore

import (
	"cmp"
	"slices"
	"sync"
)

// Record is a stored value carrying its own identifier.
type Record[R any] interface {
	// Key returns the record's identifier field.
	Key() int
	// Clone returns a copy that shares no mutable state with the receiver.
	Clone() R
}

// Builder combines a creation payload with the identifier picked by the store.
type Builder[P any, R Record[R]] func(id int, payload P) R

// Store keeps records of one kind keyed by id.
type Store[P any, R Record[R]] struct {
	mu     sync.Mutex
	nextID int
	items  map[int]R
	build  Builder[P, R]
}

// New returns an empty store whose first saved record gets id 0.
func New[P any, R Record[R]](build Builder[P, R]) *Store[P, R] {
	return &Store[P, R]{
		items: make(map[int]R),
		build: build,
	}
}

// Get returns the record stored under id.
func (s *Store[P, R]) Get(id int) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		var zero R
		return zero, false
	}
	return rec.Clone(), true
}

// GetAll returns a snapshot of every record in ascending id order. Ids are
// handed out monotonically, so this is also insertion order.
func (s *Store[P, R]) GetAll() []R {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]R, 0, len(s.items))
	for _, rec := range s.items {
		out = append(out, rec.Clone())
	}

	slices.SortFunc(out, func(a, b R) int { return cmp.Compare(a.Key(), b.Key()) })
	return out
}

// Save stores a new record built from payload and returns it.
func (s *Store[P, R]) Save(payload P) R {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	rec := s.build(id, payload)
	s.items[id] = rec
	s.nextID++

	return rec.Clone()
}

// Update rebuilds the record under id from payload. It never inserts: a
// missing id reports false and leaves the store untouched.
func (s *Store[P, R]) Update(id int, payload P) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		var zero R
		return zero, false
	}

	rec := s.build(id, payload)
	s.items[id] = rec
	return rec.Clone(), true
}

// Replace swaps the record under id for rec. rec.Key() must equal id.
func (s *Store[P, R]) Replace(id int, rec R) (R, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceLocked(id, rec)
}

// Modify applies fn to a copy of the record under id and stores the result,
// all under the store lock. fn must not block or touch any store.
func (s *Store[P, R]) Modify(id int, fn func(R) R) (R, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[id]
	if !ok {
		var zero R
		return zero, false, nil
	}
	return s.replaceLocked(id, fn(cur.Clone()))
}

func (s *Store[P, R]) replaceLocked(id int, rec R) (R, bool, error) {
	var zero R
	if rec.Key() != id {
		return zero, false, ErrIdentityMismatch
	}
	if _, ok := s.items[id]; !ok {
		return zero, false, nil
	}

	stored := rec.Clone()
	s.items[id] = stored
	return stored.Clone(), true, nil
}

// Delete removes and returns the record under id. Deleting a missing id is
// not an error.
func (s *Store[P, R]) Delete(id int) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[id]
	if !ok {
		var zero R
		return zero, false
	}
	delete(s.items, id)
	return rec, true
}

// Len reports how many records are stored.
func (s *Store[P, R]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset drops every record and restarts identities at 0.
func (s *Store[P, R]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[int]R)
	s.nextID = 0
}
