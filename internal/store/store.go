// Package store holds the client's in-memory entity cache.
//
// The store is the single shared resource behind every view of the data: it
// is built per session, populated from the server on start, and mutated only
// through the sync engine's entry points (coordinator, undo manager, merge
// handler). It owns no on-disk format.
package store

import (
	"sync"

	"boardsync-cli/internal/model"
)

// Entity is anything the store can key by canonical id.
type Entity interface {
	EntityID() int64
}

// Collection is one id-keyed entity set. The map is the source of truth;
// the order slice only preserves first-seen insertion order for listing.
// Upserting an existing id replaces in place and never reorders.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	byID  map[int64]T
	order []int64

	changed func()
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{byID: map[int64]T{}}
}

// UpsertOne inserts or replaces by id. Entities with a zero id are dropped:
// the normalizer never emits them, and storing them would break dedup.
func (c *Collection[T]) UpsertOne(e T) {
	if e.EntityID() == 0 {
		return
	}
	c.mu.Lock()
	c.upsertLocked(e)
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) UpsertMany(items []T) {
	c.mu.Lock()
	for _, e := range items {
		if e.EntityID() == 0 {
			continue
		}
		c.upsertLocked(e)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) upsertLocked(e T) {
	id := e.EntityID()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = e
}

// Remove deletes by id. Removing an absent id is a no-op and fires no
// change signal.
func (c *Collection[T]) Remove(id int64) bool {
	c.mu.Lock()
	if _, ok := c.byID[id]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.byID, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.notify()
	return true
}

func (c *Collection[T]) Find(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

// All returns the entities in first-seen order. The slice is a fresh copy;
// callers can hold it across store mutations.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func (c *Collection[T]) notify() {
	if c.changed != nil {
		c.changed()
	}
}

// Store aggregates the per-type collections for one session.
type Store struct {
	Tasks       *Collection[model.Task]
	Projects    *Collection[model.Project]
	Users       *Collection[model.User]
	Departments *Collection[model.Department]
	Labels      *Collection[model.Label]

	mu   sync.Mutex
	subs []func()
}

func New() *Store {
	s := &Store{
		Tasks:       NewCollection[model.Task](),
		Projects:    NewCollection[model.Project](),
		Users:       NewCollection[model.User](),
		Departments: NewCollection[model.Department](),
		Labels:      NewCollection[model.Label](),
	}
	s.Tasks.changed = s.broadcast
	s.Projects.changed = s.broadcast
	s.Users.changed = s.broadcast
	s.Departments.changed = s.broadcast
	s.Labels.changed = s.broadcast
	return s
}

// Subscribe registers a callback fired after every mutating operation.
// It is one coarse "store changed" signal: subscribers re-read whatever
// they render, there are no per-field events.
func (s *Store) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) broadcast() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
