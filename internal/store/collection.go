package store

import (
	"context"
	"sync"

	"taskhub/internal/storage"
)

// collection persists a list of entities as one storage document.
// Mutations run under mu so each read/modify/write is atomic within the
// process; reads load the document without locking.
type collection[T any] struct {
	mu      sync.Mutex
	storage storage.Storage
	key     string
	idOf    func(*T) string
}

// snapshot is a loaded document indexed by id.
type snapshot[T any] struct {
	items []*T
	index map[string]int
	idOf  func(*T) string
}

func newCollection[T any](st storage.Storage, key string, idOf func(*T) string) *collection[T] {
	return &collection[T]{storage: st, key: key, idOf: idOf}
}

// read loads the whole document. Storage errors are returned unchanged.
func (c *collection[T]) read(ctx context.Context) (*snapshot[T], error) {
	var items []*T
	if _, err := c.storage.Load(ctx, c.key, &items); err != nil {
		return nil, err
	}
	snap := &snapshot[T]{items: items, idOf: c.idOf}
	snap.reindex()
	return snap, nil
}

// update loads the document, applies fn, and saves the result when fn
// reports a change. Nothing is written when fn fails or reports no change.
func (c *collection[T]) update(ctx context.Context, fn func(*snapshot[T]) (bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.read(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(snap)
	if err != nil || !changed {
		return err
	}
	return c.storage.Save(ctx, c.key, snap.list())
}

func (s *snapshot[T]) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		s.index[s.idOf(item)] = i
	}
}

func (s *snapshot[T]) get(id string) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *snapshot[T]) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *snapshot[T]) add(item *T) {
	s.index[s.idOf(item)] = len(s.items)
	s.items = append(s.items, item)
}

func (s *snapshot[T]) replace(item *T) {
	if i, ok := s.index[s.idOf(item)]; ok {
		s.items[i] = item
	}
}

func (s *snapshot[T]) remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	return true
}

// list returns the items for saving; an empty collection saves as [].
func (s *snapshot[T]) list() []*T {
	if s.items == nil {
		return []*T{}
	}
	return s.items
}
