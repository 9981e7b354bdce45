// Package testutil holds in-memory implementations of the repository
// interfaces for handler and service tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "invoicing-backend/errors"
)

// FilterFunc reports whether item belongs in a List result.
type FilterFunc[T any] func(item T) bool

// LessFunc orders List results.
type LessFunc[T any] func(a, b T) bool

// InMemoryStore is a map keyed by id that remembers insertion order.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewErrorf("item %s already exists", id).
			WithHint("Item already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	s.order = append(s.order, id)
	return nil
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewErrorf("item %s not found", id).Mark(ierr.ErrNotFound)
	}
	return item, nil
}

// List returns matching items in insertion order, then sorted by less when
// given. Equal items keep insertion order.
func (s *InMemoryStore[T]) List(ctx context.Context, filter FilterFunc[T], less LessFunc[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if item := s.items[id]; filter == nil || filter(item) {
			result = append(result, item)
		}
	}
	if less != nil {
		sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	}
	return result
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item %s not found", id).Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewErrorf("item %s not found", id).Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = nil
}
