// Package observer provides observable values: a getter, a setter that
// publishes on change, and callback or channel subscriptions.
package observer

import (
	"slices"
	"sync"
)

// subscribers is the registration list shared by Value and List.
type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.fns = append(s.fns, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.fns = slices.DeleteFunc(s.fns, func(sub subscriber[T]) bool { return sub.id == id })
	}
}

// notify calls every observer in registration order, outside any lock
func (s *subscribers[T]) notify(v T) {
	s.mu.Lock()
	fns := slices.Clone(s.fns)
	s.mu.Unlock()
	for _, sub := range fns {
		sub.fn(v)
	}
}

// chanObserver adapts a subscription to a channel. Sends never block: a
// reader that falls behind misses intermediate values.
func chanObserver[T any](ch chan T) func(T) {
	return func(v T) {
		select {
		case ch <- v:
		default:
		}
	}
}

// Value is an observable value of a comparable type.
type Value[T comparable] struct {
	mu   sync.RWMutex
	v    T
	subs subscribers[T]
}

// NewValue creates a Value holding v
func NewValue[T comparable](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the current value
func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and notifies observers when it differs from the current value.
// It reports whether the value changed.
func (o *Value[T]) Set(v T) bool {
	o.mu.Lock()
	if o.v == v {
		o.mu.Unlock()
		return false
	}
	o.v = v
	o.mu.Unlock()

	o.subs.notify(v)
	return true
}

// Observe registers fn for future changes and returns a function that
// removes it.
func (o *Value[T]) Observe(fn func(T)) (cancel func()) {
	return o.subs.add(fn)
}

// Chan returns a channel receiving future changes.
func (o *Value[T]) Chan(buf int) (<-chan T, func()) {
	ch := make(chan T, buf)
	return ch, o.subs.add(chanObserver(ch))
}
