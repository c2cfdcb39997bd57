package observer

import (
	"slices"
	"sync"
)

// List is an observable slice. Values are copied on the way in and out so
// observers never share backing arrays with the writer.
type List[T any] struct {
	mu    sync.RWMutex
	v     []T
	equal func(a, b T) bool
	subs  subscribers[[]T]
}

// NewList creates a List using equal to detect changes
func NewList[T any](equal func(a, b T) bool) *List[T] {
	return &List[T]{equal: equal}
}

// Get returns a copy of the current slice
func (o *List[T]) Get() []T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.v)
}

// Set replaces the slice and notifies observers when it changed.
func (o *List[T]) Set(v []T) bool {
	o.mu.Lock()
	if slices.EqualFunc(o.v, v, o.equal) {
		o.mu.Unlock()
		return false
	}
	o.v = slices.Clone(v)
	out := slices.Clone(o.v)
	o.mu.Unlock()

	o.subs.notify(out)
	return true
}

// Observe registers fn for future changes
func (o *List[T]) Observe(fn func([]T)) (cancel func()) {
	return o.subs.add(fn)
}

// Chan returns a channel receiving future changes.
func (o *List[T]) Chan(buf int) (<-chan []T, func()) {
	ch := make(chan []T, buf)
	return ch, o.subs.add(chanObserver(ch))
}
