package domain

import "sync"

// Future is a value produced asynchronously and resolved exactly once.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

// NewFuture creates an unresolved future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved creates a future that already holds v
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Resolve stores v and wakes waiters. Only the first call has an effect;
// it reports whether this call resolved the future.
func (f *Future[T]) Resolve(v T) bool {
	resolved := false
	f.once.Do(func() {
		f.value = v
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the value is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Value returns the value and true once resolved, without blocking
func (f *Future[T]) Value() (T, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero T
		return zero, false
	}
}
