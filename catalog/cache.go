package catalog

import (
	"context"
	"sync"
)

// Result is the view-facing state of a resource: the last successful value
// (if any), whether a fetch is in flight, and the last fetch error. A failed
// refresh never clears previously cached data, so views keep rendering the
// last-known-good rows alongside an inline error.
type Result[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

// Resource caches the last successful fetch for one logical resource key
// ("books", "profile"). Concurrent fetches for the same key collapse into a
// single request; every waiter observes the same outcome. Mutations mark the
// resource stale through Invalidate, and the next read refetches.
type Resource[T any] struct {
	key   string
	fetch func(context.Context) (T, error)

	mu       sync.Mutex
	data     T
	hasData  bool
	stale    bool
	err      error
	inflight *call[T]
}

type call[T any] struct {
	done chan struct{}
}

// NewResource creates a resource handle for the given key and fetch function.
func NewResource[T any](key string, fetch func(context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{key: key, fetch: fetch}
}

// Key returns the logical resource name.
func (r *Resource[T]) Key() string { return r.key }

// Snapshot returns the current cached state without fetching.
func (r *Resource[T]) Snapshot() Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Result[T]{Data: r.data, HasData: r.hasData, Loading: r.inflight != nil, Err: r.err}
}

// Get returns fresh data, fetching if the cache is empty or stale. A fresh
// cached value is served without touching the network.
func (r *Resource[T]) Get(ctx context.Context) Result[T] {
	r.mu.Lock()
	fresh := r.hasData && !r.stale && r.inflight == nil && r.err == nil
	r.mu.Unlock()
	if fresh {
		return r.Snapshot()
	}
	return r.Fetch(ctx)
}

// Fetch runs the fetch function, or joins a fetch already in flight so that
// no duplicate concurrent requests are issued for the same key. On failure
// the previously cached value is retained and returned alongside the error.
func (r *Resource[T]) Fetch(ctx context.Context) Result[T] {
	r.mu.Lock()
	if c := r.inflight; c != nil {
		r.mu.Unlock()
		<-c.done
		return r.Snapshot()
	}
	c := &call[T]{done: make(chan struct{})}
	r.inflight = c
	r.mu.Unlock()

	value, err := r.fetch(ctx)

	r.mu.Lock()
	if err == nil {
		r.data = value
		r.hasData = true
		r.stale = false
		r.err = nil
	} else {
		// Stale-while-revalidate: keep the prior value.
		r.err = err
	}
	r.inflight = nil
	result := Result[T]{Data: r.data, HasData: r.hasData, Err: r.err}
	r.mu.Unlock()
	close(c.done)

	return result
}

// Invalidate marks the cached value stale so the next read refetches.
// Invalidating while a fetch is outstanding is harmless; overlapping
// refetches collapse into the in-flight call.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	r.stale = true
	r.mu.Unlock()
}

// Invalidator is any cache entry a successful mutation can mark stale.
type Invalidator interface {
	Invalidate()
}

// Mutate runs op and, only after it settles successfully, invalidates each
// listed resource so the next read refetches. A failed mutation returns its
// error and touches no cached state.
func Mutate(ctx context.Context, op func(context.Context) error, resources ...Invalidator) error {
	if err := op(ctx); err != nil {
		return err
	}
	for _, r := range resources {
		r.Invalidate()
	}
	return nil
}
