// Package reconcile implements the client-side catch-up contract for
// dashboards: live-pushed events are merged into a local collection by id,
// and a periodic full re-fetch replaces the collection wholesale, healing
// any missed or out-of-order pushes.
package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultInterval is the re-fetch cadence for active views.
const DefaultInterval = 5 * time.Second

// Collection is an id-keyed local view. Items arriving twice, from the live
// channel and the poll, collapse onto one entry.
type Collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	keyFn func(T) string
	less  func(a, b T) bool
}

// NewCollection builds a collection keyed by keyFn. less, when non-nil,
// orders Items output.
func NewCollection[T any](keyFn func(T) string, less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{
		items: make(map[string]T),
		keyFn: keyFn,
		less:  less,
	}
}

// ApplyLive upserts one live-pushed item by id.
func (c *Collection[T]) ApplyLive(item T) {
	c.mu.Lock()
	c.items[c.keyFn(item)] = item
	c.mu.Unlock()
}

// ReplaceAll swaps in the authoritative server list. Anything the server no
// longer returns disappears from the local view.
func (c *Collection[T]) ReplaceAll(items []T) {
	next := make(map[string]T, len(items))
	for _, it := range items {
		next[c.keyFn(it)] = it
	}
	c.mu.Lock()
	c.items = next
	c.mu.Unlock()
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	c.mu.RUnlock()
	if c.less != nil {
		sort.Slice(out, func(i, j int) bool { return c.less(out[i], out[j]) })
	}
	return out
}

// FetchFunc loads the authoritative list from the server.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Reconciler re-fetches on a fixed cadence and replaces the collection.
// Fetch errors leave the last good view in place.
type Reconciler[T any] struct {
	col      *Collection[T]
	fetch    FetchFunc[T]
	interval time.Duration
	onError  func(error)
}

func NewReconciler[T any](col *Collection[T], fetch FetchFunc[T], interval time.Duration, onError func(error)) *Reconciler[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reconciler[T]{col: col, fetch: fetch, interval: interval, onError: onError}
}

// RunOnce performs a single fetch-and-replace cycle.
func (r *Reconciler[T]) RunOnce(ctx context.Context) error {
	items, err := r.fetch(ctx)
	if err != nil {
		if r.onError != nil {
			r.onError(err)
		}
		return err
	}
	r.col.ReplaceAll(items)
	return nil
}

// Run reconciles until the context is cancelled. It fetches immediately,
// then on every tick.
func (r *Reconciler[T]) Run(ctx context.Context) {
	_ = r.RunOnce(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.RunOnce(ctx)
		}
	}
}
