// Package cache provides the memo tables shared by one analysis run.
//
// A Run is created per compilation and passed explicitly (or through a
// context). Tables follow compute-if-absent semantics: two goroutines racing on
// the same key may both compute, and the first stored value wins. Results are
// deterministic, so the duplicate work is harmless.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Run is the cache scope of a single analysis run.
type Run struct {
	id     uuid.UUID
	tables sync.Map // string -> clearer

	hits   atomic.Int64
	misses atomic.Int64
}

type clearer interface {
	clear()
}

// New creates an empty run scope with a fresh identity.
func New() *Run {
	return &Run{id: uuid.New()}
}

// ID identifies the run.
func (r *Run) ID() uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	return r.id
}

// Clear drops every cached entry. Tables handed out earlier stay usable and
// start empty.
func (r *Run) Clear() {
	if r == nil {
		return
	}
	r.tables.Range(func(_, v any) bool {
		v.(clearer).clear()
		return true
	})
	r.hits.Store(0)
	r.misses.Store(0)
}

// Stats returns the hit and miss counters accumulated since the last Clear.
func (r *Run) Stats() (hits, misses int64) {
	if r == nil {
		return 0, 0
	}
	return r.hits.Load(), r.misses.Load()
}

// Memo is a typed table inside a run.
type Memo[K comparable, V any] struct {
	run *Run
	m   sync.Map
}

// Table returns the run's table with the given name, creating it on first
// use. A nil run yields a private table that is not shared.
func Table[K comparable, V any](r *Run, name string) *Memo[K, V] {
	if r == nil {
		return &Memo[K, V]{}
	}
	if t, ok := r.tables.Load(name); ok {
		return t.(*Memo[K, V])
	}
	t, _ := r.tables.LoadOrStore(name, &Memo[K, V]{run: r})
	return t.(*Memo[K, V])
}

// Get returns the cached value for key.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	v, ok := m.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// GetOrCompute returns the cached value for key, computing and storing it if
// absent.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := m.m.Load(key); ok {
		m.count(true)
		return v.(V)
	}
	m.count(false)
	actual, _ := m.m.LoadOrStore(key, compute())
	return actual.(V)
}

func (m *Memo[K, V]) count(hit bool) {
	if m.run == nil {
		return
	}
	if hit {
		m.run.hits.Add(1)
	} else {
		m.run.misses.Add(1)
	}
}

func (m *Memo[K, V]) clear() {
	m.m.Clear()
}

type ctxKey struct{}

// WithRun attaches r to ctx.
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the run attached to ctx, or nil.
func FromContext(ctx context.Context) *Run {
	r, _ := ctx.Value(ctxKey{}).(*Run)
	return r
}
