// Package registry maps component kinds to their object pools and tracks
// instance liveness per kind. It feeds the frame orchestrator cached
// "all active instances" lists and owns the acquire/release lifecycle.
//
// The registry is not safe for concurrent use: it carries no internal locking,
// so registration, creation, destruction, and cache reads must all happen
// on the orchestrating goroutine, never from inside a dispatched worker
// task.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/utkarsh5026/framekit/component"
	"github.com/utkarsh5026/framekit/objpool"
)

var (
	// ErrUnknownKind is returned when a kind name was never registered.
	ErrUnknownKind = errors.New("registry: unknown kind")
)

// Factory builds one default instance of a kind.
type Factory func() component.Component

// record is one registered kind: immutable identity plus mutable liveness
// bookkeeping and the dirty-flagged active cache.
type record struct {
	name    string
	factory Factory
	pool    *objpool.Pool[component.Component]

	live  []component.Component
	cache []component.Component
	dirty bool
}

// Registry tracks every registered kind. Construct with New, register kinds
// at load time, then create and destroy instances from the frame loop.
type Registry struct {
	kinds map[string]*record
	order []string // registration order, keeps AllActive deterministic

	allActive []component.Component
	allDirty  bool

	log *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.log = logger
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		kinds: make(map[string]*record),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a kind name to its factory and a pool pre-built with
// poolCapacity instances. Registering an already-known name is a no-op.
// Dispatch is resolved here, once; there is no per-access type inspection.
func (r *Registry) Register(name string, poolCapacity int, factory Factory) {
	if _, ok := r.kinds[name]; ok {
		return
	}

	pool := objpool.New(poolCapacity,
		objpool.Factory[component.Component](factory),
		objpool.WithReset(func(c component.Component) { c.Reset() }),
		objpool.WithLogger[component.Component](r.log.Named(name)),
	)

	r.kinds[name] = &record{
		name:    name,
		factory: factory,
		pool:    pool,
		dirty:   true,
	}
	r.order = append(r.order, name)
	r.allDirty = true

	r.log.Info("registered kind",
		zap.String("kind", name),
		zap.Int("pool_capacity", poolCapacity))
}

// Registered reports whether the kind name is known.
func (r *Registry) Registered(name string) bool {
	_, ok := r.kinds[name]
	return ok
}

// Kinds returns all registered kind names in registration order.
func (r *Registry) Kinds() []string {
	return slices.Clone(r.order)
}

// Create draws an instance of the kind, preferring its pool. The caller
// receives the canonical reset state; constructor-style arguments are not
// supported on this path. Use CreateWith when the instance
// needs re-initialization.
func (r *Registry) Create(name string) (component.Component, error) {
	return r.CreateWith(name, nil)
}

// CreateWith draws an instance like Create and then applies init to it.
// init runs on both the pooled and the freshly constructed path, so callers
// can never observe whether the instance was recycled.
func (r *Registry) CreateWith(name string, init func(component.Component)) (component.Component, error) {
	rec, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	inst := rec.pool.Acquire()
	if init != nil {
		init(inst)
	}

	rec.live = append(rec.live, inst)
	rec.dirty = true
	r.allDirty = true
	return inst, nil
}

// Destroy removes the instance from liveness bookkeeping and returns it to
// its kind's pool. Destroying an instance that is not live is a no-op.
func (r *Registry) Destroy(name string, inst component.Component) error {
	rec, ok := r.kinds[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	if inst == nil {
		return nil
	}

	i := slices.Index(rec.live, inst)
	if i < 0 {
		return nil
	}
	rec.live = slices.Delete(rec.live, i, i+1)
	rec.dirty = true
	r.allDirty = true

	rec.pool.Release(inst)
	return nil
}

// AllOf returns the kind's cached list of currently active instances. The
// cache is recomputed only when an instance of the kind was created or
// destroyed since the last read; activity toggles alone do not invalidate
// it, matching the per-frame refresh contract.
//
// The returned slice is owned by the registry; callers must not mutate it
// and must not hold it across a create/destroy.
func (r *Registry) AllOf(name string) []component.Component {
	rec, ok := r.kinds[name]
	if !ok {
		return nil
	}

	if rec.dirty {
		rec.cache = rec.cache[:0]
		for _, inst := range rec.live {
			if inst.Active() {
				rec.cache = append(rec.cache, inst)
			}
		}
		rec.dirty = false
	}
	return rec.cache
}

// AllActive returns every kind's active instances concatenated in
// registration order, cached under the same dirty discipline as AllOf.
func (r *Registry) AllActive() []component.Component {
	if r.allDirty {
		r.allActive = r.allActive[:0]
		for _, name := range r.order {
			r.allActive = append(r.allActive, r.AllOf(name)...)
		}
		r.allDirty = false
	}
	return r.allActive
}

// BatchUpdate is the non-parallel baseline: it walks the active list and
// updates each instance synchronously. The parallel frame path must be
// functionally equivalent to this for updates free of cross-item effects.
func (r *Registry) BatchUpdate(dt float64) {
	for _, inst := range r.AllActive() {
		inst.Update(dt)
	}
}

// LiveCount returns the number of live instances of the kind, active or not.
func (r *Registry) LiveCount(name string) int {
	rec, ok := r.kinds[name]
	if !ok {
		return 0
	}
	return len(rec.live)
}

// ActiveCount returns the number of active instances across all kinds.
func (r *Registry) ActiveCount() int {
	return len(r.AllActive())
}

// KindCount returns the number of registered kinds.
func (r *Registry) KindCount() int { return len(r.kinds) }

// PoolStats returns the pool statistics for one kind.
func (r *Registry) PoolStats(name string) (objpool.Stats, error) {
	rec, ok := r.kinds[name]
	if !ok {
		return objpool.Stats{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return rec.pool.Stats(), nil
}

// Reserve grows the kind's pool outside the hot path.
func (r *Registry) Reserve(name string, extra int) error {
	rec, ok := r.kinds[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	rec.pool.Reserve(extra)
	return nil
}
