// Package objpool provides a fixed-capacity store of pre-built, reusable
// instances of one kind. Steady-state frames acquire and release instances
// without allocating; exhaustion degrades to on-the-spot construction
// (an overflow instance) rather than failing.
package objpool

import (
	"sync"

	"go.uber.org/zap"
)

// Factory constructs one default instance. It is called capacity times at
// construction, by Reserve, and on the overflow path of Acquire.
type Factory[T any] func() T

// ResetFunc restores an instance to its canonical reusable state before it
// is requeued as available.
type ResetFunc[T any] func(T)

// Pool is a thread-safe reusable-instance store for one item kind. A single
// coarse mutex guards the available queue, so contention scales with
// acquire/release frequency, not with item count.
//
// Invariant: available + inUse == totalCreated at all times.
type Pool[T comparable] struct {
	mu        sync.Mutex
	available []T

	factory Factory[T]
	reset   ResetFunc[T]
	log     *zap.Logger

	capacity     int
	inUse        int
	totalCreated int
}

// Stats is a consistent snapshot of pool counters taken under the pool lock.
type Stats struct {
	Capacity     int
	InUse        int
	Available    int
	TotalCreated int
	// Utilization is InUse / TotalCreated. Values near 1.0 with
	// TotalCreated above Capacity mean the pool is overflowing and its
	// declared capacity should be raised.
	Utilization float64
}

// Option configures a Pool.
type Option[T comparable] func(*Pool[T])

// WithReset sets the per-kind reset step applied on Release.
func WithReset[T comparable](reset ResetFunc[T]) Option[T] {
	return func(p *Pool[T]) { p.reset = reset }
}

// WithLogger sets the logger used to report overflow allocations.
func WithLogger[T comparable](logger *zap.Logger) Option[T] {
	return func(p *Pool[T]) {
		if logger != nil {
			p.log = logger
		}
	}
}

// New pre-builds capacity instances with the factory. Cost is proportional
// to capacity; construct pools during load, not inside the frame loop.
func New[T comparable](capacity int, factory Factory[T], opts ...Option[T]) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}

	p := &Pool[T]{
		available:    make([]T, 0, capacity),
		factory:      factory,
		log:          zap.NewNop(),
		capacity:     capacity,
		totalCreated: capacity,
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < capacity; i++ {
		p.available = append(p.available, factory())
	}
	return p
}

// Acquire pops one instance from the available queue and marks it in-use.
// When the queue is empty it constructs an overflow instance on the spot:
// exhaustion is never a hard error, but the extra allocation is exactly what
// the pool exists to avoid, so it is logged and counted in TotalCreated.
func (p *Pool[T]) Acquire() T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.available) == 0 {
		p.totalCreated++
		p.inUse++
		p.log.Warn("pool exhausted, allocating overflow instance",
			zap.Int("capacity", p.capacity),
			zap.Int("total_created", p.totalCreated))
		return p.factory()
	}

	v := p.available[0]
	p.available = p.available[1:]
	p.inUse++
	return v
}

// Release resets the instance and requeues it as available. Releasing the
// zero value is a no-op.
func (p *Pool[T]) Release(v T) {
	var zero T
	if v == zero {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reset != nil {
		p.reset(v)
	}
	p.available = append(p.available, v)
	p.inUse--
}

// Reserve grows the pool by pre-building extra instances. Like New,
// this allocates and is only safe outside the per-frame hot path.
func (p *Pool[T]) Reserve(extra int) {
	if extra <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < extra; i++ {
		p.available = append(p.available, p.factory())
	}
	p.capacity += extra
	p.totalCreated += extra
}

// Capacity returns the declared capacity (pre-built plus reserved).
func (p *Pool[T]) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

// InUse returns the number of instances currently acquired.
func (p *Pool[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Available returns the number of instances ready to be acquired.
func (p *Pool[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}

// TotalCreated returns every instance ever constructed by this pool,
// including overflow instances.
func (p *Pool[T]) TotalCreated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalCreated
}

// Utilization returns InUse / TotalCreated, or 0 for an empty pool.
func (p *Pool[T]) Utilization() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.utilizationLocked()
}

// Stats returns a consistent snapshot of all counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Capacity:     p.capacity,
		InUse:        p.inUse,
		Available:    len(p.available),
		TotalCreated: p.totalCreated,
		Utilization:  p.utilizationLocked(),
	}
}

func (p *Pool[T]) utilizationLocked() float64 {
	if p.totalCreated == 0 {
		return 0
	}
	return float64(p.inUse) / float64(p.totalCreated)
}
