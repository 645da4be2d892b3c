// Package frame drives the per-frame update phases over batch-parallel
// dispatch. Each frame runs Update, then LateUpdate, then FixedUpdate; the
// fixed phase decouples physics-rate stepping from the variable frame rate
// through an accumulator.
package frame

import (
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/framekit/component"
	"github.com/utkarsh5026/framekit/worker"
)

const (
	// DefaultFixedRate is the physics step frequency in Hz.
	DefaultFixedRate = 60.0

	// DefaultMaxFixedSteps caps catch-up iterations per frame. Without a
	// cap, a long stall would make the accumulator demand an unbounded
	// number of steps, each making the frame longer still.
	DefaultMaxFixedSteps = 8

	// Absorbs float drift so a dt sequence summing to an exact multiple
	// of the interval fires exactly that many steps.
	fixedEpsilon = 1e-9
)

// Source supplies the cached, contiguous live-instance lists the
// orchestrator partitions each frame. Implementations refresh lazily and
// must not mutate a returned slice while a phase is running over it.
type Source interface {
	Transforms() []*component.Transform
	Behaviors() []*component.Behavior
}

// Stats tracks per-phase timings and throughput across frames.
type Stats struct {
	LastUpdate      time.Duration
	LastLateUpdate  time.Duration
	LastFixedUpdate time.Duration

	TransformsProcessed int
	BehaviorsProcessed  int

	FrameCount   int64
	AvgFrameTime time.Duration

	FixedSteps int64
	// DroppedFixedTime is accumulated simulation time, in seconds,
	// discarded by the catch-up clamp. Nonzero values mean frames are
	// stalling past MaxFixedSteps worth of fixed intervals.
	DroppedFixedTime float64
}

// Orchestrator partitions instance lists into batches, feeds them to the
// worker pool, and blocks on the barrier until each phase completes. It is
// single-caller: drive it from one goroutine only.
type Orchestrator struct {
	pool *worker.Pool
	log  *zap.Logger

	enabled   bool
	threading bool

	fixedInterval float64
	accumulator   float64
	maxFixedSteps int

	stats Stats
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFixedRate sets the fixed phase frequency in Hz. Defaults to 60.
func WithFixedRate(hz float64) Option {
	return func(o *Orchestrator) {
		if hz > 0 {
			o.fixedInterval = 1 / hz
		}
	}
}

// WithMaxFixedSteps caps fixed-step catch-up iterations per frame.
func WithMaxFixedSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxFixedSteps = n
		}
	}
}

// WithThreading enables or disables parallel dispatch. Defaults to enabled.
func WithThreading(enabled bool) Option {
	return func(o *Orchestrator) { o.threading = enabled }
}

// WithLogger sets the logger for dispatch failures and clamp warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.log = logger
		}
	}
}

// New creates an orchestrator dispatching onto pool.
func New(pool *worker.Pool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pool:          pool,
		log:           zap.NewNop(),
		enabled:       true,
		threading:     true,
		fixedInterval: 1 / DefaultFixedRate,
		maxFixedSteps: DefaultMaxFixedSteps,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) SetEnabled(enabled bool) { o.enabled = enabled }
func (o *Orchestrator) Enabled() bool           { return o.enabled }

func (o *Orchestrator) SetThreading(enabled bool) { o.threading = enabled }
func (o *Orchestrator) Threading() bool           { return o.threading }

// FixedInterval returns the fixed step length in seconds.
func (o *Orchestrator) FixedInterval() float64 { return o.fixedInterval }

// Update runs the main phase: transform updates and behavior OnUpdate
// hooks. With threading enabled the two kinds run as independent parallel
// dispatches; an item in one dispatch may observe either this-frame or
// previous-frame state of the other kind, so transform and behavior updates
// must not cross-read within the phase.
func (o *Orchestrator) Update(src Source, dt float64) {
	if !o.enabled || src == nil {
		return
	}
	start := time.Now()

	transforms := src.Transforms()
	behaviors := src.Behaviors()

	if o.threading {
		var g errgroup.Group
		g.Go(func() error {
			return worker.ProcessBatch(o.pool, transforms, func(t *component.Transform) {
				t.Update(dt)
			}, 0)
		})
		g.Go(func() error {
			return worker.ProcessBatch(o.pool, behaviors, func(b *component.Behavior) {
				b.Update(dt)
			}, 0)
		})
		if err := g.Wait(); err != nil {
			o.log.Error("update dispatch failed", zap.Error(err))
		}
	} else {
		for _, t := range transforms {
			if t != nil {
				t.Update(dt)
			}
		}
		for _, b := range behaviors {
			if b != nil {
				b.Update(dt)
			}
		}
	}

	o.stats.TransformsProcessed = len(transforms)
	o.stats.BehaviorsProcessed = len(behaviors)
	o.stats.LastUpdate = time.Since(start)
	o.recordFrame(o.stats.LastUpdate)
}

// LateUpdate runs every behavior's OnLateUpdate hook, after Update.
func (o *Orchestrator) LateUpdate(src Source, dt float64) {
	if !o.enabled || src == nil {
		return
	}
	start := time.Now()

	o.dispatchBehaviors(src.Behaviors(), func(b *component.Behavior) {
		b.LateUpdate(dt)
	})

	o.stats.LastLateUpdate = time.Since(start)
}

// FixedUpdate accumulates dt and runs whole fixed steps while the
// accumulator holds at least one interval, clamped to MaxFixedSteps per
// frame. When the clamp hits, the remaining accumulated time is discarded
// and counted in stats rather than carried into a catch-up spiral.
func (o *Orchestrator) FixedUpdate(src Source, dt float64) {
	if !o.enabled || src == nil {
		return
	}
	start := time.Now()

	o.accumulator += dt
	steps := 0
	for o.accumulator+fixedEpsilon >= o.fixedInterval {
		if steps >= o.maxFixedSteps {
			dropped := o.accumulator
			o.accumulator = 0
			o.stats.DroppedFixedTime += dropped
			o.log.Warn("fixed-step clamp hit, dropping accumulated time",
				zap.Float64("dropped_seconds", dropped),
				zap.Int("max_steps", o.maxFixedSteps))
			break
		}

		o.dispatchBehaviors(src.Behaviors(), func(b *component.Behavior) {
			b.FixedUpdate(o.fixedInterval)
		})
		o.accumulator -= o.fixedInterval
		steps++
		o.stats.FixedSteps++
	}
	if o.accumulator < 0 {
		o.accumulator = 0
	}

	o.stats.LastFixedUpdate = time.Since(start)
}

// Frame runs all three phases in order. Equivalent to calling Update,
// LateUpdate, and FixedUpdate with the same source and dt.
func (o *Orchestrator) Frame(src Source, dt float64) {
	o.Update(src, dt)
	o.LateUpdate(src, dt)
	o.FixedUpdate(src, dt)
}

// Accumulator returns the pending fixed-step time in seconds.
func (o *Orchestrator) Accumulator() float64 { return o.accumulator }

// Stats returns a copy of the orchestrator's counters.
func (o *Orchestrator) Stats() Stats { return o.stats }

// ResetStats zeroes all counters. The fixed accumulator is not touched.
func (o *Orchestrator) ResetStats() { o.stats = Stats{} }

func (o *Orchestrator) dispatchBehaviors(behaviors []*component.Behavior, fn func(*component.Behavior)) {
	if len(behaviors) == 0 {
		return
	}
	if o.threading {
		if err := worker.ProcessBatch(o.pool, behaviors, fn, 0); err != nil {
			o.log.Error("behavior dispatch failed", zap.Error(err))
		}
		return
	}
	for _, b := range behaviors {
		if b != nil {
			fn(b)
		}
	}
}

func (o *Orchestrator) dispatchTransforms(transforms []*component.Transform, fn func(*component.Transform)) {
	if len(transforms) == 0 {
		return
	}
	if o.threading {
		if err := worker.ProcessBatch(o.pool, transforms, fn, 0); err != nil {
			o.log.Error("transform dispatch failed", zap.Error(err))
		}
		return
	}
	for _, t := range transforms {
		if t != nil {
			fn(t)
		}
	}
}

func (o *Orchestrator) recordFrame(frameTime time.Duration) {
	o.stats.FrameCount++
	n := o.stats.FrameCount
	prev := float64(o.stats.AvgFrameTime)
	o.stats.AvgFrameTime = time.Duration(math.Round(
		(prev*float64(n-1) + float64(frameTime)) / float64(n)))
}
