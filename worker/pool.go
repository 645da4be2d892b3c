package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown has begun.
	ErrPoolClosed = errors.New("worker: pool is shut down")
)

// Task is an opaque zero-argument unit of work. It is owned by the queue
// until a worker claims it and executes it at most once.
type Task func()

// Pool is a fixed-size pool of long-lived worker goroutines draining a
// shared FIFO task queue. Workers are spawned by NewPool and live until
// Shutdown. Tasks still queued when Shutdown is called are discarded
// without executing.
type Pool struct {
	conf    *config
	log     *zap.Logger
	threads int

	tasks chan *taskEntry
	quit  chan struct{}
	wg    sync.WaitGroup

	pauseMu   sync.Mutex
	pauseCond *sync.Cond
	paused    bool

	closed atomic.Bool

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	submitted atomic.Int64
}

type taskEntry struct {
	fn     Task
	future *Future
}

// Stats is a point-in-time snapshot of pool activity. Completed counts every
// task that finished executing, including ones that panicked; Failed counts
// only the panicked subset.
type Stats struct {
	Threads   int
	Queued    int
	Active    int64
	Submitted int64
	Completed int64
	Failed    int64
}

// NewPool creates a pool with the given number of worker goroutines and
// starts them immediately. threads is clamped to at least 1.
func NewPool(threads int, opts ...Option) *Pool {
	if threads < 1 {
		threads = 1
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Pool{
		conf:    cfg,
		log:     cfg.logger,
		threads: threads,
		tasks:   make(chan *taskEntry, cfg.queueSize),
		quit:    make(chan struct{}),
	}
	p.pauseCond = sync.NewCond(&p.pauseMu)

	p.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go p.runWorker(i)
	}

	p.log.Debug("worker pool started", zap.Int("threads", threads))
	return p
}

// Submit enqueues a single task and wakes one worker. It returns a Future
// that is fulfilled exactly once, when the executing worker finishes the
// task. Submit blocks while the queue is full.
//
// Failures inside the task never surface through the Future; encode
// success/failure in state the task writes if the caller needs it.
func (p *Pool) Submit(fn Task) (*Future, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	f := newFuture()
	entry := &taskEntry{fn: fn, future: f}

	select {
	case p.tasks <- entry:
		p.submitted.Add(1)
		return f, nil
	case <-p.quit:
		return nil, ErrPoolClosed
	}
}

// Pause stops queued tasks from starting. Tasks already running continue to
// completion; dequeued-but-unstarted tasks block until Resume.
func (p *Pool) Pause() {
	p.pauseMu.Lock()
	p.paused = true
	p.pauseMu.Unlock()
}

// Resume releases every worker held by Pause.
func (p *Pool) Resume() {
	p.pauseMu.Lock()
	p.paused = false
	p.pauseMu.Unlock()
	p.pauseCond.Broadcast()
}

// IsPaused reports whether the pool is currently paused.
func (p *Pool) IsPaused() bool {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()
	return p.paused
}

// Shutdown signals every worker to stop, releases paused workers, and joins
// them. Tasks still queued are discarded; their Futures are never fulfilled.
// Shutdown is idempotent.
func (p *Pool) Shutdown() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	close(p.quit)
	p.pauseCond.Broadcast()
	p.wg.Wait()

	p.log.Debug("worker pool stopped",
		zap.Int64("completed", p.completed.Load()),
		zap.Int("discarded", len(p.tasks)))
}

// ThreadCount returns the number of worker goroutines.
func (p *Pool) ThreadCount() int { return p.threads }

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Threads:   p.threads,
		Queued:    len(p.tasks),
		Active:    p.active.Load(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case entry := <-p.tasks:
			// Hold the claimed task across a pause; it has been
			// dequeued but must not start until Resume.
			if !p.waitIfPaused() {
				return
			}
			p.execute(id, entry)
		}
	}
}

// waitIfPaused blocks while the pool is paused. It returns false when the
// pool shut down during the wait.
func (p *Pool) waitIfPaused() bool {
	p.pauseMu.Lock()
	defer p.pauseMu.Unlock()

	for p.paused && !p.closed.Load() {
		p.pauseCond.Wait()
	}
	return !p.closed.Load()
}

func (p *Pool) execute(workerID int, entry *taskEntry) {
	if p.conf.limiter != nil {
		_ = p.conf.limiter.Wait(context.Background())
	}

	p.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			p.failed.Add(1)
			p.log.Error("task panic",
				zap.Int("worker", workerID),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", buf[:n]))
		}
		p.active.Add(-1)
		p.completed.Add(1)
		entry.future.fulfill()
	}()

	entry.fn()
}
