package worker_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/utkarsh5026/framekit/worker"
)

func TestPool_Submit_ExecutesExactlyOnce(t *testing.T) {
	p := worker.NewPool(4)
	defer p.Shutdown()

	const numTasks = 200
	var counter atomic.Int64

	futures := make([]*worker.Future, 0, numTasks)
	for n := 0; n < numTasks; n++ {
		f, err := p.Submit(func() { counter.Add(1) })
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		futures = append(futures, f)
	}

	for _, f := range futures {
		f.Wait()
	}

	if got := counter.Load(); got != numTasks {
		t.Errorf("expected %d executions, got %d", numTasks, got)
	}

	stats := p.Stats()
	if stats.Completed != numTasks {
		t.Errorf("expected %d completions, got %d", numTasks, stats.Completed)
	}
	if stats.Failed != 0 {
		t.Errorf("expected 0 failures, got %d", stats.Failed)
	}
}

func TestPool_Submit_AfterShutdown(t *testing.T) {
	p := worker.NewPool(2)
	p.Shutdown()

	_, err := p.Submit(func() {})
	if !errors.Is(err, worker.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_Shutdown_Idempotent(t *testing.T) {
	p := worker.NewPool(2)
	p.Shutdown()
	p.Shutdown() // must not panic or deadlock
}

func TestPool_PanicIsSwallowedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	p := worker.NewPool(2, worker.WithLogger(zap.New(core)))
	defer p.Shutdown()

	f, err := p.Submit(func() { panic("boom") })
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	f.Wait()

	// The pool must keep working after a panicked task.
	var ran atomic.Bool
	f2, err := p.Submit(func() { ran.Store(true) })
	if err != nil {
		t.Fatalf("submit after panic failed: %v", err)
	}
	f2.Wait()

	if !ran.Load() {
		t.Error("pool stopped executing after a panicked task")
	}
	if got := p.Stats().Failed; got != 1 {
		t.Errorf("expected 1 failed task, got %d", got)
	}
	if logs.FilterMessage("task panic").Len() != 1 {
		t.Errorf("expected one 'task panic' log entry, got %d", logs.Len())
	}
}

func TestPool_PauseResume(t *testing.T) {
	p := worker.NewPool(4)
	defer p.Shutdown()

	p.Pause()
	if !p.IsPaused() {
		t.Fatal("pool should report paused")
	}

	const numTasks = 20
	var counter atomic.Int64
	futures := make([]*worker.Future, 0, numTasks)

	for n := 0; n < numTasks; n++ {
		f, err := p.Submit(func() { counter.Add(1) })
		if err != nil {
			t.Fatalf("submit while paused failed: %v", err)
		}
		futures = append(futures, f)
	}

	time.Sleep(50 * time.Millisecond)
	if got := counter.Load(); got != 0 {
		t.Errorf("expected no executions while paused, got %d", got)
	}

	p.Resume()
	for _, f := range futures {
		f.Wait()
	}

	if got := counter.Load(); got != numTasks {
		t.Errorf("expected %d executions after resume, got %d", numTasks, got)
	}
}

func TestPool_RunningTaskSurvivesPause(t *testing.T) {
	p := worker.NewPool(1)
	defer p.Shutdown()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	f, err := p.Submit(func() {
		close(started)
		<-release
		finished.Store(true)
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	<-started
	p.Pause()
	close(release)
	f.Wait()

	if !finished.Load() {
		t.Error("task already running should finish despite pause")
	}
	p.Resume()
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	p := worker.NewPool(8)
	defer p.Shutdown()

	const (
		submitters       = 10
		tasksPerSubmitter = 50
	)
	var counter atomic.Int64
	var wg sync.WaitGroup

	wg.Add(submitters)
	for n := 0; n < submitters; n++ {
		go func() {
			defer wg.Done()
			for n := 0; n < tasksPerSubmitter; n++ {
				f, err := p.Submit(func() { counter.Add(1) })
				if err != nil {
					t.Errorf("submit failed: %v", err)
					return
				}
				f.Wait()
			}
		}()
	}
	wg.Wait()

	if got := counter.Load(); got != submitters*tasksPerSubmitter {
		t.Errorf("expected %d executions, got %d", submitters*tasksPerSubmitter, got)
	}
}

func TestPool_RateLimitOption(t *testing.T) {
	p := worker.NewPool(2, worker.WithRateLimit(1000, 10))
	defer p.Shutdown()

	var counter atomic.Int64
	futures := make([]*worker.Future, 0, 5)
	for n := 0; n < 5; n++ {
		f, err := p.Submit(func() { counter.Add(1) })
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		f.Wait()
	}
	if got := counter.Load(); got != 5 {
		t.Errorf("expected 5 executions, got %d", got)
	}
}

func TestFuture_WaitTimeout(t *testing.T) {
	p := worker.NewPool(1)
	defer p.Shutdown()

	release := make(chan struct{})
	f, err := p.Submit(func() { <-release })
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := f.WaitTimeout(20 * time.Millisecond); !errors.Is(err, worker.ErrWaitTimeout) {
		t.Errorf("expected ErrWaitTimeout, got %v", err)
	}
	if f.IsReady() {
		t.Error("future should not be ready while task is blocked")
	}

	close(release)
	if err := f.WaitTimeout(time.Second); err != nil {
		t.Errorf("expected completion, got %v", err)
	}
	if !f.IsReady() {
		t.Error("future should be ready after completion")
	}
}
