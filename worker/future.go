package worker

import (
	"errors"
	"sync"
	"time"
)

// ErrWaitTimeout is returned by WaitTimeout when the deadline passes before
// the task completes.
var ErrWaitTimeout = errors.New("worker: wait timed out")

// Future is a one-shot completion handle returned by Submit. It is fulfilled
// exactly once, by the worker that executed the task. The submitter should
// wait on it at most once; a Future for a task discarded at shutdown is
// never fulfilled.
type Future struct {
	done chan struct{}
	once sync.Once
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// fulfill marks the task as completed. Called by the executing worker.
func (f *Future) fulfill() {
	f.once.Do(func() { close(f.done) })
}

// Wait blocks until the task has finished executing.
func (f *Future) Wait() {
	<-f.done
}

// WaitTimeout blocks until the task finishes or the timeout elapses, in
// which case it returns ErrWaitTimeout.
func (f *Future) WaitTimeout(d time.Duration) error {
	select {
	case <-f.done:
		return nil
	case <-time.After(d):
		return ErrWaitTimeout
	}
}

// IsReady reports whether the task has finished, without blocking.
func (f *Future) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
