// Package worker provides a fixed-size pool of long-lived worker goroutines
// draining a shared FIFO task queue, plus a fork-join batch primitive tuned
// for homogeneous per-frame workloads.
//
// The pool is built for simulation loops where thousands of small updates
// run every frame: synchronization cost is amortized by partitioning work
// into contiguous batches instead of paying per-item scheduling overhead.
//
// Basic usage:
//
//	p := worker.NewPool(4)
//	defer p.Shutdown()
//
//	future, _ := p.Submit(func() { doWork() })
//	future.Wait()
//
// Batch usage:
//
//	_ = worker.ProcessBatch(p, items, func(it *Item) { it.Tick(dt) }, 0)
//
// A failure (panic) inside a task is recovered, logged, and swallowed; it is
// never re-delivered and never crashes a worker. A submitter that needs to
// observe success or failure must encode it in state the task itself writes.
package worker
