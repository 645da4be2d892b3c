package worker

// OptimalBatchSize computes the batch size used when ProcessBatch and
// ProcessBatchRange are called with batchSize <= 0. It targets roughly three
// batches per worker, clamped to [1, 1000]:
//
//	clamp(ceil(n / (threads*3)), 1, 1000)
//
// Small batches balance load across workers; large batches amortize queue
// synchronization. Three per worker is the compromise between the two.
func OptimalBatchSize(n, threads int) int {
	if n <= 0 {
		return minBatchSize
	}
	if threads < 1 {
		threads = 1
	}

	targetBatches := threads * batchesPerWorker
	size := (n + targetBatches - 1) / targetBatches

	if size < minBatchSize {
		size = minBatchSize
	}
	if size > maxBatchSize {
		size = maxBatchSize
	}
	return size
}

// ProcessBatch partitions items into contiguous batches, submits one task
// per batch applying fn to every non-nil element in its range, and blocks
// until every batch has completed. If batchSize <= 0 it is computed with
// OptimalBatchSize.
//
// Batches partition the slice exactly: no gaps, no overlap. Within a batch,
// processing follows slice order; across batches, execution order is
// unspecified and fn must not assume mutual side effects are visible.
func ProcessBatch[T any](p *Pool, items []*T, fn func(*T), batchSize int) error {
	return ProcessBatchRange(p, items, func(span []*T, start, end int) {
		for i := start; i < end; i++ {
			if span[i] != nil {
				fn(span[i])
			}
		}
	}, batchSize)
}

// ProcessBatchRange is the span-level variant of ProcessBatch: each batch's
// task receives the whole backing slice plus its [start, end) range, letting
// fn iterate a contiguous region directly. This is the entry point that
// rewards storing instances of one kind contiguously.
//
// Unlike ProcessBatch, nil elements are NOT skipped; fn owns the range.
func ProcessBatchRange[T any](p *Pool, items []*T, fn func(span []*T, start, end int), batchSize int) error {
	n := len(items)
	if n == 0 {
		return nil
	}

	if batchSize <= 0 {
		batchSize = OptimalBatchSize(n, p.ThreadCount())
	}

	futures := make([]*Future, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		start, end := start, min(start+batchSize, n)
		f, err := p.Submit(func() { fn(items, start, end) })
		if err != nil {
			// Wait out what was already submitted before reporting.
			for _, prev := range futures {
				prev.Wait()
			}
			return err
		}
		futures = append(futures, f)
	}

	// Barrier: no partial-completion notification, the caller resumes only
	// once every range has run.
	for _, f := range futures {
		f.Wait()
	}
	return nil
}
