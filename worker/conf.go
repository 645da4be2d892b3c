package worker

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultQueueSize = 1024

	// Aim for roughly three batches per worker so a slow batch can be
	// absorbed by idle workers without shrinking batches to the point
	// where queue synchronization dominates.
	batchesPerWorker = 3

	minBatchSize = 1
	maxBatchSize = 1000
)

// Option is a functional option for configuring the worker pool.
type Option func(*config)

type config struct {
	queueSize int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func defaultConfig() *config {
	return &config{
		queueSize: defaultQueueSize,
		logger:    zap.NewNop(),
	}
}

// WithQueueSize sets the capacity of the task queue. Submit blocks once the
// queue is full, applying backpressure to the producer. Defaults to 1024.
func WithQueueSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.queueSize = size
		}
	}
}

// WithRateLimit throttles task execution to tasksPerSecond with the given
// burst. Useful when batched work drives an external resource that must not
// be overwhelmed. No limit is applied if unset.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithLogger sets the logger used to report swallowed task panics and
// lifecycle events. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
