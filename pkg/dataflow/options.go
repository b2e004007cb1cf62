package dataflow

import (
	"time"
)

// Option configures the behavior of pipeline stages.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    func(int) time.Duration
	bufferSize int
	// errorHandler sees every error left after retries. Returning true
	// swallows it and the item is dropped; false records it as the stage
	// error (ForEach) or drops it (Map).
	errorHandler func(error) bool
}

// defaultConfig returns the default configuration.
func defaultConfig(opts []Option) *config {
	cfg := &config{
		workers:    1,
		maxRetries: 0,
		bufferSize: 0,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size for the output channel of a stage.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}

// WithRetry retries a failed operation up to maxRetries times, waiting
// backoff(attempt) before each retry. A nil backoff retries immediately.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		c.backoff = backoff
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h func(error) bool) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}

// LinearBackoff waits step, 2*step, 3*step, ...
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}
