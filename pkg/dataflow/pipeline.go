// Package dataflow provides small channel-based pipeline stages with
// per-stage concurrency and retry.
package dataflow

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Stream is a read-only channel of messages.
type Stream[T any] <-chan T

// From creates a stream from a slice of data.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// New wraps an existing channel into a Stream.
func New[T any](c <-chan T) Stream[T] {
	return Stream[T](c)
}

// attempt runs fn once plus the configured retries. It returns the context
// error if the context ends while waiting to retry.
func attempt[T any](ctx context.Context, cfg *config, fn func() (T, error)) (T, error) {
	res, err := fn()
	for i := 1; err != nil && i <= cfg.maxRetries; i++ {
		if cfg.backoff != nil {
			timer := time.NewTimer(cfg.backoff(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				var zero T
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		res, err = fn()
	}
	return res, err
}

// runWorkers starts cfg.workers goroutines each draining input through
// handle, and returns a channel closed when all of them are done.
func runWorkers[T any](ctx context.Context, cfg *config, input Stream[T], handle func(T) bool) <-chan struct{} {
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				if !handle(msg) {
					return
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// Map transforms the stream using the provided function. Items whose
// function fails after retries are dropped after being passed to the error
// handler. Output order is not preserved with more than one worker.
func Map[In, Out any](ctx context.Context, input Stream[In], fn func(In) (Out, error), opts ...Option) Stream[Out] {
	cfg := defaultConfig(opts)
	out := make(chan Out, cfg.bufferSize)

	done := runWorkers(ctx, cfg, input, func(msg In) bool {
		res, err := attempt(ctx, cfg, func() (Out, error) { return fn(msg) })
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			if cfg.errorHandler != nil {
				cfg.errorHandler(err)
			}
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case out <- res:
			return true
		}
	})

	go func() {
		<-done
		close(out)
	}()
	return out
}

var errSkip = errors.New("skip item")

// Filter keeps items where fn returns true.
func Filter[T any](ctx context.Context, input Stream[T], fn func(T) bool, opts ...Option) Stream[T] {
	return Map(ctx, input, func(msg T) (T, error) {
		if fn(msg) {
			return msg, nil
		}
		var zero T
		return zero, errSkip
	}, append(opts, WithRetry(0, nil), WithErrorHandler(func(err error) bool {
		return errors.Is(err, errSkip)
	}))...)
}

// ForEach executes an action for every item in the stream.
// It blocks until the stream is exhausted or the context is cancelled and
// returns the first unhandled error.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(T) error, opts ...Option) error {
	cfg := defaultConfig(opts)

	var errOnce sync.Once
	var firstErr error

	done := runWorkers(ctx, cfg, input, func(msg T) bool {
		_, err := attempt(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn(msg) })
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if cfg.errorHandler != nil && cfg.errorHandler(err) {
			return true
		}
		errOnce.Do(func() {
			firstErr = err
		})
		return true
	})
	<-done

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}

// Collect drains the stream into a slice.
func Collect[T any](ctx context.Context, input Stream[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, input, func(item T) error {
		out = append(out, item)
		return nil
	})
	return out, err
}
