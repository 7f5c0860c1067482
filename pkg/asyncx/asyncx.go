// Package asyncx provides the small set of concurrency helpers the client
// packages share: bounded worker pools for batch API calls, retries for
// flaky endpoints, and fire-and-forget goroutines.
//
// All helpers propagate context cancellation and wait for every goroutine
// they launch before returning.
package asyncx

import (
	"context"
	"sync"
	"time"
)

// Result holds the outcome of a single settled operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// Pool processes items using at most workers goroutines and returns
// results in the original order, returning the first error encountered.
//
// Use this over plain goroutine fan-out when unbounded concurrency would
// be harmful, such as uploads or rate-limited APIs.
func Pool[T any, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(context.Context, T) (R, error),
) ([]R, error) {
	settled := PoolSettled(ctx, workers, items, fn)
	results := make([]R, len(settled))
	for i, r := range settled {
		if r.Err != nil {
			return nil, r.Err
		}
		results[i] = r.Value
	}
	return results, nil
}

// PoolSettled is like Pool but never short-circuits: every item gets a
// Result, so callers can report per-item failures. Items not started
// because the context was cancelled carry the context error.
func PoolSettled[T any, R any](
	ctx context.Context,
	workers int,
	items []T,
	fn func(context.Context, T) (R, error),
) []Result[R] {
	if workers <= 0 {
		workers = 1
	}

	type indexed struct {
		i    int
		item T
	}

	work := make(chan indexed, len(items))
	for i, item := range items {
		work <- indexed{i: i, item: item}
	}
	close(work)

	results := make([]Result[R], len(items))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for w := range work {
				if err := ctx.Err(); err != nil {
					results[w.i] = Result[R]{Err: err}
					continue
				}
				v, err := fn(ctx, w.item)
				results[w.i] = Result[R]{Value: v, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}

// Retry calls fn up to attempts times, returning as soon as fn succeeds.
// It waits delay between attempts, doubling it each time, and respects
// context cancellation between retries.
func Retry[T any](
	ctx context.Context,
	attempts int,
	delay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var (
		value T
		err   error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return value, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		value, err = fn(ctx)
		if err == nil {
			return value, nil
		}
	}
	return value, err
}

// Do launches fn in a goroutine without tracking its result. Meant for
// non-critical background work such as best-effort remote deletes.
func Do(fn func()) {
	go fn()
}
