package app

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Fetch produces the i-th result of a fan-out step.
type Fetch[T any] func(ctx context.Context, i int) (T, error)

// Settled is the outcome of one best-effort fetch: exactly one of Value or Err
// is meaningful.
type Settled[T any] struct {
	Value T
	Err   error
}

func (s Settled[T]) OK() bool { return s.Err == nil }

type outcome[T any] struct {
	i   int
	v   T
	err error
}

// JoinAll runs fetch for 0..n-1 concurrently and returns the results in index
// order. It returns as soon as any fetch fails, with that error and no partial
// output. Fetches already in flight are not cancelled; their results are
// discarded. A positive limit caps how many fetches run at once.
func JoinAll[T any](ctx context.Context, n, limit int, fetch Fetch[T]) ([]T, error) {
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}

	// buffered to n so late finishers never block after an early return
	results := make(chan outcome[T], n)
	stop := make(chan struct{})
	defer close(stop)

	go launch(ctx, n, limit, stop, fetch, results)

	for received := 0; received < n; received++ {
		select {
		case r := <-results:
			if r.err != nil {
				return nil, r.err
			}
			out[r.i] = r.v
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// launch issues fetches in index order, stopping early once the caller has
// given up.
func launch[T any](ctx context.Context, n, limit int, stop <-chan struct{}, fetch Fetch[T], results chan<- outcome[T]) {
	var sem *semaphore.Weighted
	if limit > 0 && limit < n {
		sem = semaphore.NewWeighted(int64(limit))
	}
	for i := 0; i < n; i++ {
		if sem != nil {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- outcome[T]{i: i, err: err}
				return
			}
		}
		select {
		case <-stop:
			if sem != nil {
				sem.Release(1)
			}
			return
		default:
		}
		go func() {
			if sem != nil {
				defer sem.Release(1)
			}
			v, err := fetch(ctx, i)
			results <- outcome[T]{i: i, v: v, err: err}
		}()
	}
}

// JoinAllSettled runs fetch for 0..n-1 concurrently and waits for all of them.
// It never fails: each slot holds either the value or the error of its fetch.
// A positive limit caps how many fetches run at once.
func JoinAllSettled[T any](ctx context.Context, n, limit int, fetch Fetch[T]) []Settled[T] {
	out := make([]Settled[T], n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := fetch(ctx, i)
			out[i] = Settled[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
