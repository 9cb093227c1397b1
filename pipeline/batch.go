package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"google.golang.org/api/docs/v1"
)

// Result is the outcome of one document in a batch.
type Result struct {
	Index    int
	Output   Output
	Err      error
	Duration time.Duration
}

// ParityResult is the outcome of one document in a parity batch.
type ParityResult struct {
	Index    int
	Parity   Parity
	Err      error
	Duration time.Duration
}

// RunAll compiles documents concurrently, one document per worker at a time.
// Results are returned in input order. A workers value below 1 selects a
// size derived from GOMAXPROCS.
func RunAll(ctx context.Context, documents []*docs.Document, opts Options, workers int) []Result {
	results := make([]Result, len(documents))
	forEach(ctx, len(documents), workers, func(i int) {
		start := time.Now()
		out, err := Run(ctx, documents[i], opts)
		results[i] = Result{Index: i, Output: out, Err: err, Duration: time.Since(start)}
	}, func(i int, err error) {
		results[i] = Result{Index: i, Err: err}
	})
	return results
}

// CompareAll runs Compare over documents concurrently, in input order.
func CompareAll(ctx context.Context, documents []*docs.Document, opts Options, workers int) []ParityResult {
	results := make([]ParityResult, len(documents))
	forEach(ctx, len(documents), workers, func(i int) {
		start := time.Now()
		p, err := Compare(ctx, documents[i], opts)
		results[i] = ParityResult{Index: i, Parity: p, Err: err, Duration: time.Since(start)}
	}, func(i int, err error) {
		results[i] = ParityResult{Index: i, Err: err}
	})
	return results
}

// forEach feeds job indices to a fixed set of workers. Jobs picked up after
// ctx is done are passed to canceled instead of work.
func forEach(ctx context.Context, n, workers int, work func(i int), canceled func(i int, err error)) {
	if n == 0 {
		return
	}

	concurrency := ResolveWorkers(workers)
	if concurrency > n {
		concurrency = n
	}

	var wg sync.WaitGroup
	jobs := make(chan int, n)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					canceled(idx, err)
					continue
				}
				work(idx)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
}

// ResolveWorkers determines the worker count.
// Priority: explicit value > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	if n > 16 {
		return 16
	}
	return n
}
