package download

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultParallelism bounds concurrent transfers when BatchOptions
// does not set one.
const DefaultParallelism = 4

// BatchOptions configures one batch run. Filenames are always derived
// from the URLs in batch mode.
type BatchOptions struct {
	// Dir, Timeout and MaxBytes are shared by every item; zero values
	// take the same defaults as Request.
	Dir      string
	Timeout  time.Duration
	MaxBytes int64

	// Parallelism caps the number of in-flight transfers. Zero means
	// DefaultParallelism.
	Parallelism int

	// Limiter optionally throttles request starts across the batch.
	// Nil disables throttling.
	Limiter *rate.Limiter
}

// FetchAll runs one fetch per URL concurrently and aggregates the
// outcomes. Items fail independently: no error cancels or affects a
// sibling, and the orchestrator waits for every task.
//
// Results are returned in request order; completion order across tasks
// is unspecified. Zero URLs yields an empty response, not an error.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, opts BatchOptions) Response {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return Response{Results: results}
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	batchID := uuid.NewString()
	f.logger.Info("batch download started",
		"batch_id", batchID, "urls", len(urls), "parallelism", parallelism)

	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if opts.Limiter != nil {
				// A cancelled wait surfaces as a transport failure on
				// the fetch itself; no separate handling needed.
				_ = opts.Limiter.Wait(ctx)
			}

			results[i] = f.Fetch(ctx, Request{
				URL:      u,
				Dir:      opts.Dir,
				Timeout:  opts.Timeout,
				MaxBytes: opts.MaxBytes,
			})
		}(i, u)
	}
	wg.Wait()

	resp := Response{Results: results}
	for _, r := range results {
		if r.Success {
			resp.SuccessCount++
		} else {
			resp.FailedCount++
		}
	}

	f.logger.Info("batch download finished",
		"batch_id", batchID,
		"succeeded", resp.SuccessCount,
		"failed", resp.FailedCount)
	return resp
}
