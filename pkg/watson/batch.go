package watson

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// BatchResult represents the result of one call in a batch.
type BatchResult[T any] struct {
	Index    int
	Value    *T
	Error    error
	Duration time.Duration
}

// Success reports whether the call completed without error.
func (r BatchResult[T]) Success() bool {
	return r.Error == nil
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// RunBatch executes calls with at most concurrency in flight. Results are
// returned in input order; a failing call does not cancel the others.
// A concurrency below 1 uses the default limit.
func RunBatch[T any](ctx context.Context, calls []*ServiceCall[T], concurrency int) []BatchResult[T] {
	if concurrency < 1 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	results := make([]BatchResult[T], len(calls))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, call := range calls {
		group.Go(func() error {
			start := time.Now()
			value, err := call.Execute(groupCtx)
			results[i] = BatchResult[T]{
				Index:    i,
				Value:    value,
				Error:    err,
				Duration: time.Since(start),
			}

			return nil
		})
	}

	_ = group.Wait()

	return results
}

// Summarize counts successes and failures of a batch.
func Summarize[T any](results []BatchResult[T]) BatchSummary {
	summary := BatchSummary{Total: len(results)}

	for _, result := range results {
		if result.Success() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		summary.Duration += result.Duration
	}

	return summary
}
