package converter

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task processes one file.
type Task func(path string) Result

// RunBatch runs task for every path and returns the results in input order.
// A failing file never stops the others. With concurrency above 1 the files
// are processed in parallel, at most concurrency at a time.
//
// Cancelling ctx stops files that have not started yet; their results carry
// the context error.
func RunBatch(ctx context.Context, paths []string, concurrency int, task Task) []Result {
	results := make([]Result, len(paths))

	if concurrency <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				results[i] = Result{FilePath: path, Error: err}
				continue
			}
			results[i] = task(path)
		}
		return results
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{FilePath: path, Error: err}
				return nil
			}
			results[i] = task(path)
			return nil
		})
	}
	// Tasks report through results, never through the group.
	_ = grp.Wait()

	return results
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}

// Summarize counts the outcomes of a batch.
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		switch {
		case result.Success:
			summary.Succeeded++
		case result.Skipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}

// Err returns an error when any file failed.
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d file(s) failed", s.Failed, s.Total)
}
