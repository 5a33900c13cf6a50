package converter

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeTask(path string) Result {
	switch {
	case strings.HasPrefix(path, "bad"):
		return Result{FilePath: path, Error: errors.New("broken")}
	case strings.HasPrefix(path, "skip"):
		return Result{FilePath: path, Skipped: true}
	default:
		return Result{FilePath: path, Success: true}
	}
}

func TestRunBatch(t *testing.T) {
	paths := []string{"a.csv", "bad.csv", "skip.csv", "b.csv"}

	for _, concurrency := range []int{1, 4} {
		results := RunBatch(context.Background(), paths, concurrency, fakeTask)

		assert.Len(t, results, len(paths))
		for i, result := range results {
			assert.Equal(t, paths[i], result.FilePath)
		}
		assert.Equal(t, Summary{Total: 4, Succeeded: 2, Skipped: 1, Failed: 1}, Summarize(results))
	}
}

func TestRunBatch_Limit(t *testing.T) {
	var running, peak int32
	task := func(path string) Result {
		current := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if current <= old || atomic.CompareAndSwapInt32(&peak, old, current) {
				break
			}
		}
		atomic.AddInt32(&running, -1)
		return Result{FilePath: path, Success: true}
	}

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = "f.csv"
	}
	RunBatch(context.Background(), paths, 3, task)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRunBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := RunBatch(ctx, []string{"a.csv"}, 1, fakeTask)

	assert.ErrorIs(t, results[0].Error, context.Canceled)
}

func TestSummary_Err(t *testing.T) {
	assert.NoError(t, Summary{Total: 2, Succeeded: 1, Skipped: 1}.Err())
	assert.EqualError(t, Summary{Total: 3, Failed: 2}.Err(), "2 of 3 file(s) failed")
}
