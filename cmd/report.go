package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ginjaninja78/indicator-tidy/internal/converter"
	"github.com/ginjaninja78/indicator-tidy/pkg/utils"
)

var (
	successMark = color.New(color.FgGreen).Sprint("✓")
	failureMark = color.New(color.FgRed).Sprint("✗")
	skipMark    = color.New(color.FgYellow).Sprint("-")
)

// runBatch runs task for every path and reports the results.
func runBatch(ctx context.Context, out io.Writer, command string, paths []string, task converter.Task) error {
	if len(paths) == 0 {
		fmt.Fprintln(out, "No files found.")
		return nil
	}

	summary := app.files.NewSummary(command)
	fmt.Fprintf(out, "Processing %d file(s)...\n", len(paths))

	results := converter.RunBatch(ctx, paths, app.config.MaxConcurrency, task)
	return report(out, summary, results)
}

// report prints one line per result and the totals, writes the summary log
// when a summary folder is configured, and returns an error if any file
// failed.
func report(out io.Writer, summary *utils.ProcessingSummary, results []converter.Result) error {
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success:
			fmt.Fprintf(out, "  %s %s -> %s\n", successMark, name, result.OutputFile)
			summary.AddProcessed(utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				RowsRead:    result.Stats.RowsRead,
				RowsWritten: result.Stats.RowsWritten,
				ProcessTime: result.Stats.ProcessingTime,
			})
		case result.Skipped:
			if verbose {
				fmt.Fprintf(out, "  %s %s: %s\n", skipMark, name, result.SkipReason)
			}
			summary.AddSkipped(result.FilePath, result.SkipReason)
		default:
			fmt.Fprintf(out, "  %s %s: %v\n", failureMark, name, result.Error)
			app.logger.Error("%s: %v", result.FilePath, result.Error)
			summary.AddFailed(result.FilePath, result.Error)
		}
	}

	summary.EndTime = app.clock.Now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Skipped:         %d\n", summary.SkippedFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if app.config.SummaryDir != "" {
		path, err := app.files.WriteSummaryLog(summary, app.config.SummaryDir)
		if err != nil {
			app.logger.Warn("Could not write summary: %v", err)
		} else {
			fmt.Fprintf(out, "Summary written to %s\n", path)
		}
	}

	return converter.Summarize(results).Err()
}
