// =============================================================================
// Indicator Tidy - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which lints the headers of wide
// indicator files against the naming convention without writing anything.
//
// COMMAND USAGE:
//   indicator-tidy validate [files...] [--strict] [--report path]
//
// FLAGS:
//   --strict : Fail when any file has error-severity findings
//   --report : Also write all findings to a report file
//
// The command fails on unreadable files regardless of --strict.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/indicator-tidy/internal/validation"
)

var (
	strict     bool
	reportPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Lint the headers of wide indicator files",
	Long: `The validate command checks every wide indicator file for the year and
total columns, and reports headers that are malformed, ignored by the
reshape, or duplicated.

Files with errors are skipped by the tidy command; warnings point at columns
that are left out of the tidy output.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		warning := color.New(color.FgYellow).SprintFunc()
		failure := color.New(color.FgRed).SprintFunc()

		paths, err := inputFiles(args, app.config.Folders.DataCSVWide)
		if err != nil {
			return err
		}

		var findings []*validation.ValidationError
		var readErrors, invalidFiles int

		for _, path := range paths {
			result, err := app.converter.Lint(path)
			if err != nil {
				readErrors++
				fmt.Fprintf(out, "  %s %s: %v\n", failureMark, filepath.Base(path), err)
				continue
			}

			mark := successMark
			if !result.IsValid {
				invalidFiles++
				mark = failureMark
			}
			fmt.Fprintf(out, "  %s %s (%d column(s) matched)\n", mark, result.File, result.ColumnsMatched)

			for _, finding := range result.Errors {
				line := finding.Error()
				if finding.Severity == validation.SeverityError {
					line = failure(line)
				} else {
					line = warning(line)
				}
				fmt.Fprintf(out, "      %s\n", line)
			}
			findings = append(findings, result.Errors...)
		}

		fmt.Fprintf(out, "\n%d file(s) checked, %d not applicable, %d unreadable, %d finding(s)\n",
			len(paths), invalidFiles, readErrors, len(findings))

		if reportPath != "" {
			if err := validation.WriteErrorLog(app.fs, findings, reportPath, app.clock.Now()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Report written to %s\n", reportPath)
		}

		switch {
		case readErrors > 0:
			return fmt.Errorf("%d file(s) could not be read", readErrors)
		case strict && invalidFiles > 0:
			return fmt.Errorf("%d file(s) do not follow the naming convention", invalidFiles)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strict, "strict", false,
		"Fail when a file does not follow the naming convention")
	validateCmd.Flags().StringVar(&reportPath, "report", "",
		"Write all findings to this file")
}
