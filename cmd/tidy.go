// =============================================================================
// Indicator Tidy - Tidy Command
// =============================================================================
//
// This file defines the 'tidy' command, which converts wide indicator files
// into tidy files.
//
// COMMAND USAGE:
//   indicator-tidy tidy [files...]
//
// PROCESSING PIPELINE:
//   1. Discover indicator files in the wide folder (or use the arguments)
//   2. For each file:
//      a. Parse the wide CSV
//      b. Merge the matching files below the subnational root
//      c. Reshape to tidy rows
//      d. Write the tidy CSV to the tidy folder
//   3. Print the results and the summary
//
// Files whose headers do not follow the naming convention are skipped.
// The command fails if any file could not be read, reshaped or written.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"
)

var tidyCmd = &cobra.Command{
	Use:   "tidy [files...]",
	Short: "Convert wide indicator files to tidy format",
	Long: `The tidy command reshapes every wide indicator file into a tidy file with
one row per year, category combination and value.

Without arguments, the indicator files in the wide folder are processed.
Subnational disaggregations with the same file name are merged in first:
data/subnational/state/ohio/indicator_1-2-1.csv becomes the category
state=ohio of indicator_1-2-1.csv.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := inputFiles(args, app.config.Folders.DataCSVWide)
		if err != nil {
			return err
		}
		if err := app.files.EnsureDirectories(app.config.Folders.DataCSVTidy); err != nil {
			return err
		}
		return runBatch(cmd.Context(), cmd.OutOrStdout(), "tidy", paths, app.converter.Tidy)
	},
}

func init() {
	rootCmd.AddCommand(tidyCmd)
}
