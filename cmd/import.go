// =============================================================================
// Indicator Tidy - Import Command
// =============================================================================
//
// This file defines the 'import' command, which splits a regional source
// table into one wide file per region.
//
// COMMAND USAGE:
//   indicator-tidy import <source...> --indicator 1-2-1 \
//       --region-column State --value-column Percent [--year-column Year]
//
// FLAGS:
//   --indicator     : Indicator id of the written files (required)
//   --category      : Folder category below the subnational root
//   --region-column : Column holding region names (required)
//   --value-column  : Column holding values (required)
//   --year-column   : Column holding years
//   --year          : Fixed year for sources without a year column
//   --filter        : Keep rows where column=value (repeatable)
//   --sheet, --header-row, --skip-rows, --skip-footer : XLSX layout
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/indicator-tidy/internal/converter"
)

var importOptions converter.ImportOptions

var importCmd = &cobra.Command{
	Use:   "import <source...>",
	Short: "Split a regional source table into wide indicator files",
	Long: `The import command reads a CSV or XLSX source with one row per region and
writes a Year/All wide file per region below the subnational root, where the
tidy command picks it up as a disaggregation.

Region names are mapped to folder names through region_codes. Regions listed
in national_regions are written to the wide folder instead.`,

	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		summary := app.files.NewSummary("import")

		var results []converter.Result
		for _, source := range args {
			results = append(results, app.converter.Import(source, importOptions)...)
		}
		return report(cmd.OutOrStdout(), summary, results)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	flags := importCmd.Flags()
	flags.StringVar(&importOptions.IndicatorID, "indicator", "", "Indicator id, e.g. 1-2-1")
	flags.StringVar(&importOptions.Category, "category", converter.DefaultCategory, "Folder category below the subnational root")
	flags.StringVar(&importOptions.RegionColumn, "region-column", "", "Column holding region names")
	flags.StringVar(&importOptions.ValueColumn, "value-column", "", "Column holding values")
	flags.StringVar(&importOptions.YearColumn, "year-column", "", "Column holding years")
	flags.StringVar(&importOptions.Year, "year", "", "Fixed year for sources without a year column")
	flags.StringToStringVar(&importOptions.Filters, "filter", nil, "Keep rows where column=value")

	flags.StringVar(&importOptions.Sheet.Sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	flags.IntVar(&importOptions.Sheet.HeaderRow, "header-row", 0, "0-based XLSX header row")
	flags.IntVar(&importOptions.Sheet.SkipRows, "skip-rows", 0, "XLSX rows to skip after the header")
	flags.IntVar(&importOptions.Sheet.SkipFooter, "skip-footer", 0, "XLSX trailing rows to drop")

	importCmd.MarkFlagRequired("indicator")
	importCmd.MarkFlagRequired("region-column")
	importCmd.MarkFlagRequired("value-column")
}
