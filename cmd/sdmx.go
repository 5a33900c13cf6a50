// =============================================================================
// Indicator Tidy - SDMX Command
// =============================================================================
//
// This file defines the 'sdmx' command, which groups tidy files into series
// and writes them as SDMX documents.
//
// COMMAND USAGE:
//   indicator-tidy sdmx [files...] [--xml] [--pages]
//
// FLAGS:
//   --xml   : Also write the SDMX-ML rendering next to the JSON
//   --pages : Write a page stub per indicator publishing the XML
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/indicator-tidy/internal/converter"
)

var sdmxOptions converter.SDMXOptions

var sdmxCmd = &cobra.Command{
	Use:   "sdmx [files...]",
	Short: "Build SDMX documents from tidy files",
	Long: `The sdmx command groups the rows of every tidy file into series, one per
category combination, and writes an SDMX JSON document per indicator.

Titles, units and the preparation date are read from the indicator page
front matter. Column names and values are mapped to SDMX concepts and codes
through sdmx_concept_columns and sdmx_value_codes.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := inputFiles(args, app.config.Folders.DataCSVTidy)
		if err != nil {
			return err
		}
		if err := app.files.EnsureDirectories(app.config.Folders.DataSDMXJSON); err != nil {
			return err
		}

		task := func(path string) converter.Result {
			return app.converter.SDMX(path, sdmxOptions)
		}
		return runBatch(cmd.Context(), cmd.OutOrStdout(), "sdmx", paths, task)
	},
}

func init() {
	rootCmd.AddCommand(sdmxCmd)

	sdmxCmd.Flags().BoolVar(&sdmxOptions.XML, "xml", false,
		"Also write the SDMX-ML rendering")
	sdmxCmd.Flags().BoolVar(&sdmxOptions.Pages, "pages", false,
		"Write page stubs publishing the SDMX-ML rendering")
}
