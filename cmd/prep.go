package cmd

import (
	"github.com/spf13/cobra"
)

// prepCmd renames the headers of freshly exported wide files in place.
var prepCmd = &cobra.Command{
	Use:   "prep-headers [files...]",
	Short: "Rename the year and total headers of wide files in place",
	Long: `The prep-headers command renames the first column of every wide file to
the year column name and, when a file has exactly two columns, the second
column to the total marker. Files that already have these headers are left
untouched.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := inputFiles(args, app.config.Folders.DataCSVWide)
		if err != nil {
			return err
		}
		return runBatch(cmd.Context(), cmd.OutOrStdout(), "prep-headers", paths, app.converter.PrepHeaders)
	},
}

func init() {
	rootCmd.AddCommand(prepCmd)
}
