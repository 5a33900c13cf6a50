// =============================================================================
// Indicator Tidy - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Indicator Tidy CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   indicator-tidy tidy          - Convert wide indicator files to tidy files
//   indicator-tidy sdmx          - Build SDMX documents from tidy files
//   indicator-tidy validate      - Lint the headers of wide files
//   indicator-tidy prep-headers  - Fix the year/total headers of wide files
//   indicator-tidy import        - Split a regional source into wide files
//   indicator-tidy version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Reshape, disaggregation, series and SDMX logic
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/indicator-tidy/cmd"
)

func main() {
	cmd.Execute()
}
