package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the site config,
// e.g. INDICATOR_TIDY_WIDE_DIR.
const EnvPrefix = "INDICATOR_TIDY"

// Override flag names. Each one may also be set through the environment.
const (
	FlagWideDir        = "wide-dir"
	FlagSubnationalDir = "subnational-dir"
	FlagTidyDir        = "tidy-dir"
	FlagSDMXDir        = "sdmx-dir"
	FlagPagesDir       = "pages-dir"
	FlagDepth          = "disaggregation-depth"
	FlagConcurrency    = "max-concurrency"
	FlagLogFile        = "log-file"
	FlagSummaryDir     = "summary-dir"
)

// BindOverrideFlags registers the override flags on a flag set.
func BindOverrideFlags(flags *pflag.FlagSet) {
	flags.String(FlagWideDir, "", "folder with the national wide indicator files")
	flags.String(FlagSubnationalDir, "", "root folder of the disaggregation siblings")
	flags.String(FlagTidyDir, "", "output folder for tidy files")
	flags.String(FlagSDMXDir, "", "output folder for SDMX documents")
	flags.String(FlagPagesDir, "", "folder with indicator pages (front matter)")
	flags.Int(FlagDepth, 0, "path depth of disaggregation siblings below the subnational root")
	flags.Int(FlagConcurrency, 0, "number of files processed at once")
	flags.String(FlagLogFile, "", "path to a log file receiving all levels")
	flags.String(FlagSummaryDir, "", "folder receiving a summary per batch run")
}

// ApplyOverrides applies flags and INDICATOR_TIDY_* environment variables on
// top of a loaded configuration. Only flags that were set explicitly and
// variables that exist override the file.
func ApplyOverrides(config *SiteConfig, flags *pflag.FlagSet) error {
	parser := viper.New()
	parser.SetEnvPrefix(EnvPrefix)
	parser.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	parser.AutomaticEnv()

	if flags != nil {
		if err := parser.BindPFlags(flags); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	stringOverrides := map[string]*string{
		FlagWideDir:        &config.Folders.DataCSVWide,
		FlagSubnationalDir: &config.Folders.DataCSVSubnational,
		FlagTidyDir:        &config.Folders.DataCSVTidy,
		FlagSDMXDir:        &config.Folders.DataSDMXJSON,
		FlagPagesDir:       &config.Folders.PagesIndicators,
		FlagLogFile:        &config.LogFile,
		FlagSummaryDir:     &config.SummaryDir,
	}
	for key, target := range stringOverrides {
		if parser.IsSet(key) {
			if value := parser.GetString(key); value != "" {
				*target = value
			}
		}
	}

	intOverrides := map[string]*int{
		FlagDepth:       &config.DisaggregationDepth,
		FlagConcurrency: &config.MaxConcurrency,
	}
	for key, target := range intOverrides {
		if parser.IsSet(key) {
			if value := parser.GetInt(key); value != 0 {
				*target = value
			}
		}
	}

	return config.Validate()
}
