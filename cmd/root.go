// =============================================================================
// Indicator Tidy - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (indicator-tidy)
//   ├── tidyCmd     (indicator-tidy tidy)
//   ├── sdmxCmd     (indicator-tidy sdmx)
//   ├── validateCmd (indicator-tidy validate)
//   ├── prepCmd     (indicator-tidy prep-headers)
//   ├── importCmd   (indicator-tidy import)
//   └── versionCmd  (indicator-tidy version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Loads the site configuration (defaults when the file is missing)
//   3. Applies flag and INDICATOR_TIDY_* environment overrides
//   4. Sets up logging (console, plus the log file when configured)
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/converter"
	"github.com/ginjaninja78/indicator-tidy/internal/logging"
	"github.com/ginjaninja78/indicator-tidy/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the site configuration file.
var cfgFile string

// envFile holds the path to the optional .env file.
var envFile string

// verbose enables debug output on the console.
var verbose bool

// skipSetup marks commands that run without configuration.
const skipSetup = "skip-setup"

// application holds what the subcommands share after setup.
type application struct {
	fs        afero.Fs
	config    *config.SiteConfig
	logger    logging.Logger
	sugar     *zap.SugaredLogger
	logFile   afero.File
	clock     clockwork.Clock
	files     *utils.FileManager
	converter *converter.Converter
}

var app *application

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "indicator-tidy",
	Short: "Indicator Tidy - Reshape wide indicator files and publish SDMX series",

	Long: `Indicator Tidy converts the wide indicator files of a data repository
into tidy (long) files, merges subnational disaggregations, and groups tidy
data into SDMX series.

Wide files have one row per year and one column per disaggregation, named by
convention: "All" for the total, "Sex:Female" for a single category, and
"Sex:Female|Age:0-14" for combinations.

Example Usage:
  indicator-tidy tidy                     # Tidy every wide file
  indicator-tidy sdmx --xml --pages       # Build SDMX JSON, XML and page stubs
  indicator-tidy validate --strict        # Lint wide file headers
  indicator-tidy tidy --max-concurrency 4 # Process files in parallel`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipSetup] != "" {
			return nil
		}
		return setup(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	teardown()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "_config.yml",
		"Path to the site configuration file")
	flags.StringVar(&envFile, "env-file", ".env",
		"Path to a .env file with INDICATOR_TIDY_* variables")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output for debugging")

	config.BindOverrideFlags(flags)
}

// setup loads the configuration and builds the shared application state.
func setup(cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	fsys := afero.NewOsFs()

	siteConfig, err := config.Load(fsys, cfgFile)
	if err != nil {
		return err
	}
	if err := config.ApplyOverrides(siteConfig, cmd.Flags()); err != nil {
		return fmt.Errorf("invalid overrides: %w", err)
	}

	a := &application{
		fs:     fsys,
		config: siteConfig,
		clock:  clockwork.NewRealClock(),
	}

	var logWriter io.Writer
	if siteConfig.LogFile != "" {
		a.logFile, err = logging.OpenFile(fsys, siteConfig.LogFile)
		if err != nil {
			return err
		}
		logWriter = a.logFile
	}

	a.sugar = logging.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), logWriter, verbose)
	a.logger = logging.Wrap(a.sugar)
	a.files = utils.NewFileManager(fsys, a.clock)
	a.converter = converter.New(fsys, siteConfig, a.logger, a.clock)

	a.logger.Debug("Using configuration %s", cfgFile)

	app = a
	return nil
}

// teardown flushes the logger and closes the log file.
func teardown() {
	if app == nil {
		return
	}
	_ = app.sugar.Sync()
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

// inputFiles returns the explicit arguments, or the indicator files of dir.
func inputFiles(args []string, dir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	files, err := app.files.DiscoverFiles(dir, app.config.FilePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	return files, nil
}
