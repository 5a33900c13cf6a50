// =============================================================================
// Indicator Tidy - Converter Module
// =============================================================================
//
// This module contains the per-file pipelines. Each pipeline reads one file,
// transforms it and writes its outputs; files never share state, so a batch
// can run them in any order or in parallel (see batch.go).
//
// PIPELINES:
//   Tidy:   wide CSV -> merge disaggregation siblings -> reshape -> tidy CSV
//   SDMX:   tidy CSV + indicator front matter -> series -> SDMX JSON
//           (+ optional SDMX-ML and page stub)
//   Prep:   rename the first column to the year column (and a lone value
//           column to the total column) in place
//   Import: split a regional source table into wide files (transformer.go)
//
// OUTCOMES:
//   Every pipeline returns a Result. A file outside the naming convention is
//   skipped, not failed: most files in a data folder are not in it.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/csvparser"
	"github.com/ginjaninja78/indicator-tidy/internal/disaggregation"
	"github.com/ginjaninja78/indicator-tidy/internal/logging"
	"github.com/ginjaninja78/indicator-tidy/internal/metadata"
	"github.com/ginjaninja78/indicator-tidy/internal/reshape"
	"github.com/ginjaninja78/indicator-tidy/internal/sdmx"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
	"github.com/ginjaninja78/indicator-tidy/internal/validation"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the main output file.
	// This is empty if processing failed or was skipped.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Skipped indicates the file was left alone; it is not a failure.
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// Error contains the error if processing failed.
	// This is nil if processing was successful or skipped.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// Failed reports whether the file failed.
func (r Result) Failed() bool {
	return !r.Success && !r.Skipped
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows read from the input file.
	RowsRead int

	// SiblingsMerged is the number of disaggregation tables merged in.
	SiblingsMerged int

	// RowsWritten is the number of rows written to the main output.
	RowsWritten int

	// SeriesCreated is the number of SDMX series.
	SeriesCreated int

	// FilesWritten is the number of files written.
	FilesWritten int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the per-file pipelines against a filesystem.
type Converter struct {
	fs     afero.Fs
	config *config.SiteConfig
	logger logging.Logger
	clock  clockwork.Clock
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - fs: The filesystem holding the data repository.
//   - siteConfig: The site configuration.
//   - logger: The logger; nil discards messages.
//   - clock: The clock; nil uses the real clock.
//
// RETURNS:
//   - A new Converter instance.
func New(fs afero.Fs, siteConfig *config.SiteConfig, logger logging.Logger, clock clockwork.Clock) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Converter{
		fs:     fs,
		config: siteConfig,
		logger: logger,
		clock:  clock,
	}
}

// =============================================================================
// TIDY PIPELINE
// =============================================================================

// Tidy converts one wide file to tidy format.
//
// PROCESSING STEPS:
//  1. Parse the wide CSV file
//  2. Check the naming convention (skip if not followed)
//  3. Discover and merge disaggregation siblings
//  4. Reshape to tidy rows
//  5. Write the tidy CSV file
func (c *Converter) Tidy(path string) Result {
	startTime := c.clock.Now()
	result := Result{FilePath: path}
	convention := c.config.Columns
	fileName := filepath.Base(path)

	c.logger.Debug("Processing file: %s", path)

	table, err := csvparser.Parse(c.fs, path, c.config.CSV)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse CSV: %w", err)
		return result
	}
	result.Stats.RowsRead = len(table.Rows)

	if !reshape.Suitable(table, convention) {
		return c.skip(result, "columns do not follow the naming convention")
	}

	discoverer := &disaggregation.Discoverer{
		Fs:    c.fs,
		Root:  c.config.Folders.DataCSVSubnational,
		Depth: c.config.DisaggregationDepth,
		Read:  c.readTable,
	}
	siblings, err := discoverer.Discover(fileName)
	if err != nil {
		result.Error = fmt.Errorf("failed to discover disaggregations: %w", err)
		return result
	}
	for _, sibling := range siblings {
		c.logger.Debug("Merging %s from %s", fileName, sibling.Location)
	}

	merged, err := disaggregation.Merge(table, siblings, convention)
	if err != nil {
		result.Error = fmt.Errorf("failed to merge disaggregations: %w", err)
		return result
	}
	result.Stats.SiblingsMerged = len(siblings)

	rows, err := reshape.Reshape(merged, convention)
	if errors.Is(err, reshape.ErrNotApplicable) {
		return c.skip(result, "columns do not follow the naming convention")
	} else if err != nil {
		result.Error = fmt.Errorf("failed to reshape: %w", err)
		return result
	}

	tidy := reshape.ToTable(rows, convention)
	outputPath := filepath.Join(c.config.Folders.DataCSVTidy, fileName)
	if err := csvparser.Write(c.fs, outputPath, tidy, c.config.CSV); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	c.logger.Info("Converted %s to tidy format.", fileName)

	result.OutputFile = outputPath
	result.Success = true
	result.Stats.RowsWritten = len(tidy.Rows)
	result.Stats.FilesWritten = 1
	result.Stats.ProcessingTime = c.clock.Since(startTime)
	return result
}

// =============================================================================
// SDMX PIPELINE
// =============================================================================

// SDMXOptions selects the optional SDMX outputs.
type SDMXOptions struct {
	// XML also writes the SDMX-ML rendering next to the JSON.
	XML bool

	// Pages writes the page stub that publishes the XML rendering.
	Pages bool
}

// SDMX converts one tidy file to the SDMX JSON document.
//
// PROCESSING STEPS:
//  1. Parse the tidy CSV file
//  2. Check for the year and value columns (skip if missing)
//  3. Load the indicator front matter
//  4. Build the series
//  5. Write the JSON document, and optionally the XML and the page stub
func (c *Converter) SDMX(path string, options SDMXOptions) Result {
	startTime := c.clock.Now()
	result := Result{FilePath: path}
	convention := c.config.Columns
	fileName := filepath.Base(path)

	table, err := csvparser.Parse(c.fs, path, c.config.CSV)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse CSV: %w", err)
		return result
	}
	result.Stats.RowsRead = len(table.Rows)

	if !table.HasColumn(convention.Year) || !table.HasColumn(convention.Value) {
		return c.skip(result, fmt.Sprintf("no %q and %q columns", convention.Year, convention.Value))
	}
	indicatorID, ok := sdmx.IndicatorID(fileName)
	if !ok {
		return c.skip(result, "file name carries no indicator id")
	}

	meta, err := metadata.Load(c.fs, c.config.Folders.PagesIndicators, indicatorID)
	if err != nil {
		result.Error = fmt.Errorf("failed to load metadata: %w", err)
		return result
	}

	doc, err := sdmx.Build(table, sdmx.NewOptions(c.config, meta, indicatorID, c.clock))
	if errors.Is(err, sdmx.ErrNotApplicable) {
		return c.skip(result, err.Error())
	} else if err != nil {
		result.Error = fmt.Errorf("failed to build SDMX document: %w", err)
		return result
	}
	result.Stats.SeriesCreated = len(doc.Series)

	stem, _, _ := strings.Cut(fileName, ".")
	outputDir := c.config.Folders.DataSDMXJSON

	data, err := sdmx.MarshalJSON(doc)
	if err != nil {
		result.Error = err
		return result
	}
	jsonPath := filepath.Join(outputDir, stem+".json")
	if err := c.writeFile(jsonPath, data); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.Stats.FilesWritten++

	if options.XML {
		if err := c.writeFile(filepath.Join(outputDir, stem+".xml"), sdmx.MarshalXML(doc)); err != nil {
			result.Error = fmt.Errorf("failed to write XML output: %w", err)
			return result
		}
		result.Stats.FilesWritten++
	}

	if options.Pages {
		pagePath, err := sdmx.WritePage(c.fs, c.config.Folders.PagesSDMX, indicatorID)
		if err != nil {
			result.Error = err
			return result
		}
		c.logger.Debug("Wrote page stub: %s", pagePath)
		result.Stats.FilesWritten++
	}

	c.logger.Info("Created %s for SDMX use.", filepath.Base(jsonPath))

	result.OutputFile = jsonPath
	result.Success = true
	result.Stats.RowsWritten = len(table.Rows)
	result.Stats.ProcessingTime = c.clock.Since(startTime)
	return result
}

// =============================================================================
// HEADER PIPELINES
// =============================================================================

// PrepHeaders renames the first column to the year column and, for files with
// exactly two columns, the second column to the total column. Files that
// already have these headers are skipped.
func (c *Converter) PrepHeaders(path string) Result {
	startTime := c.clock.Now()
	result := Result{FilePath: path}
	convention := c.config.Columns

	table, err := csvparser.Parse(c.fs, path, c.config.CSV)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse CSV: %w", err)
		return result
	}
	result.Stats.RowsRead = len(table.Rows)

	changed := false
	if table.Columns[0] != convention.Year {
		table.Columns[0] = convention.Year
		changed = true
	}
	if len(table.Columns) == 2 && table.Columns[1] != convention.Total {
		table.Columns[1] = convention.Total
		changed = true
	}
	if !changed {
		return c.skip(result, "headers already prepared")
	}

	if err := csvparser.Write(c.fs, path, table, c.config.CSV); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	c.logger.Info("Fixed headers in %s.", filepath.Base(path))

	result.OutputFile = path
	result.Success = true
	result.Stats.RowsWritten = len(table.Rows)
	result.Stats.FilesWritten = 1
	result.Stats.ProcessingTime = c.clock.Since(startTime)
	return result
}

// Lint checks the headers of one wide file.
func (c *Converter) Lint(path string) (*validation.ValidationResult, error) {
	table, err := csvparser.Parse(c.fs, path, c.config.CSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return validation.Validate(table, c.config.Columns), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Converter) skip(result Result, reason string) Result {
	c.logger.Debug("Skipping %s: %s", result.FilePath, reason)
	result.Skipped = true
	result.SkipReason = reason
	return result
}

// readTable reads a CSV table with the configured settings.
func (c *Converter) readTable(fsys afero.Fs, path string) (*types.Table, error) {
	return csvparser.Parse(fsys, path, c.config.CSV)
}

// writeFile writes data to path, creating the parent directory.
func (c *Converter) writeFile(path string, data []byte) error {
	if err := c.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return afero.WriteFile(c.fs, path, data, 0644)
}
