// =============================================================================
// Indicator Tidy - Import Transformer
// =============================================================================
//
// This module turns a regional source table (one row per region and year)
// into the wide files the tidy pipeline consumes: one Year/All file per
// region, placed where the disaggregation discovery looks for it.
//
// SOURCE (example):
//
//   | State   | Year | Percent |
//   |---------|------|---------|
//   | Ohio    | 2019 | 13.1    |
//   | Alabama | 2019 | 15.5    |
//   | U.S.    | 2019 | 12.3    |
//
// OUTPUT (region_codes: Ohio -> OH, national_regions: [U.S.]):
//
//   data/subnational/state/OH/indicator_1-2-1.csv
//   data/subnational/state/Alabama/indicator_1-2-1.csv
//   data/wide/indicator_1-2-1.csv
//
// TRANSFORMATIONS:
//   - Row filters (column = value) applied before the split
//   - Region lookup replacement through the configured region codes
//   - A fixed year when the source has no year column
//   - Rows with a missing value are dropped
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/csvparser"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
	"github.com/ginjaninja78/indicator-tidy/internal/xlsxparser"
)

// DefaultCategory is the folder category used when none is given.
const DefaultCategory = "state"

// ImportOptions describes how a source table maps onto indicator files.
type ImportOptions struct {
	// IndicatorID names the output files: indicator_<id>.csv.
	IndicatorID string

	// Category is the first folder below the subnational root.
	// Default: "state"
	Category string

	// RegionColumn holds the region names.
	RegionColumn string

	// YearColumn holds the years. Leave empty and set Year for sources
	// covering a single year.
	YearColumn string

	// Year is the fixed year used when YearColumn is empty.
	Year string

	// ValueColumn holds the values.
	ValueColumn string

	// Filters keeps only rows whose column equals the given value.
	Filters map[string]string

	// Sheet selects the table inside XLSX sources.
	Sheet xlsxparser.SheetOptions
}

// RegionTable is the Year/All table of one region.
type RegionTable struct {
	// Region is the region name as found in the source.
	Region string

	// National is true when the table goes to the wide folder.
	National bool

	// Path is the output file path.
	Path string

	// Table has the year and total columns of the convention.
	Table *types.Table
}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer splits source tables by region.
type Transformer struct {
	config  *config.SiteConfig
	options ImportOptions
}

// NewTransformer creates a new Transformer for the given options.
//
// PARAMETERS:
//   - siteConfig: Provides folders, region codes and national regions.
//   - options: The source layout.
//
// RETURNS:
//   - A new Transformer instance.
//   - An error if the options are incomplete.
func NewTransformer(siteConfig *config.SiteConfig, options ImportOptions) (*Transformer, error) {
	if options.IndicatorID == "" {
		return nil, fmt.Errorf("indicator id is required")
	}
	if options.RegionColumn == "" || options.ValueColumn == "" {
		return nil, fmt.Errorf("region and value columns are required")
	}
	if options.YearColumn == "" && options.Year == "" {
		return nil, fmt.Errorf("either a year column or a fixed year is required")
	}
	if options.Category == "" {
		options.Category = DefaultCategory
	}
	if err := checkFolderName(options.Category); err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}
	return &Transformer{config: siteConfig, options: options}, nil
}

// FileName returns the indicator file name written for every region.
func (t *Transformer) FileName() string {
	return "indicator_" + t.options.IndicatorID + ".csv"
}

// Split groups the source rows by region, in order of first appearance.
//
// PARAMETERS:
//   - source: The source table.
//
// RETURNS:
//   - One table per region.
//   - An error if a configured column is missing or a region cannot be used
//     as a folder name.
func (t *Transformer) Split(source *types.Table) ([]RegionTable, error) {
	regionIndex, err := columnIndex(source, t.options.RegionColumn)
	if err != nil {
		return nil, err
	}
	valueIndex, err := columnIndex(source, t.options.ValueColumn)
	if err != nil {
		return nil, err
	}
	yearIndex := -1
	if t.options.YearColumn != "" {
		if yearIndex, err = columnIndex(source, t.options.YearColumn); err != nil {
			return nil, err
		}
	}
	filters, err := t.filterIndexes(source)
	if err != nil {
		return nil, err
	}

	var tables []RegionTable
	byRegion := make(map[string]int)

	for row := range source.Rows {
		if !matches(source, row, filters) {
			continue
		}
		region := strings.TrimSpace(source.Cell(row, regionIndex))
		value := source.Cell(row, valueIndex)
		if region == "" || types.IsMissing(value) {
			continue
		}
		year := t.options.Year
		if yearIndex >= 0 {
			year = strings.TrimSpace(source.Cell(row, yearIndex))
		}

		i, ok := byRegion[region]
		if !ok {
			regionTable, err := t.newRegionTable(region)
			if err != nil {
				return nil, err
			}
			i = len(tables)
			byRegion[region] = i
			tables = append(tables, regionTable)
		}
		tables[i].Table.AddRow(year, value)
	}

	return tables, nil
}

func (t *Transformer) newRegionTable(region string) (RegionTable, error) {
	convention := t.config.Columns
	regionTable := RegionTable{
		Region: region,
		Table:  types.NewTable(convention.Year, convention.Total),
	}

	if t.config.IsNationalRegion(region) {
		regionTable.National = true
		regionTable.Path = filepath.Join(t.config.Folders.DataCSVWide, t.FileName())
		return regionTable, nil
	}

	code := region
	if mapped, ok := t.config.RegionCodes[region]; ok {
		code = mapped
	}
	if err := checkFolderName(code); err != nil {
		return RegionTable{}, fmt.Errorf("region %q: %w", region, err)
	}
	regionTable.Path = filepath.Join(t.config.Folders.DataCSVSubnational, t.options.Category, code, t.FileName())
	return regionTable, nil
}

// filterIndexes resolves the filter columns, in sorted column order.
func (t *Transformer) filterIndexes(source *types.Table) (map[int]string, error) {
	names := make([]string, 0, len(t.options.Filters))
	for name := range t.options.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	filters := make(map[int]string, len(names))
	for _, name := range names {
		index, err := columnIndex(source, name)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		filters[index] = strings.TrimSpace(t.options.Filters[name])
	}
	return filters, nil
}

// =============================================================================
// IMPORT PIPELINE
// =============================================================================

// ReadSource reads a CSV or XLSX source, chosen by file extension.
func (c *Converter) ReadSource(path string, sheet xlsxparser.SheetOptions) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		file, err := c.fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer file.Close()

		table, err := xlsxparser.ReadSheet(file, sheet)
		if err != nil {
			return nil, err
		}
		table.Source = path
		return table, nil
	default:
		return csvparser.Parse(c.fs, path, c.config.CSV)
	}
}

// Import splits one source into per-region indicator files.
//
// RETURNS:
//   - One Result per written file, or a single failed Result when the source
//     cannot be read or split.
func (c *Converter) Import(sourcePath string, options ImportOptions) []Result {
	fail := func(err error) []Result {
		return []Result{{FilePath: sourcePath, Error: err}}
	}

	transformer, err := NewTransformer(c.config, options)
	if err != nil {
		return fail(err)
	}
	source, err := c.ReadSource(sourcePath, options.Sheet)
	if err != nil {
		return fail(fmt.Errorf("failed to read source: %w", err))
	}
	tables, err := transformer.Split(source)
	if err != nil {
		return fail(fmt.Errorf("failed to split source: %w", err))
	}
	if len(tables) == 0 {
		c.logger.Warn("No rows imported from %s", sourcePath)
	}

	results := make([]Result, 0, len(tables))
	for _, regionTable := range tables {
		startTime := c.clock.Now()
		result := Result{FilePath: sourcePath}

		if err := csvparser.Write(c.fs, regionTable.Path, regionTable.Table, c.config.CSV); err != nil {
			result.Error = fmt.Errorf("failed to write %s: %w", regionTable.Region, err)
			results = append(results, result)
			continue
		}
		c.logger.Debug("Wrote %d rows for %s", len(regionTable.Table.Rows), regionTable.Region)

		result.OutputFile = regionTable.Path
		result.Success = true
		result.Stats.RowsWritten = len(regionTable.Table.Rows)
		result.Stats.FilesWritten = 1
		result.Stats.ProcessingTime = c.clock.Since(startTime)
		results = append(results, result)
	}

	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func columnIndex(table *types.Table, name string) (int, error) {
	index := table.ColumnIndex(name)
	if index < 0 {
		return -1, fmt.Errorf("column %q not found", name)
	}
	return index, nil
}

func matches(table *types.Table, row int, filters map[int]string) bool {
	for index, want := range filters {
		if strings.TrimSpace(table.Cell(row, index)) != want {
			return false
		}
	}
	return true
}

// checkFolderName rejects names that would escape their parent folder.
func checkFolderName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q cannot be used as a folder name", name)
	}
	return nil
}
