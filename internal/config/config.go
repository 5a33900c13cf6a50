// =============================================================================
// Indicator Tidy - Configuration Module
// =============================================================================
//
// This module is responsible for loading the site configuration. The file
// follows the layout of the site variables file used by the publishing
// platform, so the same YAML can be shared with the site build.
//
// CONFIGURATION FILES:
//   1. Site Config (site_variables.yml): folders, column naming convention,
//      SDMX concept/value maps, indicator metadata keys
//   2. Overrides: flags and INDICATOR_TIDY_* environment variables, bound
//      through viper (see overrides.go)
//
// A missing site configuration file is not an error: every setting has a
// default matching the platform's historical layout.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// NAMING CONVENTION
// =============================================================================

// Convention holds the reserved column names of the wide naming convention.
// It is passed explicitly to every reshape call: several incompatible
// conventions exist across legacy data sets.
type Convention struct {
	// Year is the name of the year column, e.g. "Year".
	Year string `yaml:"year"`

	// Total is the total marker, e.g. "All". A column named exactly like
	// this carries the undifferentiated aggregate.
	Total string `yaml:"all"`

	// Value is the name of the value column in tidy output, e.g. "Value".
	Value string `yaml:"value"`
}

// DefaultConvention returns the convention used by the platform since the
// Year/All/Value headers were introduced.
func DefaultConvention() Convention {
	return Convention{
		Year:  "Year",
		Total: "All",
		Value: "Value",
	}
}

// Validate checks that the reserved names are usable.
func (c Convention) Validate() error {
	if c.Year == "" || c.Total == "" || c.Value == "" {
		return fmt.Errorf("csv_column_names: year, all and value must all be set")
	}
	if c.Year == c.Total || c.Year == c.Value || c.Total == c.Value {
		return fmt.Errorf("csv_column_names: year, all and value must be distinct")
	}
	return nil
}

// =============================================================================
// SITE CONFIGURATION STRUCTURE
// =============================================================================

// SiteConfig holds the global application configuration.
type SiteConfig struct {
	// Columns is the wide/tidy naming convention.
	Columns Convention `yaml:"csv_column_names"`

	// Folders contains all input and output locations.
	Folders Folders `yaml:"folders"`

	// CSV contains settings for reading and writing delimited files.
	CSV CSVSettings `yaml:"csv_settings"`

	// MetadataKeys names the front matter keys read for SDMX attributes.
	MetadataKeys MetadataKeys `yaml:"indicator_metadata_keys"`

	// ConceptColumns maps tidy column names to SDMX concept ids,
	// e.g. "Sex" -> "SEX". Indicator front matter may extend it.
	ConceptColumns map[string]string `yaml:"sdmx_concept_columns"`

	// ValueCodes maps category values to SDMX codes, e.g. "Female" -> "F".
	// Indicator front matter may extend it.
	ValueCodes map[string]string `yaml:"sdmx_value_codes"`

	// Sender is written to the header of every SDMX document.
	Sender string `yaml:"sdmx_sender"`

	// RegionCodes maps region names found in import sources to the folder
	// names used below the subnational root, e.g. "Ohio" -> "OH".
	RegionCodes map[string]string `yaml:"region_codes"`

	// NationalRegions lists region names (before mapping) whose data is the
	// national series and goes to the wide folder instead of a subfolder.
	NationalRegions []string `yaml:"national_regions"`

	// DisaggregationDepth is the number of path segments between the
	// subnational root and a sibling file, e.g. 2 for state/OH.
	// Default: 2
	DisaggregationDepth int `yaml:"disaggregation_depth"`

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 1 (sequential)
	MaxConcurrency int `yaml:"max_concurrency"`

	// FilePattern selects indicator files inside a folder.
	// Default: "indicator*.csv"
	FilePattern string `yaml:"file_pattern"`

	// LogFile receives every log level when set.
	LogFile string `yaml:"log_file"`

	// SummaryDir receives a processing summary per batch run when set.
	SummaryDir string `yaml:"summary_dir"`
}

// Folders contains the folder layout of the data repository.
type Folders struct {
	// DataCSVWide holds the national wide indicator files.
	// Default: "data/wide"
	DataCSVWide string `yaml:"data_csv_wide"`

	// DataCSVSubnational holds disaggregation siblings, one subfolder
	// level per category: <root>/<category>/<value>/<file>.
	// Default: "data/subnational"
	DataCSVSubnational string `yaml:"data_csv_subnational"`

	// DataCSVTidy receives the tidy indicator files.
	// Default: "data/tidy"
	DataCSVTidy string `yaml:"data_csv_tidy"`

	// DataSDMXJSON receives the SDMX JSON (and XML) documents.
	// Default: "data/sdmx"
	DataSDMXJSON string `yaml:"data_sdmx_json"`

	// PagesIndicators holds the indicator pages with YAML front matter.
	// Default: "_indicators"
	PagesIndicators string `yaml:"pages_indicators"`

	// PagesSDMX receives the generated SDMX page stubs.
	// Default: "api/sdmx"
	PagesSDMX string `yaml:"pages_sdmx"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for delimited files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// WriteBOM prefixes written files with a UTF-8 byte order mark, which
	// helps spreadsheet software recognise the encoding.
	// Default: false
	WriteBOM bool `yaml:"write_bom"`
}

// MetadataKeys names the indicator front matter keys used by the SDMX output.
type MetadataKeys struct {
	MethodOfComputation string `yaml:"method_of_computation"`
	UnitOfMeasure       string `yaml:"unit_of_measure"`
	Title               string `yaml:"title"`
	DataMetadataUpdated string `yaml:"data_metadata_updated"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *SiteConfig {
	config := &SiteConfig{}
	applyDefaults(config)
	return config
}

// Load loads the site configuration from a YAML file.
//
// PARAMETERS:
//   - fsys: The filesystem to read from.
//   - configPath: The path to the site configuration file.
//
// RETURNS:
//   - A pointer to the SiteConfig struct with defaults applied.
//   - An error if the file exists but cannot be read or parsed, or if the
//     resulting configuration is invalid.
func Load(fsys afero.Fs, configPath string) (*SiteConfig, error) {
	var config SiteConfig

	data, err := afero.ReadFile(fsys, configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *SiteConfig) {
	defaults := DefaultConvention()
	if config.Columns.Year == "" {
		config.Columns.Year = defaults.Year
	}
	if config.Columns.Total == "" {
		config.Columns.Total = defaults.Total
	}
	if config.Columns.Value == "" {
		config.Columns.Value = defaults.Value
	}

	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}

	if config.Folders.DataCSVWide == "" {
		config.Folders.DataCSVWide = filepath.Join("data", "wide")
	}
	if config.Folders.DataCSVSubnational == "" {
		config.Folders.DataCSVSubnational = filepath.Join("data", "subnational")
	}
	if config.Folders.DataCSVTidy == "" {
		config.Folders.DataCSVTidy = filepath.Join("data", "tidy")
	}
	if config.Folders.DataSDMXJSON == "" {
		config.Folders.DataSDMXJSON = filepath.Join("data", "sdmx")
	}
	if config.Folders.PagesIndicators == "" {
		config.Folders.PagesIndicators = "_indicators"
	}
	if config.Folders.PagesSDMX == "" {
		config.Folders.PagesSDMX = filepath.Join("api", "sdmx")
	}

	if config.MetadataKeys.MethodOfComputation == "" {
		config.MetadataKeys.MethodOfComputation = "computation_calculations"
	}
	if config.MetadataKeys.UnitOfMeasure == "" {
		config.MetadataKeys.UnitOfMeasure = "computation_units"
	}
	if config.MetadataKeys.Title == "" {
		config.MetadataKeys.Title = "title"
	}
	if config.MetadataKeys.DataMetadataUpdated == "" {
		config.MetadataKeys.DataMetadataUpdated = "national_data_update_date"
	}

	if config.ConceptColumns == nil {
		config.ConceptColumns = map[string]string{}
	}
	if config.ValueCodes == nil {
		config.ValueCodes = map[string]string{}
	}
	if config.RegionCodes == nil {
		config.RegionCodes = map[string]string{}
	}
	if config.Sender == "" {
		config.Sender = "indicator-tidy"
	}
	if config.DisaggregationDepth == 0 {
		config.DisaggregationDepth = 2
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 1
	}
	if config.FilePattern == "" {
		config.FilePattern = "indicator*.csv"
	}
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := c.Columns.Validate(); err != nil {
		return err
	}
	if c.DisaggregationDepth < 2 || c.DisaggregationDepth%2 != 0 {
		return fmt.Errorf("disaggregation_depth must be a positive even number (category/value folders), got %d", c.DisaggregationDepth)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if _, err := filepath.Match(c.FilePattern, "indicator_1-1-1.csv"); err != nil {
		return fmt.Errorf("file_pattern %q: %w", c.FilePattern, err)
	}
	return nil
}

// IsNationalRegion reports whether the region name is configured as national.
func (c *SiteConfig) IsNationalRegion(region string) bool {
	for _, name := range c.NationalRegions {
		if name == region {
			return true
		}
	}
	return false
}
