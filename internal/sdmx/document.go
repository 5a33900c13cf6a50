// =============================================================================
// Indicator Tidy - SDMX Document Module
// =============================================================================
//
// This module builds the exchange-format document of a tidy indicator table.
// Each series is one distinct combination of category values; its
// observations are the (year, value) pairs of the rows carrying exactly that
// combination.
//
// DOCUMENT STRUCTURE:
//
//   header:
//     id:       indicator id, e.g. "1-2-1"
//     prepared: date the data was last updated
//     sender:   publishing organisation
//   series:
//     - attributes:   fixed attributes + SDMX-coded category values
//       observations: [{year, value}, ...]
//
// Column names are mapped to SDMX concept ids and category values to SDMX
// codes before grouping. Both maps come from the site configuration and may
// be extended by the indicator's front matter.
//
// =============================================================================

package sdmx

import (
	"errors"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/metadata"
	"github.com/ginjaninja78/indicator-tidy/internal/series"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// ErrNotApplicable is returned for tables without the year and value columns.
var ErrNotApplicable = errors.New("table has no year and value columns")

// Fixed attribute ids.
const (
	AttributeFrequency  = "FREQ"
	AttributeCollection = "COLL_METHOD"
	AttributeTitle      = "TITLE"
	AttributeUnit       = "UNIT_MEASURE"

	// Annual data only.
	frequencyAnnual = "A"
)

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Header identifies the document.
type Header struct {
	ID       string
	Prepared string
	Sender   string
}

// Document is the exchange-format rendering of one indicator.
type Document struct {
	Header Header

	// Fixed holds the attributes shared by every series.
	Fixed map[string]string

	// Series are in first-seen order.
	Series []*series.Series
}

// Options controls how a tidy table is turned into a document.
type Options struct {
	Header     Header
	Convention config.Convention

	// Concepts maps column names to concept ids.
	Concepts map[string]string

	// ValueCodes maps category values to codes.
	ValueCodes map[string]string

	// Fixed attributes are added to every series.
	Fixed map[string]string
}

// NewOptions assembles the options of one indicator from the site
// configuration and the indicator's front matter. The prepared date falls
// back to the clock's current date when the front matter has none.
func NewOptions(site *config.SiteConfig, meta metadata.FrontMatter, indicatorID string, clock clockwork.Clock) Options {
	keys := site.MetadataKeys

	prepared := meta.String(keys.DataMetadataUpdated)
	if prepared == "" {
		prepared = clock.Now().Format("2006-01-02")
	}

	return Options{
		Header: Header{
			ID:       indicatorID,
			Prepared: prepared,
			Sender:   site.Sender,
		},
		Convention: site.Columns,
		Concepts:   mergeMaps(site.ConceptColumns, meta.StringMap("sdmx_concept_columns")),
		ValueCodes: mergeMaps(site.ValueCodes, meta.StringMap("sdmx_value_codes")),
		Fixed: map[string]string{
			AttributeFrequency:  frequencyAnnual,
			AttributeCollection: meta.String(keys.MethodOfComputation),
			AttributeTitle:      meta.String(keys.Title),
			AttributeUnit:       meta.String(keys.UnitOfMeasure),
		},
	}
}

// mergeMaps copies base and applies the overrides on top.
func mergeMaps(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// =============================================================================
// DOCUMENT BUILDING
// =============================================================================

// Build groups the rows of a tidy table into series.
//
// PARAMETERS:
//   - tidy: A tidy table (year column, category columns, value column).
//   - options: The header, maps and fixed attributes.
//
// RETURNS:
//   - The document.
//   - ErrNotApplicable if the year or value column is missing.
func Build(tidy *types.Table, options Options) (*Document, error) {
	yearIndex := tidy.ColumnIndex(options.Convention.Year)
	valueIndex := tidy.ColumnIndex(options.Convention.Value)
	if yearIndex < 0 || valueIndex < 0 {
		return nil, ErrNotApplicable
	}

	// Concept id per category column.
	type dimension struct {
		index   int
		concept string
	}
	dimensions := make([]dimension, 0, len(tidy.Columns))
	for i, column := range tidy.Columns {
		if i == yearIndex || i == valueIndex {
			continue
		}
		dimensions = append(dimensions, dimension{index: i, concept: mapString(column, options.Concepts)})
	}

	rows := make([]types.TidyRow, 0, len(tidy.Rows))
	for r := range tidy.Rows {
		row := types.TidyRow{
			Year:  tidy.Cell(r, yearIndex),
			Value: tidy.Cell(r, valueIndex),
		}
		for _, d := range dimensions {
			value := tidy.Cell(r, d.index)
			if types.IsMissing(value) {
				continue
			}
			row.Categories = append(row.Categories, types.Category{
				Name:  d.concept,
				Value: mapString(value, options.ValueCodes),
			})
		}
		rows = append(rows, row)
	}

	set := series.Group(rows, options.Fixed)

	fixed := make(map[string]string, len(options.Fixed))
	for key, value := range options.Fixed {
		fixed[key] = value
	}

	return &Document{
		Header: options.Header,
		Fixed:  fixed,
		Series: set.Series(),
	}, nil
}

// mapString returns the mapped value, or the original when unmapped.
func mapString(original string, mapping map[string]string) string {
	if mapped, ok := mapping[original]; ok {
		return mapped
	}
	return original
}

// IndicatorID derives the indicator id from a data file name:
// "indicator_1-2-1.csv" gives "1-2-1". It returns false for other names.
func IndicatorID(fileName string) (string, bool) {
	stem, _, _ := strings.Cut(fileName, ".")
	_, id, found := strings.Cut(stem, "indicator_")
	if !found || id == "" {
		return "", false
	}
	return id, true
}

// fixedNames returns the fixed attribute names of a series in sorted order,
// leaving out those overridden by a dimension.
func fixedNames(doc *Document, s *series.Series) []string {
	names := make([]string, 0, len(doc.Fixed))
	for name := range doc.Fixed {
		overridden := false
		for _, dimension := range s.Dimensions {
			if dimension.Name == name {
				overridden = true
				break
			}
		}
		if !overridden {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
