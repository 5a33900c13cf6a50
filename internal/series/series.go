// Package series groups tidy rows into series: the observations sharing one
// set of category values, varying only by year.
package series

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// Key identifies a category-value set. It is the sorted list of quoted
// name=value pairs, so equal sets always produce equal keys and distinct
// sets never collide.
type Key string

// KeyOf returns the key of a category set. Pair order does not matter;
// categories with a missing value are left out.
func KeyOf(categories []types.Category) Key {
	pairs := make([]string, 0, len(categories))
	for _, category := range categories {
		if types.IsMissing(category.Value) {
			continue
		}
		pairs = append(pairs, strconv.Quote(category.Name)+"="+strconv.Quote(category.Value))
	}
	sort.Strings(pairs)
	return Key(strings.Join(pairs, ","))
}

// Observation is one year of a series.
type Observation struct {
	Year  string
	Value string
}

// Series is the set of observations sharing one category-value set.
type Series struct {
	Key Key

	// Dimensions are the category assignments of the series, sorted by name.
	Dimensions []types.Category

	// Attributes merges the fixed attributes with the dimensions; a
	// dimension overrides a fixed attribute of the same name.
	Attributes map[string]string

	// Observations are kept in input order. Repeated years are kept.
	Observations []Observation
}

// Set is an insertion-ordered collection of series.
type Set struct {
	order []*Series
	index map[Key]*Series
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{index: make(map[Key]*Series)}
}

// Len returns the number of series.
func (s *Set) Len() int {
	return len(s.order)
}

// Series returns every series in first-seen order.
func (s *Set) Series() []*Series {
	return s.order
}

// Get returns the series with the given key.
func (s *Set) Get(key Key) (*Series, bool) {
	series, ok := s.index[key]
	return series, ok
}

// Add appends an observation to the series of the row's categories,
// creating the series on first encounter.
func (s *Set) Add(row types.TidyRow, fixed map[string]string) *Series {
	key := KeyOf(row.Categories)

	series, ok := s.index[key]
	if !ok {
		series = newSeries(key, row.Categories, fixed)
		s.index[key] = series
		s.order = append(s.order, series)
	}

	series.Observations = append(series.Observations, Observation{Year: row.Year, Value: row.Value})
	return series
}

func newSeries(key Key, categories []types.Category, fixed map[string]string) *Series {
	dimensions := make([]types.Category, 0, len(categories))
	for _, category := range categories {
		if !types.IsMissing(category.Value) {
			dimensions = append(dimensions, category)
		}
	}
	sort.SliceStable(dimensions, func(i, j int) bool {
		return dimensions[i].Name < dimensions[j].Name
	})

	attributes := make(map[string]string, len(fixed)+len(dimensions))
	for name, value := range fixed {
		attributes[name] = value
	}
	for _, dimension := range dimensions {
		attributes[dimension.Name] = dimension.Value
	}

	return &Series{
		Key:        key,
		Dimensions: dimensions,
		Attributes: attributes,
	}
}

// Group groups tidy rows into series. Rows with a missing value carry no
// observation and are skipped.
func Group(rows []types.TidyRow, fixed map[string]string) *Set {
	set := NewSet()
	for _, row := range rows {
		if types.IsMissing(row.Value) {
			continue
		}
		set.Add(row, fixed)
	}
	return set
}

// FromTable reads tidy rows back from a flat tidy table: every column other
// than the year and value columns is a category, and blank cells mean the
// row does not carry that category.
func FromTable(table *types.Table, yearColumn, valueColumn string) []types.TidyRow {
	yearIndex := table.ColumnIndex(yearColumn)
	valueIndex := table.ColumnIndex(valueColumn)

	rows := make([]types.TidyRow, 0, len(table.Rows))
	for r := range table.Rows {
		row := types.TidyRow{
			Year:  table.Cell(r, yearIndex),
			Value: table.Cell(r, valueIndex),
		}
		for col, name := range table.Columns {
			if col == yearIndex || col == valueIndex {
				continue
			}
			value := table.Cell(r, col)
			if types.IsMissing(value) {
				continue
			}
			row.Categories = append(row.Categories, types.Category{Name: name, Value: value})
		}
		rows = append(rows, row)
	}
	return rows
}
