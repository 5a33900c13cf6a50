// =============================================================================
// Indicator Tidy - Shared Types
// =============================================================================
//
// This package contains the data model shared by the reshape pipeline. Types
// defined here are used by:
//   - grammar
//   - reshape
//   - disaggregation
//   - series
//   - csvparser / xlsxparser
//
// A Table holds string cells only. Values are never computed upon; the
// pipeline moves them around and drops the missing ones.
//
// =============================================================================

package types

import (
	"strings"
)

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered set of named columns plus ordered rows of string cells.
// The same structure carries both wide and tidy tables.
type Table struct {
	// Columns contains the header names in file order.
	Columns []string

	// Rows contains the data rows. A row shorter than Columns reads as
	// missing cells for the absent positions.
	Rows [][]string

	// Source is the path the table was read from, if any.
	// Used for error reporting only.
	Source string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of the first column with the exact name,
// or -1 when the column does not exist.
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the cell at the given row and column position.
// Out of range positions return an empty string.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	if col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// AddRow appends a row, padding or truncating it to the column count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Clone returns a deep copy of the table. Every cloned row is padded to the
// column count.
func (t *Table) Clone() *Table {
	clone := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
		Source:  t.Source,
	}
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		copy(cells, row)
		clone.Rows[i] = cells
	}
	return clone
}

// =============================================================================
// TIDY ROWS
// =============================================================================

// Category is a single category assignment, e.g. sex=female.
type Category struct {
	Name  string
	Value string
}

// String returns the category in header notation ("name:value").
func (c Category) String() string {
	return c.Name + ":" + c.Value
}

// TidyRow is one long-form observation: a year, the categories that apply
// to it, and the value.
type TidyRow struct {
	Year       string
	Categories []Category
	Value      string
}

// Category returns the value of the named category, if the row carries it.
func (r TidyRow) Category(name string) (string, bool) {
	for _, category := range r.Categories {
		if category.Name == name {
			return category.Value, true
		}
	}
	return "", false
}

// =============================================================================
// MISSING VALUES
// =============================================================================

// missingTokens are the cell contents read as "no value". The list matches
// the NA tokens recognised by the pandas CSV reader the source data was
// historically produced with.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a cell carries no value.
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}
