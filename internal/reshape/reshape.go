// Package reshape turns wide indicator tables into tidy (long) rows.
//
// A wide table has one row per year and one column per disaggregation
// combination. Every column that follows the naming convention is melted
// into one tidy row per source row; the tidy rows of all columns are
// concatenated in column order, then source-row order.
package reshape

import (
	"errors"
	"strings"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/grammar"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// ErrNotApplicable is returned for tables outside the naming convention.
// It is a skip, not a failure: most source tables are not in the convention.
var ErrNotApplicable = errors.New("table does not follow the wide naming convention")

// Suitable reports whether a table can be reshaped: the year column must be
// present by exact name, and either the total column is present or at least
// one header starts with the total marker followed by "|".
func Suitable(table *types.Table, convention config.Convention) bool {
	if !table.HasColumn(convention.Year) {
		return false
	}
	if table.HasColumn(convention.Total) {
		return true
	}
	prefix := convention.Total + "|"
	for _, column := range table.Columns {
		if strings.HasPrefix(column, prefix) {
			return true
		}
	}
	return false
}

// Reshape melts a wide table into tidy rows. Rows whose value is missing are
// not emitted. It returns ErrNotApplicable when Suitable does not hold.
func Reshape(table *types.Table, convention config.Convention) ([]types.TidyRow, error) {
	if !Suitable(table, convention) {
		return nil, ErrNotApplicable
	}

	yearIndex := table.ColumnIndex(convention.Year)
	specs := grammar.ParseAll(table.Columns, convention)

	matched := 0
	for i, spec := range specs {
		if i != yearIndex && spec.Matched() {
			matched++
		}
	}

	rows := make([]types.TidyRow, 0, matched*len(table.Rows))
	for col, spec := range specs {
		if col == yearIndex || !spec.Matched() {
			continue
		}

		// Rows of one column share the category slice; it is never mutated.
		categories := spec.Categories()
		for row := range table.Rows {
			value := table.Cell(row, col)
			if types.IsMissing(value) {
				continue
			}
			rows = append(rows, types.TidyRow{
				Year:       table.Cell(row, yearIndex),
				Categories: categories,
				Value:      value,
			})
		}
	}

	return rows, nil
}

// ToTable materialises tidy rows as a flat table: the year column first, then
// the union of category names in first-seen order, then the value column.
// Categories a row does not carry are left blank.
func ToTable(rows []types.TidyRow, convention config.Convention) *types.Table {
	var names []string
	positions := make(map[string]int)
	for _, row := range rows {
		for _, category := range row.Categories {
			if _, ok := positions[category.Name]; !ok {
				positions[category.Name] = len(names) + 1
				names = append(names, category.Name)
			}
		}
	}

	columns := make([]string, 0, len(names)+2)
	columns = append(columns, convention.Year)
	columns = append(columns, names...)
	columns = append(columns, convention.Value)

	table := &types.Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
	}
	valueIndex := len(columns) - 1
	for _, row := range rows {
		cells := make([]string, len(columns))
		cells[0] = row.Year
		for _, category := range row.Categories {
			cells[positions[category.Name]] = category.Value
		}
		cells[valueIndex] = row.Value
		table.Rows = append(table.Rows, cells)
	}

	return table
}
