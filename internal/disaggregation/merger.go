package disaggregation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// Merge returns a copy of primary with the columns of every sibling renamed
// to carry the sibling's location category and outer-joined on the year.
//
// Renaming, for a sibling at state/ohio:
//
//	All          -> state:ohio
//	All|Unit:m   -> state:ohio|Unit:m
//	Sex:Female   -> state:ohio|Sex:Female
//
// The k-th sibling row of a year fills the k-th primary row of that year;
// sibling rows without a counterpart are appended. A renamed column that
// already exists only fills its blank cells. After merging, rows are
// stably sorted by year.
func Merge(primary *types.Table, siblings []Sibling, convention config.Convention) (*types.Table, error) {
	merged := primary.Clone()
	if len(siblings) == 0 {
		return merged, nil
	}

	yearIndex := merged.ColumnIndex(convention.Year)
	if yearIndex < 0 {
		return nil, fmt.Errorf("primary table has no %q column", convention.Year)
	}

	for _, sibling := range siblings {
		if err := mergeSibling(merged, yearIndex, sibling, convention); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(merged.Rows, func(i, j int) bool {
		return yearLess(merged.Rows[i][yearIndex], merged.Rows[j][yearIndex])
	})

	return merged, nil
}

func mergeSibling(merged *types.Table, yearIndex int, sibling Sibling, convention config.Convention) error {
	table := sibling.Table
	siblingYear := table.ColumnIndex(convention.Year)
	if siblingYear < 0 {
		return fmt.Errorf("sibling %s has no %q column", sibling.Location, convention.Year)
	}

	location, err := LocationCategory(sibling.Location)
	if err != nil {
		return err
	}

	// Sibling column position -> merged column position.
	targets := make(map[int]int, len(table.Columns))
	for col, column := range table.Columns {
		if col == siblingYear {
			continue
		}
		name := renameColumn(column, location, convention)
		index := merged.ColumnIndex(name)
		if index < 0 {
			merged.Columns = append(merged.Columns, name)
			index = len(merged.Columns) - 1
		}
		targets[col] = index
	}
	padRows(merged)

	byYear := make(map[string][]int, len(merged.Rows))
	for i, row := range merged.Rows {
		byYear[row[yearIndex]] = append(byYear[row[yearIndex]], i)
	}

	seen := make(map[string]int, len(table.Rows))
	for r := range table.Rows {
		year := table.Cell(r, siblingYear)
		k := seen[year]
		seen[year]++

		var target []string
		if k < len(byYear[year]) {
			target = merged.Rows[byYear[year][k]]
		} else {
			target = make([]string, len(merged.Columns))
			target[yearIndex] = year
			merged.Rows = append(merged.Rows, target)
			byYear[year] = append(byYear[year], len(merged.Rows)-1)
		}

		for col, index := range targets {
			if strings.TrimSpace(target[index]) == "" {
				target[index] = table.Cell(r, col)
			}
		}
	}

	return nil
}

// renameColumn attaches the location category to a sibling column.
func renameColumn(column, location string, convention config.Convention) string {
	switch {
	case column == convention.Total:
		return location
	case strings.HasPrefix(column, convention.Total+"|"):
		return location + strings.TrimPrefix(column, convention.Total)
	default:
		return location + "|" + column
	}
}

func padRows(table *types.Table) {
	for i, row := range table.Rows {
		if len(row) < len(table.Columns) {
			padded := make([]string, len(table.Columns))
			copy(padded, row)
			table.Rows[i] = padded
		}
	}
}

// yearLess orders integer years numerically and anything else lexically.
func yearLess(a, b string) bool {
	x, errA := strconv.Atoi(strings.TrimSpace(a))
	y, errB := strconv.Atoi(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}
