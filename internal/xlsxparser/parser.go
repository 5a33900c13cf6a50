// =============================================================================
// Indicator Tidy - XLSX Source Reader
// =============================================================================
//
// This module reads import sources published as Excel workbooks. Statistical
// agencies rarely publish a clean table: there are title rows above the
// header, notes below the data, and several sheets per workbook. The reader
// turns one sheet into a plain table of strings.
//
// SHEET LAYOUT (example):
//
//   | Row | Column A              | Column B | Column C |
//   |-----|-----------------------|----------|----------|
//   | 1   | Table 4. Poverty rate |          |          |
//   | 2   | State                 | Year     | Percent  |  <- HeaderRow: 1
//   | 3   | Alabama               | 2019     | 15.5     |
//   | 4   | Alaska                | 2019     | 10.1     |
//   | 5   | Source: ...           |          |          |  <- SkipFooter: 1
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// =============================================================================
// SHEET OPTIONS
// =============================================================================

// SheetOptions selects the part of a workbook that holds the table.
type SheetOptions struct {
	// Sheet is the sheet name. Empty selects the first sheet.
	Sheet string

	// HeaderRow is the 0-based row containing the column headers.
	// Default: 0 (Row 1)
	HeaderRow int

	// SkipRows is the number of rows to skip after the header row
	// (sub-headers, unit rows).
	SkipRows int

	// SkipFooter is the number of trailing rows to drop (notes, sources).
	// Trailing empty rows are dropped before counting.
	SkipFooter int
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadSheet reads one sheet of a workbook into a table.
//
// PARAMETERS:
//   - r: The workbook contents.
//   - options: The sheet layout.
//
// RETURNS:
//   - The table; header cells are trimmed, data cells are kept as
//     formatted by the workbook.
//   - An error if the workbook cannot be opened or the sheet is missing.
func ReadSheet(r io.Reader, options SheetOptions) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := options.Sheet
	if sheetName == "" {
		// Get the first sheet name.
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	} else if index, err := f.GetSheetIndex(sheetName); err != nil || index < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return buildTable(rows, options)
}

// SheetNames lists the sheets of a workbook in order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// buildTable applies the sheet layout to the raw rows.
func buildTable(rows [][]string, options SheetOptions) (*types.Table, error) {
	if options.HeaderRow < 0 || options.SkipRows < 0 || options.SkipFooter < 0 {
		return nil, fmt.Errorf("header row, skip rows and skip footer must not be negative")
	}
	if options.HeaderRow >= len(rows) {
		return nil, fmt.Errorf("header row %d is beyond the last row (%d rows)", options.HeaderRow+1, len(rows))
	}

	// GetRows omits trailing empty rows in most workbooks, but not all.
	end := len(rows)
	for end > options.HeaderRow+1 && isRowEmpty(rows[end-1]) {
		end--
	}
	end -= options.SkipFooter

	first := options.HeaderRow + 1 + options.SkipRows

	// GetRows also omits trailing empty cells, so a blank last header
	// shortens the header row. The widest row sets the column count.
	headers := rows[options.HeaderRow]
	width := len(headers)
	for i := first; i < end; i++ {
		width = max(width, len(rows[i]))
	}

	columns := make([]string, width)
	for i := range columns {
		header := ""
		if i < len(headers) {
			header = strings.TrimSpace(headers[i])
		}
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		columns[i] = header
	}

	table := &types.Table{Columns: columns}
	for i := first; i < end; i++ {
		row := rows[i]

		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
