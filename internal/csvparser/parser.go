// =============================================================================
// Indicator Tidy - CSV Parser Module
// =============================================================================
//
// This module reads and writes the delimited indicator files. Every cell is
// kept as a string: values are opaque to the pipeline, and years are only
// compared for equality or sorted.
//
// FEATURES:
//   - Configurable delimiter via CSVSettings
//   - UTF-8 byte order mark stripped on read, optional on write
//   - Short rows allowed (missing trailing cells read as missing values)
//   - All file access through afero, so the whole pipeline runs in memory
//     in tests
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file into a table.
//
// PARAMETERS:
//   - fs: The filesystem to read from.
//   - filePath: The path to the file.
//   - settings: The CSV settings from the site configuration.
//
// RETURNS:
//   - The parsed table; Source is set to filePath.
//   - An error if the file cannot be read or parsed.
func Parse(fs afero.Fs, filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Read(file, settings)
	if err != nil {
		return nil, err
	}
	table.Source = filePath
	return table, nil
}

// Read parses delimited data from a reader. The first record is the header
// row; data rows follow immediately.
func Read(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	reader := bufio.NewReader(r)

	// Skip a UTF-8 byte order mark.
	if prefix, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := reader.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	table := &types.Table{
		Columns: cleanHeaders(allRows[0]),
		Rows:    make([][]string, 0, len(allRows)-1),
	}
	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = delimiter(settings)

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true
}

// delimiter resolves the configured delimiter, handling the common aliases.
func delimiter(settings config.CSVSettings) rune {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(settings.Delimiter) > 0 {
			return rune(settings.Delimiter[0])
		}
		return ','
	}
}

// cleanHeaders trims header whitespace and names empty headers by position.
// Named headers are kept verbatim otherwise: category names and values are
// case-sensitive.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITER FUNCTIONS
// =============================================================================

// Write writes a table to a file, creating the parent directory.
// The file is written to a temporary sibling first and renamed into place,
// so a failed write never leaves a truncated output behind.
func Write(fs afero.Fs, filePath string, table *types.Table, settings config.CSVSettings) error {
	if err := fs.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buffer bytes.Buffer
	if err := Encode(&buffer, table, settings); err != nil {
		return err
	}

	tempPath := filePath + ".tmp"
	if err := afero.WriteFile(fs, tempPath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.Rename(tempPath, filePath); err != nil {
		_ = fs.Remove(tempPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// Encode writes a table as delimited text: the header row, then every row
// padded to the column count.
func Encode(w io.Writer, table *types.Table, settings config.CSVSettings) error {
	if settings.WriteBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = delimiter(settings)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i := range table.Rows {
		for col := range record {
			record[col] = table.Cell(i, col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
