// =============================================================================
// Indicator Tidy - Header Lint
// =============================================================================
//
// This module checks wide indicator files against the column naming
// convention before they are reshaped. It never looks at cell values: the
// pipeline does no schema validation beyond the headers.
//
// FINDINGS:
//   Errors (the file will be skipped by the reshape):
//     - missing-year:  no column named like the year column
//     - missing-total: no total column and no "<total>|" column
//   Warnings (the file is reshaped, some columns are left out):
//     - malformed-column: partially matches the convention, e.g. "Sex:"
//     - ignored-column:   unrelated to the convention, e.g. "Notes"
//     - duplicate-column: the same header appears more than once
//
// =============================================================================

package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/grammar"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleMissingYear     = "missing-year"
	RuleMissingTotal    = "missing-total"
	RuleMalformedColumn = "malformed-column"
	RuleIgnoredColumn   = "ignored-column"
	RuleDuplicateColumn = "duplicate-column"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity indicates the severity of the finding.
	// "error" = the file does not follow the convention and is skipped
	// "warning" = the file is processed, some columns are left out
	Severity string

	// File is the file the finding belongs to.
	File string

	// Column is the header the finding is about; empty for file-level rules.
	Column string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.File, e.Message)
	}
	return fmt.Sprintf("[%s] %s, Column '%s': %s", strings.ToUpper(e.Severity), e.File, e.Column, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the findings for one file.
type ValidationResult struct {
	// File is the checked file.
	File string

	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all findings (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// ColumnsMatched is the number of columns that take part in the reshape.
	ColumnsMatched int
}

func (r *ValidationResult) add(severity, column, rule, message string) {
	r.Errors = append(r.Errors, &ValidationError{
		Severity: severity,
		File:     r.File,
		Column:   column,
		Rule:     rule,
		Message:  message,
	})
	if severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate checks the headers of a wide table.
//
// PARAMETERS:
//   - table: The wide table; only its columns are inspected.
//   - convention: The column naming convention.
//
// RETURNS:
//   - The findings, in column order after the file-level errors.
func Validate(table *types.Table, convention config.Convention) *ValidationResult {
	result := &ValidationResult{File: filepath.Base(table.Source)}

	if !table.HasColumn(convention.Year) {
		result.add(SeverityError, "", RuleMissingYear,
			fmt.Sprintf("no %q column", convention.Year))
	}
	if !hasTotal(table, convention) {
		result.add(SeverityError, "", RuleMissingTotal,
			fmt.Sprintf("no %q column and no column starting with %q", convention.Total, convention.Total+"|"))
	}

	seen := make(map[string]bool, len(table.Columns))
	for _, spec := range grammar.ParseAll(table.Columns, convention) {
		header := spec.Header

		if seen[header] {
			result.add(SeverityWarning, header, RuleDuplicateColumn, "header appears more than once")
		}
		seen[header] = true

		switch {
		case header == convention.Year:
			continue
		case spec.Matched():
			result.ColumnsMatched++
		case spec.Malformed():
			result.add(SeverityWarning, header, RuleMalformedColumn, spec.Problem)
		default:
			result.add(SeverityWarning, header, RuleIgnoredColumn, "not part of the naming convention")
		}
	}

	result.IsValid = result.ErrorCount == 0
	return result
}

// hasTotal reports whether the total column, or a total column broken out by
// other segments, is present.
func hasTotal(table *types.Table, convention config.Convention) bool {
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

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes findings to a log file, with a timestamped header.
//
// PARAMETERS:
//   - fsys: The filesystem to write to.
//   - errors: The findings to write.
//   - filePath: The path to the output file.
//   - now: The report time.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(fsys afero.Fs, errors []*ValidationError, filePath string, now time.Time) error {
	if err := fsys.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Header lint report - %s\n\n", now.Format(time.RFC3339)))
	builder.WriteString(FormatErrors(errors))

	if err := afero.WriteFile(fsys, filePath, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
