package validation

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

func rules(result *ValidationResult) []string {
	var names []string
	for _, err := range result.Errors {
		names = append(names, err.Rule)
	}
	return names
}

func TestValidate(t *testing.T) {
	convention := config.DefaultConvention()

	tests := []struct {
		name     string
		columns  []string
		valid    bool
		rules    []string
		matched  int
		warnings int
	}{
		{
			name:    "clean",
			columns: []string{"Year", "All", "Sex:Female", "Sex:Female|Age:0-14"},
			valid:   true,
			matched: 3,
		},
		{
			name:    "total with units",
			columns: []string{"Year", "All|Unit:m", "All|Unit:cm"},
			valid:   true,
			matched: 2,
		},
		{
			name:     "missing year",
			columns:  []string{"year", "All"},
			valid:    false,
			rules:    []string{RuleMissingYear, RuleIgnoredColumn},
			matched:  1,
			warnings: 1,
		},
		{
			name:    "missing total",
			columns: []string{"Year", "Sex:Male"},
			valid:   false,
			rules:   []string{RuleMissingTotal},
			matched: 1,
		},
		{
			name:     "warnings only",
			columns:  []string{"Year", "All", "Notes", "Sex:", "Sex:Male|Sex:Female", "All"},
			valid:    true,
			rules:    []string{RuleIgnoredColumn, RuleMalformedColumn, RuleMalformedColumn, RuleDuplicateColumn},
			matched:  2,
			warnings: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &types.Table{Columns: tt.columns, Source: "data/wide/indicator_1-1-1.csv"}

			result := Validate(table, convention)

			assert.Equal(t, tt.valid, result.IsValid)
			assert.Equal(t, tt.rules, rules(result))
			assert.Equal(t, tt.matched, result.ColumnsMatched)
			assert.Equal(t, tt.warnings, result.WarningCount)
			assert.Equal(t, "indicator_1-1-1.csv", result.File)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	fileLevel := &ValidationError{Severity: SeverityError, File: "a.csv", Message: "no \"Year\" column"}
	column := &ValidationError{Severity: SeverityWarning, File: "a.csv", Column: "Notes", Message: "ignored"}

	assert.Equal(t, `[ERROR] a.csv: no "Year" column`, fileLevel.Error())
	assert.Equal(t, `[WARNING] a.csv, Column 'Notes': ignored`, column.Error())
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	formatted := FormatErrors([]*ValidationError{
		{Severity: SeverityWarning, File: "a.csv", Column: "Notes", Message: "ignored"},
	})
	assert.Equal(t, "Validation completed with 1 finding(s):\n\n1. [WARNING] a.csv, Column 'Notes': ignored\n", formatted)
}

func TestWriteErrorLog(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	findings := []*ValidationError{{Severity: SeverityError, File: "a.csv", Message: "broken"}}

	require.NoError(t, WriteErrorLog(fsys, findings, "logs/lint.log", now))

	data, err := afero.ReadFile(fsys, "logs/lint.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Header lint report - 2026-10-19T08:30:00Z")
	assert.Contains(t, string(data), "1. [ERROR] a.csv: broken")
}
