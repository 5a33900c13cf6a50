package reshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

func wide(columns []string, rows ...[]string) *types.Table {
	return &types.Table{Columns: columns, Rows: rows}
}

func TestSuitable(t *testing.T) {
	convention := config.DefaultConvention()

	tests := []struct {
		name     string
		columns  []string
		expected bool
	}{
		{"year and total", []string{"Year", "All"}, true},
		{"year and total with unit", []string{"Year", "All|Unit:m"}, true},
		{"total not second", []string{"Sex:Male", "All", "Year"}, true},
		{"missing year", []string{"All", "Sex:Male"}, false},
		{"missing total", []string{"Year", "Sex:Male"}, false},
		{"lowercase year", []string{"year", "All"}, false},
		{"total prefix without pipe", []string{"Year", "All:Unit"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Suitable(wide(tt.columns), convention))
		})
	}
}

func TestReshape_NotApplicable(t *testing.T) {
	rows, err := Reshape(wide([]string{"Year", "Sex:Male"}, []string{"2010", "1"}), config.DefaultConvention())

	assert.ErrorIs(t, err, ErrNotApplicable)
	assert.Nil(t, rows)
}

func TestReshape_TotalAndPairs(t *testing.T) {
	table := wide(
		[]string{"Year", "All", "Sex:Female", "Sex:Male"},
		[]string{"2010", "100", "40", "60"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, []types.TidyRow{
		{Year: "2010", Categories: nil, Value: "100"},
		{Year: "2010", Categories: []types.Category{{Name: "Sex", Value: "Female"}}, Value: "40"},
		{Year: "2010", Categories: []types.Category{{Name: "Sex", Value: "Male"}}, Value: "60"},
	}, rows)
}

func TestReshape_TotalWithUnits(t *testing.T) {
	table := wide(
		[]string{"Year", "All|Unit:m", "All|Unit:cm"},
		[]string{"2010", "5", "500"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, []types.TidyRow{
		{Year: "2010", Categories: []types.Category{{Name: "Unit", Value: "m"}}, Value: "5"},
		{Year: "2010", Categories: []types.Category{{Name: "Unit", Value: "cm"}}, Value: "500"},
	}, rows)
	for _, row := range rows {
		_, ok := row.Category("All")
		assert.False(t, ok, "the total marker must not become a category")
	}
}

func TestReshape_CompositeKeepsAllCategories(t *testing.T) {
	table := wide(
		[]string{"Year", "All", "Sex:Female|Age:Under 18"},
		[]string{"2015", "10", "3"},
		[]string{"2016", "11", "4"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	for _, row := range rows[2:] {
		assert.Equal(t, []types.Category{
			{Name: "Sex", Value: "Female"},
			{Name: "Age", Value: "Under 18"},
		}, row.Categories)
	}
	assert.Equal(t, "2016", rows[3].Year)
	assert.Equal(t, "4", rows[3].Value)
}

func TestReshape_TotalOnly(t *testing.T) {
	table := wide(
		[]string{"Year", "All"},
		[]string{"2010", "1.5"},
		[]string{"2011", "2.5"},
		[]string{"2012", "3.5"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)
	require.Len(t, rows, len(table.Rows))

	for i, row := range rows {
		assert.Empty(t, row.Categories)
		assert.Equal(t, table.Rows[i][0], row.Year)
		assert.Equal(t, table.Rows[i][1], row.Value)
	}
}

func TestReshape_DropsMissingValues(t *testing.T) {
	table := wide(
		[]string{"Year", "All", "Sex:Female", "Sex:Male"},
		[]string{"2010", "100", "", "60"},
		[]string{"2011", "NaN", "41", "NA"},
		[]string{"2012", "102"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	assert.Len(t, rows, 4)
	for _, row := range rows {
		assert.False(t, types.IsMissing(row.Value))
	}
}

func TestReshape_IgnoresNonMatchingColumns(t *testing.T) {
	table := wide(
		[]string{"Year", "All", "Notes", "Sex:", "Sex:Male"},
		[]string{"2010", "100", "provisional", "5", "60"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[0].Value)
	assert.Equal(t, "60", rows[1].Value)
}

func TestReshape_ColumnThenRowOrder(t *testing.T) {
	table := wide(
		[]string{"Sex:Male", "Year", "All"},
		[]string{"6", "2010", "10"},
		[]string{"7", "2011", "12"},
	)

	rows, err := Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	var values []string
	for _, row := range rows {
		values = append(values, row.Value)
	}
	assert.Equal(t, []string{"6", "7", "10", "12"}, values)
}

func TestReshape_TidyInputIsNotReshapedAgain(t *testing.T) {
	convention := config.DefaultConvention()
	table := wide(
		[]string{"Year", "All", "Sex:Female"},
		[]string{"2010", "100", "40"},
	)

	rows, err := Reshape(table, convention)
	require.NoError(t, err)
	tidy := ToTable(rows, convention)

	again, err := Reshape(tidy, convention)
	assert.ErrorIs(t, err, ErrNotApplicable)
	assert.Nil(t, again)
}

func TestToTable(t *testing.T) {
	rows := []types.TidyRow{
		{Year: "2010", Value: "100"},
		{Year: "2010", Categories: []types.Category{{Name: "Sex", Value: "Female"}}, Value: "40"},
		{Year: "2010", Categories: []types.Category{{Name: "Age", Value: "0-14"}, {Name: "Sex", Value: "Male"}}, Value: "7"},
	}

	table := ToTable(rows, config.DefaultConvention())

	assert.Equal(t, []string{"Year", "Sex", "Age", "Value"}, table.Columns)
	assert.Equal(t, [][]string{
		{"2010", "", "", "100"},
		{"2010", "Female", "", "40"},
		{"2010", "Male", "0-14", "7"},
	}, table.Rows)
}

func TestToTable_Empty(t *testing.T) {
	table := ToTable(nil, config.DefaultConvention())

	assert.Equal(t, []string{"Year", "Value"}, table.Columns)
	assert.Empty(t, table.Rows)
}
