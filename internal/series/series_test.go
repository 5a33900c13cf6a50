package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/reshape"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

func cat(name, value string) types.Category {
	return types.Category{Name: name, Value: value}
}

func TestKeyOf(t *testing.T) {
	a := KeyOf([]types.Category{cat("Sex", "Female"), cat("Age", "0-14")})
	b := KeyOf([]types.Category{cat("Age", "0-14"), cat("Sex", "Female")})
	c := KeyOf([]types.Category{cat("Sex", "Female")})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, Key(""), KeyOf(nil))
}

func TestKeyOf_NoSeparatorCollisions(t *testing.T) {
	a := KeyOf([]types.Category{cat("a", "b,\"c\"=d")})
	b := KeyOf([]types.Category{cat("a", "b"), cat("c", "d")})

	assert.NotEqual(t, a, b)
}

func TestKeyOf_IgnoresMissingValues(t *testing.T) {
	assert.Equal(t,
		KeyOf([]types.Category{cat("Sex", "Male")}),
		KeyOf([]types.Category{cat("Sex", "Male"), cat("Age", "NaN")}),
	)
}

func TestGroup(t *testing.T) {
	rows := []types.TidyRow{
		{Year: "2010", Value: "100"},
		{Year: "2010", Categories: []types.Category{cat("Sex", "Female")}, Value: "40"},
		{Year: "2011", Value: "101"},
		{Year: "2011", Categories: []types.Category{cat("Sex", "Female")}, Value: "41"},
		{Year: "2011", Categories: []types.Category{cat("Sex", "Male")}, Value: ""},
		{Year: "2010", Value: "99"},
	}
	fixed := map[string]string{"FREQ": "A", "Sex": "ignored"}

	set := Group(rows, fixed)
	require.Equal(t, 2, set.Len())

	total := set.Series()[0]
	assert.Equal(t, Key(""), total.Key)
	assert.Empty(t, total.Dimensions)
	assert.Equal(t, map[string]string{"FREQ": "A", "Sex": "ignored"}, total.Attributes)
	assert.Equal(t, []Observation{
		{Year: "2010", Value: "100"},
		{Year: "2011", Value: "101"},
		{Year: "2010", Value: "99"},
	}, total.Observations)

	female := set.Series()[1]
	assert.Equal(t, []types.Category{cat("Sex", "Female")}, female.Dimensions)
	assert.Equal(t, map[string]string{"FREQ": "A", "Sex": "Female"}, female.Attributes)
	assert.Len(t, female.Observations, 2)

	got, ok := set.Get(KeyOf([]types.Category{cat("Sex", "Female")}))
	require.True(t, ok)
	assert.Same(t, female, got)
}

func TestGroup_OrderInsensitiveSets(t *testing.T) {
	rows := []types.TidyRow{
		{Year: "2010", Categories: []types.Category{cat("Sex", "Female"), cat("Age", "0-14")}, Value: "1"},
		{Year: "2011", Categories: []types.Category{cat("Age", "0-14"), cat("Sex", "Female")}, Value: "2"},
	}

	set := Group(rows, nil)
	require.Equal(t, 1, set.Len())

	series := set.Series()[0]
	assert.Equal(t, []types.Category{cat("Age", "0-14"), cat("Sex", "Female")}, series.Dimensions)
	assert.Len(t, series.Observations, 2)
}

func TestGroup_SeriesCountEqualsDistinctSets(t *testing.T) {
	table := &types.Table{
		Columns: []string{"Year", "All", "Sex:Female", "Sex:Male", "Sex:Female|Age:0-14"},
		Rows: [][]string{
			{"2010", "1", "2", "3", "4"},
			{"2011", "5", "", "7", "8"},
		},
	}

	rows, err := reshape.Reshape(table, config.DefaultConvention())
	require.NoError(t, err)

	set := Group(rows, nil)
	assert.Equal(t, 4, set.Len())

	total := 0
	for _, series := range set.Series() {
		total += len(series.Observations)
	}
	assert.Equal(t, len(rows), total)
}

func TestRoundTrip_ReflattenReproducesWideValues(t *testing.T) {
	convention := config.DefaultConvention()
	table := &types.Table{
		Columns: []string{"Year", "All", "Sex:Female", "Sex:Female|Age:0-14"},
		Rows: [][]string{
			{"2010", "10", "4", "1"},
			{"2011", "11", "", "2"},
		},
	}

	rows, err := reshape.Reshape(table, convention)
	require.NoError(t, err)

	// Through the flat tidy file and back.
	flat := reshape.ToTable(rows, convention)
	set := Group(FromTable(flat, convention.Year, convention.Value), nil)

	columnKeys := map[string]Key{
		"All":                 KeyOf(nil),
		"Sex:Female":          KeyOf([]types.Category{cat("Sex", "Female")}),
		"Sex:Female|Age:0-14": KeyOf([]types.Category{cat("Sex", "Female"), cat("Age", "0-14")}),
	}
	for col, column := range table.Columns[1:] {
		series, ok := set.Get(columnKeys[column])
		require.True(t, ok, column)

		values := make(map[string]string)
		for _, observation := range series.Observations {
			values[observation.Year] = observation.Value
		}
		for r, row := range table.Rows {
			expected := table.Cell(r, col+1)
			if types.IsMissing(expected) {
				assert.NotContains(t, values, row[0])
				continue
			}
			assert.Equal(t, expected, values[row[0]], column)
		}
	}
}

func TestFromTable(t *testing.T) {
	table := &types.Table{
		Columns: []string{"Year", "Sex", "Age", "Value"},
		Rows: [][]string{
			{"2010", "", "", "1"},
			{"2010", "Female", "", "2"},
		},
	}

	rows := FromTable(table, "Year", "Value")

	assert.Equal(t, []types.TidyRow{
		{Year: "2010", Value: "1"},
		{Year: "2010", Categories: []types.Category{cat("Sex", "Female")}, Value: "2"},
	}, rows)
}
