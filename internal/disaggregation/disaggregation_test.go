package disaggregation

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/csvparser"
	"github.com/ginjaninja78/indicator-tidy/internal/reshape"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

func readCSV(fsys afero.Fs, path string) (*types.Table, error) {
	return csvparser.Parse(fsys, path, config.CSVSettings{Delimiter: ","})
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
}

func TestDiscover(t *testing.T) {
	fsys := afero.NewMemMapFs()
	root := filepath.Join("data", "subnational")
	writeFile(t, fsys, filepath.Join(root, "state", "oregon", "indicator_1-2-1.csv"), "Year,All\n2010,2\n")
	writeFile(t, fsys, filepath.Join(root, "state", "ohio", "indicator_1-2-1.csv"), "Year,All\n2010,1\n")
	writeFile(t, fsys, filepath.Join(root, "state", "ohio", "indicator_3-3-1.csv"), "Year,All\n2010,9\n")
	writeFile(t, fsys, filepath.Join(root, "state", "indicator_1-2-1.csv"), "Year,All\n2010,9\n")
	writeFile(t, fsys, filepath.Join(root, "state", "ohio", "county", "franklin", "indicator_1-2-1.csv"), "Year,All\n2010,9\n")

	discoverer := &Discoverer{Fs: fsys, Root: root, Read: readCSV}
	siblings, err := discoverer.Discover("indicator_1-2-1.csv")
	require.NoError(t, err)

	require.Len(t, siblings, 2)
	assert.Equal(t, "state/ohio", siblings[0].Location)
	assert.Equal(t, "state/oregon", siblings[1].Location)
	assert.Equal(t, [][]string{{"2010", "1"}}, siblings[0].Table.Rows)
}

func TestDiscover_DeeperDepth(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join("sub", "state", "ohio", "indicator_1.csv"), "Year,All\n2010,1\n")
	writeFile(t, fsys, filepath.Join("sub", "state", "ohio", "county", "franklin", "indicator_1.csv"), "Year,All\n2010,2\n")

	discoverer := &Discoverer{Fs: fsys, Root: "sub", Depth: 4, Read: readCSV}
	siblings, err := discoverer.Discover("indicator_1.csv")
	require.NoError(t, err)

	require.Len(t, siblings, 1)
	assert.Equal(t, "state/ohio/county/franklin", siblings[0].Location)
}

func TestDiscover_MissingRoot(t *testing.T) {
	discoverer := &Discoverer{Fs: afero.NewMemMapFs(), Root: "data/subnational", Read: readCSV}

	siblings, err := discoverer.Discover("indicator_1-2-1.csv")
	require.NoError(t, err)
	assert.Empty(t, siblings)
}

func TestDiscover_ReadError(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join("sub", "state", "ohio", "indicator_1.csv"), "")

	discoverer := &Discoverer{Fs: fsys, Root: "sub", Read: readCSV}
	_, err := discoverer.Discover("indicator_1.csv")
	assert.Error(t, err)
}

func TestLocationCategory(t *testing.T) {
	tests := []struct {
		location string
		expected string
		wantErr  bool
	}{
		{"state/ohio", "state:ohio", false},
		{"state/ohio/county/franklin", "state:ohio|county:franklin", false},
		{"state", "", true},
		{"state//ohio/x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			category, err := LocationCategory(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestMerge_NoSiblings(t *testing.T) {
	primary := &types.Table{
		Columns: []string{"Year", "All"},
		Rows:    [][]string{{"2011", "2"}, {"2010", "1"}},
	}

	merged, err := Merge(primary, nil, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, primary.Columns, merged.Columns)
	assert.Equal(t, primary.Rows, merged.Rows)
}

func TestMerge_StateScenario(t *testing.T) {
	convention := config.DefaultConvention()
	primary := &types.Table{
		Columns: []string{"Year", "All"},
		Rows:    [][]string{{"2010", "100"}},
	}
	siblings := []Sibling{{
		Location: "state/ohio",
		Table: &types.Table{
			Columns: []string{"Year", "All"},
			Rows:    [][]string{{"2010", "7"}},
		},
	}}

	merged, err := Merge(primary, siblings, convention)
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "All", "state:ohio"}, merged.Columns)

	rows, err := reshape.Reshape(merged, convention)
	require.NoError(t, err)
	assert.Contains(t, rows, types.TidyRow{
		Year:       "2010",
		Categories: []types.Category{{Name: "state", Value: "ohio"}},
		Value:      "7",
	})
}

func TestMerge_RenamesAndJoins(t *testing.T) {
	primary := &types.Table{
		Columns: []string{"Year", "All", "Sex:Female"},
		Rows: [][]string{
			{"2011", "20", "9"},
			{"2010", "10", "4"},
		},
	}
	siblings := []Sibling{
		{
			Location: "state/ohio",
			Table: &types.Table{
				Columns: []string{"Year", "All|Unit:m", "Sex:Female"},
				Rows: [][]string{
					{"2009", "1", "0.5"},
					{"2010", "2", "1"},
				},
			},
		},
		{
			Location: "state/utah",
			Table: &types.Table{
				Columns: []string{"All", "Year"},
				Rows:    [][]string{{"3", "2011"}},
			},
		},
	}

	merged, err := Merge(primary, siblings, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Year", "All", "Sex:Female",
		"state:ohio|Unit:m", "state:ohio|Sex:Female",
		"state:utah",
	}, merged.Columns)
	assert.Equal(t, [][]string{
		{"2009", "", "", "1", "0.5", ""},
		{"2010", "10", "4", "2", "1", ""},
		{"2011", "20", "9", "", "", "3"},
	}, merged.Rows)

	// The primary is left untouched.
	assert.Len(t, primary.Columns, 3)
}

func TestMerge_RepeatedYears(t *testing.T) {
	primary := &types.Table{
		Columns: []string{"Year", "All"},
		Rows:    [][]string{{"2010", "1"}, {"2010", "2"}},
	}
	siblings := []Sibling{{
		Location: "state/ohio",
		Table: &types.Table{
			Columns: []string{"Year", "All"},
			Rows:    [][]string{{"2010", "a"}, {"2010", "b"}, {"2010", "c"}},
		},
	}}

	merged, err := Merge(primary, siblings, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"2010", "1", "a"},
		{"2010", "2", "b"},
		{"2010", "", "c"},
	}, merged.Rows)
}

func TestMerge_SharedColumnFillsBlanksOnly(t *testing.T) {
	primary := &types.Table{
		Columns: []string{"Year", "All", "state:ohio"},
		Rows:    [][]string{{"2010", "1", "kept"}, {"2011", "2", ""}},
	}
	siblings := []Sibling{{
		Location: "state/ohio",
		Table: &types.Table{
			Columns: []string{"Year", "All"},
			Rows:    [][]string{{"2010", "x"}, {"2011", "y"}},
		},
	}}

	merged, err := Merge(primary, siblings, config.DefaultConvention())
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "All", "state:ohio"}, merged.Columns)
	assert.Equal(t, [][]string{{"2010", "1", "kept"}, {"2011", "2", "y"}}, merged.Rows)
}

func TestMerge_SiblingWithoutYear(t *testing.T) {
	primary := &types.Table{Columns: []string{"Year", "All"}, Rows: [][]string{{"2010", "1"}}}
	siblings := []Sibling{{
		Location: "state/ohio",
		Table:    &types.Table{Columns: []string{"All"}, Rows: [][]string{{"1"}}},
	}}

	_, err := Merge(primary, siblings, config.DefaultConvention())
	assert.Error(t, err)
}

func TestYearLess(t *testing.T) {
	assert.True(t, yearLess("999", "2010"))
	assert.False(t, yearLess("2010", "2010"))
	assert.True(t, yearLess("2010-11", "2011-12"))
}
