// Package disaggregation folds sibling wide tables into a primary wide table.
//
// Finer-grained breakdowns of an indicator are stored below the subnational
// root, one folder level per category, under the primary file's name:
//
//	data/subnational/state/ohio/indicator_1-2-1.csv
//
// The folders below the root name a category assignment (state:ohio) that
// is attached to every column of the sibling before it is merged.
package disaggregation

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

// DefaultDepth is the number of folders between the root and a sibling file.
const DefaultDepth = 2

// Sibling is a wide table found at a location below the subnational root.
type Sibling struct {
	// Location is the slash-separated folder path below the root,
	// e.g. "state/ohio".
	Location string
	Path     string
	Table    *types.Table
}

// ReadFunc reads a table from a path of the discoverer's filesystem.
type ReadFunc func(fsys afero.Fs, path string) (*types.Table, error)

// Discoverer finds sibling tables of a primary file.
type Discoverer struct {
	Fs   afero.Fs
	Root string

	// Depth is the exact number of folders between Root and a sibling.
	// Zero means DefaultDepth.
	Depth int

	Read ReadFunc
}

// Discover returns the siblings of the named file, sorted by location.
// A missing root yields no siblings.
func (d *Discoverer) Discover(fileName string) ([]Sibling, error) {
	depth := d.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	if d.Read == nil {
		return nil, fmt.Errorf("discoverer has no reader")
	}

	if _, err := d.Fs.Stat(d.Root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", d.Root, err)
	}

	var paths []string
	err := afero.Walk(d.Fs, d.Root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")

		if info.IsDir() {
			// Nothing below the configured depth can match.
			if rel != "." && len(segments) > depth {
				return filepath.SkipDir
			}
			return nil
		}
		if len(segments) == depth+1 && info.Name() == fileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.Root, err)
	}

	siblings := make([]Sibling, 0, len(paths))
	for _, path := range paths {
		rel, _ := filepath.Rel(d.Root, filepath.Dir(path))

		table, err := d.Read(d.Fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sibling %s: %w", path, err)
		}
		siblings = append(siblings, Sibling{
			Location: filepath.ToSlash(rel),
			Path:     path,
			Table:    table,
		})
	}

	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].Location < siblings[j].Location
	})

	return siblings, nil
}

// LocationCategory turns a location into header notation. Folders pair up
// as category and value: "state/ohio" becomes "state:ohio", and
// "state/ohio/county/franklin" becomes "state:ohio|county:franklin".
func LocationCategory(location string) (string, error) {
	segments := strings.Split(strings.Trim(location, "/"), "/")
	if len(segments)%2 != 0 {
		return "", fmt.Errorf("location %q does not pair folders as category/value", location)
	}

	pairs := make([]string, 0, len(segments)/2)
	for i := 0; i < len(segments); i += 2 {
		if segments[i] == "" || segments[i+1] == "" {
			return "", fmt.Errorf("location %q has an empty folder name", location)
		}
		pairs = append(pairs, types.Category{Name: segments[i], Value: segments[i+1]}.String())
	}

	return strings.Join(pairs, "|"), nil
}
