// Package metadata reads the YAML front matter of indicator pages.
//
// An indicator page (e.g. _indicators/1-2-1.md) starts with a block of YAML
// between two "---" lines; the rest of the page is ignored.
package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// FrontMatter is the parsed front matter of an indicator page.
type FrontMatter map[string]any

// PagePath returns the page path of an indicator.
func PagePath(pagesDir, indicatorID string) string {
	return filepath.Join(pagesDir, indicatorID+".md")
}

// Load reads the front matter of an indicator page.
func Load(fsys afero.Fs, pagesDir, indicatorID string) (FrontMatter, error) {
	path := PagePath(pagesDir, indicatorID)
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read indicator page: %w", err)
	}

	meta, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// Parse extracts and decodes the front matter block of a page.
func Parse(page []byte) (FrontMatter, error) {
	block, err := extract(page)
	if err != nil {
		return nil, err
	}

	meta := FrontMatter{}
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return meta, nil
}

func extract(page []byte) ([]byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(page))
	scanner.Buffer(make([]byte, 0, 64*1024), len(page)+1)

	var block bytes.Buffer
	opened := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == delimiter {
			if opened {
				return block.Bytes(), nil
			}
			opened = true
			continue
		}
		if !opened {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("page does not start with front matter")
		}
		block.WriteString(line)
		block.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !opened {
		return nil, fmt.Errorf("page has no front matter")
	}
	return nil, fmt.Errorf("front matter is not closed")
}

// String returns a scalar value as text; missing keys and non-scalar
// values read as "". Dates are formatted as 2006-01-02.
func (m FrontMatter) String(key string) string {
	switch value := m[key].(type) {
	case nil:
		return ""
	case string:
		return value
	case time.Time:
		return value.Format(time.DateOnly)
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(value)
	default:
		return ""
	}
}

// StringMap returns a mapping value with every entry rendered as text.
// Missing keys and non-mapping values read as nil.
func (m FrontMatter) StringMap(key string) map[string]string {
	var nested FrontMatter
	switch value := m[key].(type) {
	case FrontMatter:
		// yaml.v3 decodes nested mappings into the named map type.
		nested = value
	case map[string]any:
		nested = FrontMatter(value)
	default:
		return nil
	}

	values := make(map[string]string, len(nested))
	for name := range nested {
		values[name] = nested.String(name)
	}
	return values
}
