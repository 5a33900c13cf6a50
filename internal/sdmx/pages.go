package sdmx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PageLayout is the site layout that renders a document as SDMX-ML.
const PageLayout = "sdmx_generic"

// Page returns the page stub that publishes the XML rendering of an
// indicator at /api/sdmx/<id>.xml.
func Page(indicatorID string) string {
	lines := []string{
		"---",
		"permalink: /api/sdmx/" + indicatorID + ".xml",
		"layout: " + PageLayout,
		"indicator: \"" + strings.ReplaceAll(indicatorID, "-", ".") + "\"",
		"---",
	}
	return strings.Join(lines, "\n")
}

// WritePage writes the page stub of an indicator to <dir>/<id>.md.
func WritePage(fsys afero.Fs, dir, indicatorID string) (string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, indicatorID+".md")
	if err := afero.WriteFile(fsys, path, []byte(Page(indicatorID)), 0644); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}
	return path, nil
}
