package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/converter"
	"github.com/ginjaninja78/indicator-tidy/internal/logging"
	"github.com/ginjaninja78/indicator-tidy/pkg/utils"
)

func testApplication(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC))
	siteConfig := config.Default()
	siteConfig.SummaryDir = "logs"

	previous, previousVerbose := app, verbose
	app = &application{
		fs:     fsys,
		config: siteConfig,
		logger: logging.Nop(),
		clock:  clock,
		files:  utils.NewFileManager(fsys, clock),
	}
	verbose = true
	t.Cleanup(func() {
		app, verbose = previous, previousVerbose
	})
	return fsys
}

func TestReport(t *testing.T) {
	fsys := testApplication(t)
	var out bytes.Buffer

	err := report(&out, app.files.NewSummary("tidy"), []converter.Result{
		{FilePath: "data/wide/indicator_1-1-1.csv", OutputFile: "data/tidy/indicator_1-1-1.csv", Success: true},
		{FilePath: "data/wide/notes.csv", Skipped: true, SkipReason: "columns do not follow the naming convention"},
		{FilePath: "data/wide/indicator_2-1-1.csv", Error: errors.New("failed to parse CSV")},
	})

	assert.EqualError(t, err, "1 of 3 file(s) failed")

	output := out.String()
	assert.Contains(t, output, "indicator_1-1-1.csv -> data/tidy/indicator_1-1-1.csv")
	assert.Contains(t, output, "notes.csv: columns do not follow the naming convention")
	assert.Contains(t, output, "indicator_2-1-1.csv: failed to parse CSV")
	assert.Contains(t, output, "Successful:      1")
	assert.Contains(t, output, "Skipped:         1")
	assert.Contains(t, output, "Errors:          1")
	assert.Contains(t, output, "Summary written to logs/tidy_summary_20261019_083000.txt")

	exists, err := afero.Exists(fsys, "logs/tidy_summary_20261019_083000.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReport_SkipsAreNotFailures(t *testing.T) {
	testApplication(t)
	var out bytes.Buffer

	err := report(&out, app.files.NewSummary("sdmx"), []converter.Result{
		{FilePath: "data/tidy/indicator_1-1-1.csv", Success: true},
		{FilePath: "data/tidy/summary.csv", Skipped: true},
	})

	assert.NoError(t, err)
}

func TestRunBatch(t *testing.T) {
	testApplication(t)
	var out bytes.Buffer

	task := func(path string) converter.Result {
		if path == "bad.csv" {
			return converter.Result{FilePath: path, Error: errors.New("broken")}
		}
		return converter.Result{FilePath: path, Success: true, OutputFile: "out/" + path}
	}

	err := runBatch(context.Background(), &out, "tidy", []string{"a.csv", "bad.csv"}, task)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Processing 2 file(s)...")
	assert.Contains(t, out.String(), "bad.csv: broken")

	out.Reset()
	assert.NoError(t, runBatch(context.Background(), &out, "tidy", nil, task))
	assert.Equal(t, "No files found.\n", out.String())
}
