// =============================================================================
// Indicator Tidy - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the commands, including:
//   - File discovery in the data folders
//   - Directory management
//   - Processing summary generation
//
// Every operation goes through an afero filesystem, so the commands run
// against the OS filesystem and the tests against an in-memory one.
//
// DISCOVERY:
//   Only the top level of a folder is scanned. Subfolders of the wide folder
//   belong to other pipelines (the disaggregation siblings live there in
//   some layouts) and must not be picked up as indicator files.
//
// =============================================================================

package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the commands.
type FileManager struct {
	fs    afero.Fs
	clock clockwork.Clock
}

// NewFileManager creates a new FileManager. A nil clock uses the real clock.
func NewFileManager(fs afero.Fs, clock clockwork.Clock) *FileManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FileManager{fs: fs, clock: clock}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all given directories if they don't exist.
// Empty entries are ignored.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := fm.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverFiles scans a directory for files matching the pattern.
//
// PARAMETERS:
//   - dir: The directory to scan. Subdirectories are not entered.
//   - pattern: A glob pattern matched against file names
//     (e.g., "indicator*.csv"). If empty, defaults to "*.csv".
//
// RETURNS:
//   - The matching file paths, sorted.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}

	entries, err := afero.ReadDir(fm.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		if matched {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID            string
	Command          string
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	SkippedFiles     int
	FailedFiles      int
	TotalRowsRead    int
	TotalRowsWritten int
	ProcessedFiles   []ProcessedFileInfo
	SkippedList      []SkippedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	RowsRead    int
	RowsWritten int
	ProcessTime time.Duration
}

// SkippedFileInfo contains information about a skipped file.
type SkippedFileInfo struct {
	InputFile string
	Reason    string
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// NewSummary starts a summary for a run of the named command.
func (fm *FileManager) NewSummary(command string) *ProcessingSummary {
	return &ProcessingSummary{
		RunID:     uuid.New().String(),
		Command:   command,
		StartTime: fm.clock.Now(),
	}
}

// AddProcessed records a successfully processed file.
func (s *ProcessingSummary) AddProcessed(info ProcessedFileInfo) {
	s.TotalFiles++
	s.SuccessfulFiles++
	s.TotalRowsRead += info.RowsRead
	s.TotalRowsWritten += info.RowsWritten
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// AddSkipped records a skipped file.
func (s *ProcessingSummary) AddSkipped(inputFile, reason string) {
	s.TotalFiles++
	s.SkippedFiles++
	s.SkippedList = append(s.SkippedList, SkippedFileInfo{InputFile: inputFile, Reason: reason})
}

// AddFailed records a failed file.
func (s *ProcessingSummary) AddFailed(inputFile string, err error) {
	s.TotalFiles++
	s.FailedFiles++
	s.FailedFilesList = append(s.FailedFilesList, FailedFileInfo{InputFile: inputFile, ErrorMessage: err.Error()})
}

// WriteSummaryLog writes a processing summary to a log file. The end time is
// taken from the clock when it is not set.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary *ProcessingSummary, outputDir string) (string, error) {
	if summary.EndTime.IsZero() {
		summary.EndTime = fm.clock.Now()
	}

	if err := fm.fs.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	// Generate summary file name.
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryFileName := fmt.Sprintf("%s_summary_%s.txt", summary.Command, timestamp)
	summaryPath := filepath.Join(outputDir, summaryFileName)

	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)
	rule := strings.Repeat("=", 80) + "\n"
	section := strings.Repeat("-", 80) + "\n"

	// Write header.
	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Indicator Tidy - Processing Summary (%s)\n"+
		rule+"\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  Skipped:            %d\n"+
		"  Failed:             %d\n"+
		"  Total Rows Read:    %d\n"+
		"  Total Rows Written: %d\n\n",
		summary.Command,
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.SkippedFiles,
		summary.FailedFiles,
		summary.TotalRowsRead,
		summary.TotalRowsWritten)

	// Write successful files.
	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString(section)
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(writer, "  Rows:         %d read, %d written\n", pf.RowsRead, pf.RowsWritten)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	// Write skipped files.
	if len(summary.SkippedList) > 0 {
		writer.WriteString("Skipped Files:\n")
		writer.WriteString(section)
		for _, sf := range summary.SkippedList {
			fmt.Fprintf(writer, "  File:   %s\n", sf.InputFile)
			fmt.Fprintf(writer, "  Reason: %s\n\n", sf.Reason)
		}
	}

	// Write failed files.
	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString(section)
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	// Write footer.
	writer.WriteString(rule)
	writer.WriteString("End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	if err := afero.WriteFile(fm.fs, summaryPath, buffer.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return summaryPath, nil
}
