// =============================================================================
// ADV Filing Extractor - File Manager
// =============================================================================
//
// This module provides file-system utilities shared across the application:
// directory management, output file naming, and the run summary log.
//
// Corpus files are never moved or modified - every run re-scans the full
// corpus, so there is no archival step.
//
// =============================================================================

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates each directory if it does not already exist.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName builds an output file name from a format string
// with placeholders.
//
// PLACEHOLDERS:
//   {firm}      - Firm name (sanitized for file systems)
//   {sec_id}    - SEC ID
//   {crd_id}    - CRD ID
//   {year}      - Most recent fiscal year in the output
//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//   {uuid}      - A random UUID
//
// Example format: "adv_data_{firm}_{sec_id}_{crd_id}_{year}.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	fileName := format

	replacements := map[string]string{
		"{timestamp}": time.Now().Format("20060102_150405"),
		"{uuid}":      uuid.New().String(),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = SanitizeFileName(value)
	}

	for placeholder, value := range replacements {
		fileName = strings.ReplaceAll(fileName, placeholder, value)
	}

	return fileName
}

// SanitizeFileName replaces characters that are unsafe in file names.
func SanitizeFileName(s string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "-",
		" ", "_",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

// =============================================================================
// RUN SUMMARY LOG
// =============================================================================

// RunSummary describes the outcome of one extraction run. It is written to
// the output directory as JSON so operators can audit what a run produced
// without re-reading console output.
type RunSummary struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// CorpusFiles is the number of snapshot files discovered.
	CorpusFiles int `json:"corpus_files"`

	// Firms breaks down per-firm outcomes.
	Firms []FirmSummary `json:"firms"`
}

// FirmSummary describes one firm's outcome within a run.
type FirmSummary struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	OutputFile string `json:"output_file,omitempty"`
	Years      int    `json:"years"`
	Duplicates int    `json:"duplicate_filings"`
	Error      string `json:"error,omitempty"`
}

// WriteRunSummary writes the summary log to the output directory and
// returns the path written.
func WriteRunSummary(summary RunSummary, outputDir string) (string, error) {
	if summary.RunID == "" {
		summary.RunID = uuid.New().String()
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.json",
		summary.StartedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}

	return path, nil
}
