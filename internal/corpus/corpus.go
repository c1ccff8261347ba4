// =============================================================================
// ADV Filing Extractor - Corpus Module
// =============================================================================
//
// This module loads the raw filing snapshot tables. It handles the quirks of
// the IA_ADV_Base_* CSV exports, including:
//   - Different delimiters (comma, pipe, tab)
//   - Legacy encodings (the base snapshots ship as latin1)
//   - Quoted fields with lazy quoting
//   - Rows with inconsistent column counts
//
// The corpus is read-only: tables are owned by this package's callers and
// never mutated after loading. Discovery is deterministic - snapshot paths
// are returned in lexicographic order, so "most recent wins" resolutions
// downstream are reproducible between runs.
//
// =============================================================================

package corpus

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/advtools/adv-extract/internal/config"
)

// =============================================================================
// RAW TABLE STRUCTURE
// =============================================================================

// RawTable represents one parsed snapshot file.
type RawTable struct {
	// Path is the source file path.
	Path string

	// Headers contains the column headers from the snapshot.
	Headers []string

	// Rows contains the data rows as maps of header -> raw cell value.
	// Using maps allows field access by configured column name.
	Rows []map[string]string
}

// =============================================================================
// CORPUS DISCOVERY
// =============================================================================

// Discover walks the input directory recursively and returns all snapshot
// paths whose base name matches the configured pattern, sorted
// lexicographically. The sort is load-bearing: the scanner's and
// reconciler's "last match wins" policies assume a deterministic corpus
// order.
func Discover(inputDir, pattern string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("invalid file pattern %q: %w", pattern, err)
		}
		if matched {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// SNAPSHOT LOADING
// =============================================================================

// Load reads one snapshot file and returns the parsed table.
//
// Callers processing a corpus should treat a Load error as a per-table
// condition: skip the table and continue. Partial corpus corruption must
// not abort a whole run.
func Load(path string, settings *config.Settings) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = bufio.NewReader(file)

	// Decode legacy encodings before the CSV layer sees the bytes.
	if decoder := decoderFor(settings.Encoding); decoder != nil {
		reader = transform.NewReader(reader, decoder)
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}

	headers := cleanHeaders(allRows[0])
	rows := extractDataRows(allRows[1:], headers)

	return &RawTable{
		Path:    path,
		Headers: headers,
		Rows:    rows,
	}, nil
}

// decoderFor returns a transformer for the configured encoding, or nil when
// the input is already UTF-8.
func decoderFor(name string) *encoding.Decoder {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder()
	default:
		return nil
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings *config.Settings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// The snapshots are machine exports with occasional hand-edited rows;
	// tolerate ragged field counts and sloppy quoting rather than failing
	// the whole table.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header values and names any blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// extractDataRows converts raw rows to header-keyed maps, skipping rows that
// contain no values at all. Missing trailing cells become empty strings.
func extractDataRows(raw [][]string, headers []string) []map[string]string {
	rows := make([]map[string]string, 0, len(raw))

	for _, row := range raw {
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				rowMap[header] = strings.TrimSpace(row[i])
			} else {
				rowMap[header] = ""
			}
		}
		rows = append(rows, rowMap)
	}

	return rows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
