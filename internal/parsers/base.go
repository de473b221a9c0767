// Package parsers loads delimited text and spreadsheet files into tables.
//
// Finance exports rarely start with a clean header: the header may sit on
// row 4 with banner rows under it, the file may have no header at all, or it
// may be Latin-1 encoded. LoadConfig declares those offsets per feature; the
// loader applies them and hands back an immutable table of text cells.
// Empty cells are absent. Header names are trimmed, blank names become the
// spreadsheet column letter and repeated names get a .1, .2 suffix.
package parsers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

// LoadStats describes what the loader kept and dropped
type LoadStats struct {
	RawRows     int      `json:"raw_rows"`
	SkippedRows int      `json:"skipped_rows"`
	BlankRows   int      `json:"blank_rows"`
	DataRows    int      `json:"data_rows"`
	Columns     []string `json:"columns"`
}

// String returns a human-readable summary of loading statistics
func (s *LoadStats) String() string {
	return fmt.Sprintf("Read %d rows, kept %d (%d skipped, %d blank), %d columns",
		s.RawRows, s.DataRows, s.SkippedRows, s.BlankRows, len(s.Columns))
}

// Loader reads files into tables
type Loader struct {
	logger logger.Logger
}

// NewLoader creates a loader that logs through log
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Loader{logger: log.WithComponent("loader")}
}

// Load reads the file at path with the format implied by its extension
func (l *Loader) Load(ctx context.Context, path string, cfg *LoadConfig) (*table.Table, *LoadStats, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, errors.UnparsableFile(path, err).
			WithSuggestion("convert the file to .csv or .xlsx and try again")
	}

	file, err := l.openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	tbl, stats, err := l.LoadReader(ctx, file, format, cfg)
	if err != nil {
		if ce, ok := errors.AsConverterError(err); ok && ce.Code == errors.CodeUnparsableFile {
			ce.WithContext("file_path", path)
			ce.Message = fmt.Sprintf("cannot read %s as tabular data", path)
		}
		return nil, nil, err
	}

	l.logger.WithFields(logger.Fields{
		"file_path": path,
		"format":    format,
		"rows":      stats.DataRows,
		"columns":   len(stats.Columns),
	}).Info("Loaded file")
	return tbl, stats, nil
}

// LoadReader reads r as format
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, format Format, cfg *LoadConfig) (*table.Table, *LoadStats, error) {
	if cfg == nil {
		cfg = DefaultLoadConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.ConfigurationError(errors.CodeInvalidConfig, "load", cfg, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var records [][]string
	var err error
	switch format {
	case FormatCSV:
		records, err = readCSV(r, cfg)
	case FormatXLSX:
		records, err = readXLSX(r, cfg)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, nil, errors.UnparsableFile(string(format)+" input", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	tbl, stats, err := buildTable(records, cfg)
	if err != nil {
		return nil, nil, errors.UnparsableFile(string(format)+" input", err)
	}

	l.logger.WithField("stats", stats.String()).Debug("Built table")
	return tbl, stats, nil
}

// openFile opens path and maps os errors onto file errors
func (l *Loader) openFile(path string) (*os.File, error) {
	l.logger.WithField("file_path", path).Debug("Opening file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.WithError(err).WithField("file_path", path).Error("Failed to open file")
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}
	return file, nil
}

// buildTable applies the header and skip offsets to raw records
func buildTable(records [][]string, cfg *LoadConfig) (*table.Table, *LoadStats, error) {
	stats := &LoadStats{RawRows: len(records)}

	var header []string
	dataStart := 0
	if cfg.HeaderRow > 0 {
		if cfg.HeaderRow > len(records) {
			return nil, nil, fmt.Errorf("header row %d is beyond the end of the file (%d rows)", cfg.HeaderRow, len(records))
		}
		header = records[cfg.HeaderRow-1]
		dataStart = cfg.HeaderRow
		stats.SkippedRows = cfg.HeaderRow - 1
	}

	skip := cfg.SkipAfterHeader
	if dataStart+skip > len(records) {
		skip = len(records) - dataStart
	}
	stats.SkippedRows += skip
	data := records[dataStart+skip:]

	width := len(header)
	for _, rec := range data {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if cfg.MaxColumns > 0 && width > cfg.MaxColumns {
		width = cfg.MaxColumns
	}

	columns, err := columnNames(header, width, cfg.ColumnNames)
	if err != nil {
		return nil, nil, err
	}
	stats.Columns = columns

	b := table.NewBuilder(columns...)
	for _, rec := range data {
		row := make([]string, width)
		copy(row, rec)
		if !cfg.KeepBlankRows && isEmptyRecord(row) {
			stats.BlankRows++
			continue
		}
		b.AddText(row...)
	}
	stats.DataRows = b.Len()

	tbl, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return tbl, stats, nil
}

// columnNames cleans the header: names are trimmed, blanks take the column
// letter, overrides replace leading names and repeats are suffixed.
func columnNames(header []string, width int, overrides []string) ([]string, error) {
	names := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(overrides) && strings.TrimSpace(overrides[i]) != "" {
			names[i] = strings.TrimSpace(overrides[i])
			continue
		}
		if i < len(header) {
			names[i] = strings.TrimSpace(header[i])
		}
		if names[i] == "" {
			letter, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			names[i] = letter
		}
	}

	seen := make(map[string]int, width)
	taken := make(map[string]bool, width)
	for _, n := range names {
		taken[n] = true
	}
	for i, n := range names {
		count := seen[n]
		seen[n] = count + 1
		if count == 0 {
			continue
		}
		candidate := fmt.Sprintf("%s.%d", n, count)
		for taken[candidate] {
			count++
			candidate = fmt.Sprintf("%s.%d", n, count)
		}
		seen[n] = count + 1
		taken[candidate] = true
		names[i] = candidate
	}
	return names, nil
}

// isEmptyRecord checks if all fields in a record are empty or whitespace
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

var defaultLoader = sync.OnceValue(func() *Loader { return NewLoader(nil) })

// Load reads path with a loader that logs through the global logger
func Load(ctx context.Context, path string, cfg *LoadConfig) (*table.Table, error) {
	tbl, _, err := defaultLoader().Load(ctx, path, cfg)
	return tbl, err
}
