package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang-backoffice-converter/internal/parsers"
	"golang-backoffice-converter/internal/reporter"
	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

// validateFileExists checks that path names a readable regular file
func validateFileExists(path, description string) error {
	if path == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, description, nil, nil)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, path, err).
			WithContext("input", description)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	if info.IsDir() {
		return errors.FileError(errors.CodeFileNotFound, path, fmt.Errorf("%s is a directory, expected a file", description))
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	file.Close()

	return nil
}

// defaultOutput places name next to input
func defaultOutput(input, name string) string {
	return filepath.Join(filepath.Dir(input), name)
}

// loadInput reads one input file and logs what the loader kept
func loadInput(ctx context.Context, a *logger.Action, path string, cfg *parsers.LoadConfig) (*table.Table, error) {
	t, stats, err := parsers.NewLoader(a.Logger()).Load(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	a.Step("load", logger.Fields{
		"file_path":    path,
		"data_rows":    stats.DataRows,
		"skipped_rows": stats.SkippedRows,
		"blank_rows":   stats.BlankRows,
	})
	return t, nil
}

// writeOutput exports t and reports the written file on w
func writeOutput(ctx context.Context, a *logger.Action, w io.Writer, t *table.Table, path string, cfg reporter.ExportConfig) error {
	return writeOutputs(ctx, a, w, reporter.Output{Table: t, Path: path, Config: cfg})
}

// writeOutputs exports every output or none of them
func writeOutputs(ctx context.Context, a *logger.Action, w io.Writer, outputs ...reporter.Output) error {
	if err := reporter.NewExporter(a.Logger()).ExportAll(ctx, outputs...); err != nil {
		return err
	}
	for _, o := range outputs {
		a.Step("export", logger.Fields{"file_path": o.Path, "rows": o.Table.Len()})
		fmt.Fprintf(w, "Wrote %d rows to %s\n", o.Table.Len(), o.Path)
	}
	return nil
}
