package reporter

import (
	"context"
	"os"
	"path/filepath"

	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/pkg/errors"
	"golang-backoffice-converter/pkg/logger"
)

// Exporter writes tables to files. A file is only created once its whole
// content has been rendered, and it appears under its final name in one
// rename, so a failed run never leaves a partial output behind.
type Exporter struct {
	logger logger.Logger
}

// Output is one table to write
type Output struct {
	Table  *table.Table
	Path   string
	Config ExportConfig
}

// NewExporter creates an exporter that logs through log
func NewExporter(log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Exporter{logger: log.WithComponent("reporter")}
}

// Export renders t and writes it to path, replacing any existing file
func (e *Exporter) Export(ctx context.Context, t *table.Table, path string, cfg ExportConfig) error {
	return e.ExportAll(ctx, Output{Table: t, Path: path, Config: cfg})
}

// ExportAll writes several files as one unit. Every output is rendered and
// staged next to its destination before any destination is replaced; when
// rendering or staging fails no output file changes.
func (e *Exporter) ExportAll(ctx context.Context, outputs ...Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered := make([][]byte, len(outputs))
	for i, o := range outputs {
		e.logger.WithFields(logger.Fields{
			"file_path": o.Path,
			"format":    o.Config.Format,
			"rows":      o.Table.Len(),
		}).Debug("Rendering output")

		data, err := Render(o.Table, o.Config)
		if err != nil {
			e.logger.WithError(err).Error("Failed to render output")
			return errors.InternalError("render "+string(o.Config.Format), err)
		}
		rendered[i] = data
	}

	staged := make([]string, 0, len(outputs))
	discard := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for i, o := range outputs {
		tmp, err := stageFile(o.Path, rendered[i])
		if err != nil {
			discard()
			e.logger.WithError(err).WithField("file_path", o.Path).Error("Failed to write output")
			return err
		}
		staged = append(staged, tmp)
	}

	for i, o := range outputs {
		if err := os.Rename(staged[i], o.Path); err != nil {
			discard()
			e.logger.WithError(err).WithField("file_path", o.Path).Error("Failed to write output")
			return writeError(o.Path, err)
		}
		e.logger.WithFields(logger.Fields{
			"file_path": o.Path,
			"rows":      o.Table.Len(),
			"bytes":     len(rendered[i]),
		}).Info("Wrote output")
	}
	return nil
}

// stageFile writes data to a temporary file beside path and returns its name
func stageFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = os.ErrNotExist
		}
		return "", errors.FileError(errors.CodeDirectoryError, dir, err).
			WithSuggestion("Create the output directory or choose another output path")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", writeError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", writeError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", writeError(path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return "", writeError(path, err)
	}
	return tmpName, nil
}

func writeError(path string, err error) error {
	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	return errors.FileError(errors.CodeWriteFailed, path, err).
		WithSuggestion("Close the file if it is open in a spreadsheet program and check free disk space")
}
