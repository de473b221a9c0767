package parsers

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the container format of an input file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Encoding names the character set of a delimited text file
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingLatin1  Encoding = "iso-8859-1"
	EncodingWindows Encoding = "windows-1252"
)

// LoadConfig describes where the header and the data of a file are
type LoadConfig struct {
	// HeaderRow is the 1-based row holding column names. Zero means the file
	// has no header and columns are named A, B, C, ...
	HeaderRow int `json:"header_row" mapstructure:"header_row"`
	// SkipAfterHeader drops this many rows right after the header, such as
	// banner or sub-heading rows.
	SkipAfterHeader int `json:"skip_after_header" mapstructure:"skip_after_header"`
	// MaxColumns keeps only the first n columns when positive
	MaxColumns int `json:"max_columns" mapstructure:"max_columns"`
	// ColumnNames overrides the names of the leading columns
	ColumnNames []string `json:"column_names,omitempty" mapstructure:"column_names"`
	// Sheet selects a workbook sheet; empty means the first sheet
	Sheet string `json:"sheet,omitempty" mapstructure:"sheet"`
	// Encoding of delimited text input
	Encoding Encoding `json:"encoding" mapstructure:"encoding"`
	// Delimiter of delimited text input
	Delimiter rune `json:"delimiter" mapstructure:"delimiter"`
	// KeepBlankRows retains data rows whose cells are all empty
	KeepBlankRows bool `json:"keep_blank_rows" mapstructure:"keep_blank_rows"`
}

// DefaultLoadConfig returns a configuration for a file with a header on the
// first row.
func DefaultLoadConfig() *LoadConfig {
	return &LoadConfig{
		HeaderRow: 1,
		Encoding:  EncodingUTF8,
		Delimiter: ',',
	}
}

// Validate checks the configuration
func (c *LoadConfig) Validate() error {
	if c.HeaderRow < 0 {
		return fmt.Errorf("header row cannot be negative, got %d", c.HeaderRow)
	}
	if c.SkipAfterHeader < 0 {
		return fmt.Errorf("skip after header cannot be negative, got %d", c.SkipAfterHeader)
	}
	if c.MaxColumns < 0 {
		return fmt.Errorf("max columns cannot be negative, got %d", c.MaxColumns)
	}
	switch c.Encoding {
	case "", EncodingUTF8, EncodingLatin1, EncodingWindows:
	default:
		return fmt.Errorf("unsupported encoding %q", c.Encoding)
	}
	if c.Delimiter == '"' || c.Delimiter == '\n' || c.Delimiter == '\r' {
		return fmt.Errorf("invalid delimiter %q", c.Delimiter)
	}
	return nil
}

// ParseEncoding maps common spellings onto a supported encoding
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8", "utf-8-sig":
		return EncodingUTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "cp1252", "windows-1252":
		return EncodingWindows, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}
