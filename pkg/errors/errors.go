package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategorySchema         ErrorCategory = "schema"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeDirectoryError ErrorCode = "directory_error"
	CodeWriteFailed    ErrorCode = "write_failed"

	// Parse errors
	CodeUnparsableFile ErrorCode = "unparsable_file"

	// Schema errors
	CodeRequiredColumnMissing ErrorCode = "required_column_missing"
	CodeSchemaMismatch        ErrorCode = "schema_mismatch"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ConverterError is the base error type for all application errors
type ConverterError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ConverterError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ConverterError) Unwrap() error {
	return e.Cause
}

// Is matches on category and code so callers can test with a template error.
func (e *ConverterError) Is(target error) bool {
	t, ok := target.(*ConverterError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// GetExitCode returns an appropriate exit code for the error
func (e *ConverterError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategorySchema:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ConverterError) WithContext(key string, value interface{}) *ConverterError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ConverterError) WithSuggestion(suggestion string) *ConverterError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ConverterError
func New(category ErrorCategory, code ErrorCode, message string) *ConverterError {
	return &ConverterError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ConverterError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ConverterError {
	if err == nil {
		return nil
	}

	return &ConverterError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Sentinels for errors.Is checks; only Category and Code take part in matching.
var (
	ErrRequiredColumnMissing = &ConverterError{Category: CategorySchema, Code: CodeRequiredColumnMissing}
	ErrSchemaMismatch        = &ConverterError{Category: CategorySchema, Code: CodeSchemaMismatch}
	ErrUnparsableFile        = &ConverterError{Category: CategoryParse, Code: CodeUnparsableFile}
)

// RequiredColumnMissing reports a column that could not be resolved from the
// source headers and has no declared default.
func RequiredColumnMissing(column string, candidates []string, available []string) *ConverterError {
	message := fmt.Sprintf("required column '%s' is absent", column)
	if len(candidates) > 1 {
		message = fmt.Sprintf("required column '%s' is absent (tried: %s)", column, strings.Join(candidates, ", "))
	}

	return New(CategorySchema, CodeRequiredColumnMissing, message).
		WithSuggestion("check the header row of the input file").
		WithContext("column", column).
		WithContext("available_columns", available)
}

// SchemaMismatch reports two tables whose ordered column names differ.
func SchemaMismatch(columnsA, columnsB []string) *ConverterError {
	onlyA, onlyB := columnDifference(columnsA, columnsB)

	err := New(CategorySchema, CodeSchemaMismatch, "the column headers of the two tables do not match").
		WithSuggestion("check that both files have the same structure before comparing").
		WithContext("columns_a", columnsA).
		WithContext("columns_b", columnsB)
	if len(onlyA) > 0 {
		err.WithContext("only_in_a", onlyA)
	}
	if len(onlyB) > 0 {
		err.WithContext("only_in_b", onlyB)
	}
	return err
}

// UnparsableFile reports an input that cannot be read as tabular data.
func UnparsableFile(path string, err error) *ConverterError {
	message := fmt.Sprintf("cannot read %s as tabular data", path)

	var result *ConverterError
	if err != nil {
		result = Wrap(err, CategoryParse, CodeUnparsableFile, message)
	} else {
		result = New(CategoryParse, CodeUnparsableFile, message)
	}

	return result.
		WithSuggestion("make sure the file is a CSV or XLSX export and is not open in another program").
		WithContext("file_path", path)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ConverterError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write output file: %s", path)
		suggestion = "close the file if it is open in a spreadsheet program and try again"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ConverterError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ConverterError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid value for '%s': %v", setting, value)
		suggestion = "check the command help for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required setting: %s", setting)
		suggestion = "provide this setting as a flag or in the config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ConverterError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *ConverterError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	return Wrap(err, CategoryInternal, CodeUnexpectedError, message).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// AsConverterError extracts a ConverterError from an error chain
func AsConverterError(err error) (*ConverterError, bool) {
	var converterErr *ConverterError
	if errors.As(err, &converterErr) {
		return converterErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ConverterError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ConverterError {
	if err == nil {
		return nil
	}

	if converterErr, ok := AsConverterError(err); ok {
		return converterErr
	}

	return Wrap(err, category, code, message)
}

func columnDifference(a, b []string) ([]string, []string) {
	inA := make(map[string]bool, len(a))
	for _, c := range a {
		inA[c] = true
	}
	inB := make(map[string]bool, len(b))
	for _, c := range b {
		inB[c] = true
	}

	var onlyA, onlyB []string
	for c := range inA {
		if !inB[c] {
			onlyA = append(onlyA, c)
		}
	}
	for c := range inB {
		if !inA[c] {
			onlyB = append(onlyB, c)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}
