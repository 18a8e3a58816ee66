// Package errors defines the error taxonomy for the statement pipeline.
//
// Every error surfaced by the pipeline is a *PipelineError carrying a
// category, a machine-readable code, a human-readable message, an optional
// suggestion, and structured context. Terminal errors (unsupported file
// type, no transactions found, processing timeout) fail the statement;
// everything else is recovered locally and only shows up in diagnostics.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryExtraction     ErrorCategory = "extraction"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryClassification ErrorCategory = "classification"
	CategoryStorage        ErrorCategory = "storage"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound        ErrorCode = "file_not_found"
	CodeFileUnreadable      ErrorCode = "file_unreadable"
	CodeUnsupportedFileType ErrorCode = "unsupported_file_type"

	// Extraction errors
	CodeNoTransactionsFound ErrorCode = "no_transactions_found"
	CodeMalformedRecord     ErrorCode = "malformed_record"
	CodeTextExtraction      ErrorCode = "text_extraction_failed"
	CodeMissingHeader       ErrorCode = "missing_header"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Classification errors
	CodeClassifierTimeout     ErrorCode = "classifier_timeout"
	CodeClassifierError       ErrorCode = "classifier_error"
	CodeClassifierUnavailable ErrorCode = "classifier_unavailable"

	// Storage errors
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeStoreWriteFailed ErrorCode = "store_write_failed"

	// Internal errors
	CodeProcessingTimeout ErrorCode = "processing_timeout"
	CodeUnexpectedError   ErrorCode = "unexpected_error"
)

// PipelineError is the base error type for all application errors
type PipelineError struct {
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
func (e *PipelineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsTerminal reports whether this error terminates statement processing.
// Only the structural conditions and the outer timeout are terminal;
// classifier failures and malformed records are always recovered locally.
func (e *PipelineError) IsTerminal() bool {
	switch e.Code {
	case CodeUnsupportedFileType, CodeNoTransactionsFound, CodeProcessingTimeout:
		return true
	}
	return false
}

// GetExitCode returns an appropriate exit code for the error
func (e *PipelineError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryExtraction, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryStorage, CategoryInternal:
		return 5
	case CategoryClassification:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *PipelineError) WithSuggestion(suggestion string) *PipelineError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PipelineError
func New(category ErrorCategory, code ErrorCode, message string) *PipelineError {
	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with PipelineError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *PipelineError {
	if err == nil {
		return nil
	}

	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// UnsupportedFileType creates the terminal error for an unknown file family.
func UnsupportedFileType(fileType string) *PipelineError {
	return New(CategoryFile, CodeUnsupportedFileType,
		fmt.Sprintf("unsupported file type: %q", fileType)).
		WithSuggestion("upload a CSV, XLSX, PDF, or plain-text statement export").
		WithContext("file_type", fileType)
}

// NoTransactionsFound creates the terminal error for a zero-yield extraction.
func NoTransactionsFound(source string) *PipelineError {
	return New(CategoryExtraction, CodeNoTransactionsFound,
		fmt.Sprintf("no transactions could be extracted from %s", source)).
		WithSuggestion("verify the file is a bank statement export and not password protected").
		WithContext("source", source)
}

// ProcessingTimeout creates the terminal error for an exceeded outer deadline.
func ProcessingTimeout(stage string, err error) *PipelineError {
	result := New(CategoryInternal, CodeProcessingTimeout,
		fmt.Sprintf("statement processing timed out during %s", stage))
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeProcessingTimeout, result.Message)
	}
	return result.
		WithSuggestion("retry with a smaller statement or a longer processing budget").
		WithContext("stage", stage)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFileUnreadable:
		message = fmt.Sprintf("file could not be read: %s", path)
		suggestion = "check file permissions and ensure the file is not corrupted"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ExtractionError creates an extraction-related error
func ExtractionError(code ErrorCode, source string, line int, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeMalformedRecord:
		message = fmt.Sprintf("malformed record in %s at line %d", source, line)
		suggestion = "the record was skipped; check the source line if it was expected to parse"
	case CodeTextExtraction:
		message = fmt.Sprintf("text extraction failed for %s", source)
		suggestion = "the document may be image-based or use custom font encodings"
	case CodeMissingHeader:
		message = fmt.Sprintf("no recognizable header row found in %s", source)
		suggestion = "ensure the export includes column headers (date, description, amount)"
	default:
		message = fmt.Sprintf("extraction error in %s at line %d", source, line)
		suggestion = "check the file format and data integrity"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("source", source).
		WithContext("line", line)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use a recognizable date format such as YYYY-MM-DD or DD/MM/YYYY"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *PipelineError
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

// ClassificationError creates a classification-related error. These are
// always recovered via the fallback classifier and never fail a statement.
func ClassificationError(code ErrorCode, description string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeClassifierTimeout:
		message = "external classifier call timed out"
		suggestion = "the transaction was classified by the fallback; no action needed"
	case CodeClassifierError:
		message = "external classifier call failed"
		suggestion = "the transaction was classified by the fallback; no action needed"
	case CodeClassifierUnavailable:
		message = "external classifier is unavailable"
		suggestion = "check classifier credentials and connectivity"
	default:
		message = "classification error"
		suggestion = "the fallback classifier was used"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryClassification, code, message)
	} else {
		result = New(CategoryClassification, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("description", truncate(description, 80))
}

// StorageError creates a storage-related error
func StorageError(code ErrorCode, operation string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreUnavailable:
		message = fmt.Sprintf("statement store unavailable during %s", operation)
		suggestion = "check the database path and permissions"
	case CodeStoreWriteFailed:
		message = fmt.Sprintf("failed to persist results during %s", operation)
		suggestion = "check disk space and database integrity"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check the store configuration"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *PipelineError {
	message := fmt.Sprintf("internal error during %s", operation)
	suggestion := "try again or report the error if it persists"

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*PipelineError      `json:"errors"`
	SampleErrors []*PipelineError      `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*PipelineError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*PipelineError{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	count, exists := es.ByCode[code]
	return exists && count > 0
}

// Utility functions

// IsPipelineError checks if an error is a PipelineError
func IsPipelineError(err error) bool {
	_, ok := err.(*PipelineError)
	return ok
}

// AsPipelineError extracts a PipelineError from an error chain
func AsPipelineError(err error) (*PipelineError, bool) {
	var pipelineErr *PipelineError
	if errors.As(err, &pipelineErr) {
		return pipelineErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given error code anywhere in
// its chain.
func HasCode(err error, code ErrorCode) bool {
	if pe, ok := AsPipelineError(err); ok {
		return pe.Code == code
	}
	return false
}

// WrapIfNeeded wraps an error if it's not already a PipelineError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *PipelineError {
	if err == nil {
		return nil
	}

	if pipelineErr, ok := AsPipelineError(err); ok {
		return pipelineErr
	}

	return Wrap(err, category, code, message)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
