package errors

import (
	"fmt"
	"strings"
)

// RecordContext locates a malformed record inside its source document.
type RecordContext struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Dialect string `json:"dialect,omitempty"`
}

// RecordError is the per-record diagnostic emitted by extractors when a
// single line or row fails to parse. Record errors are always recoverable:
// the record is dropped and extraction continues. They are collected into
// extraction stats and surfaced only if the whole document yields nothing.
type RecordError struct {
	*PipelineError
	Context     *RecordContext `json:"context"`
	LineContent string         `json:"line_content,omitempty"`
}

// Error implements the error interface with location information
func (e *RecordError) Error() string {
	var parts []string

	parts = append(parts, e.PipelineError.Error())

	if e.Context != nil {
		location := fmt.Sprintf("at %s", e.Context.Source)
		if e.Context.Line > 0 {
			location += fmt.Sprintf(":%d", e.Context.Line)
		}
		if e.Context.Field != "" {
			location += fmt.Sprintf(" field '%s'", e.Context.Field)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// Unwrap exposes the embedded pipeline error to errors.As and errors.Is.
func (e *RecordError) Unwrap() error {
	return e.PipelineError
}

// Detailed returns a multi-line description suitable for verbose logs.
func (e *RecordError) Detailed() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("RECORD DROPPED: %s", e.Message))

	if e.Context != nil {
		lines = append(lines, fmt.Sprintf("  source: %s", e.Context.Source))
		if e.Context.Line > 0 {
			lines = append(lines, fmt.Sprintf("  line: %d", e.Context.Line))
		}
		if e.Context.Field != "" {
			lines = append(lines, fmt.Sprintf("  field: %s", e.Context.Field))
		}
		if e.Context.Value != "" {
			lines = append(lines, fmt.Sprintf("  value: '%s'", e.Context.Value))
		}
		if e.Context.Dialect != "" {
			lines = append(lines, fmt.Sprintf("  dialect: %s", e.Context.Dialect))
		}
	}

	if e.LineContent != "" {
		lines = append(lines, fmt.Sprintf("  content: %s", e.LineContent))
	}

	return strings.Join(lines, "\n")
}

// NewRecordError creates a per-record diagnostic for a dropped line/row.
func NewRecordError(code ErrorCode, context *RecordContext, message string, cause error) *RecordError {
	base := &PipelineError{
		Category: CategoryExtraction,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}

	if context != nil {
		base.WithContext("source", context.Source).
			WithContext("line", context.Line)
		if context.Field != "" {
			base.WithContext("field", context.Field)
		}
	}

	return &RecordError{
		PipelineError: base,
		Context:       context,
	}
}

// WithLineContent attaches the raw source line to the diagnostic.
func (e *RecordError) WithLineContent(content string) *RecordError {
	e.LineContent = truncate(content, 200)
	return e
}

// Common record error constructors

// UnparseableDate creates a diagnostic for a date that no pattern matched.
func UnparseableDate(source string, line int, value string) *RecordError {
	return NewRecordError(CodeInvalidDate, &RecordContext{
		Source: source,
		Line:   line,
		Field:  "date",
		Value:  value,
	}, "record date did not match any known format", nil)
}

// UnparseableAmount creates a diagnostic for a non-positive or missing
// amount. Unparseable amounts normalize to zero, so a zero amount and a
// missing amount are reported identically.
func UnparseableAmount(source string, line int, value string) *RecordError {
	return NewRecordError(CodeInvalidAmount, &RecordContext{
		Source: source,
		Line:   line,
		Field:  "amount",
		Value:  value,
	}, "record amount is missing, zero, or unparseable", nil)
}

// EmptyDescription creates a diagnostic for a record with no description.
func EmptyDescription(source string, line int) *RecordError {
	return NewRecordError(CodeMissingField, &RecordContext{
		Source: source,
		Line:   line,
		Field:  "description",
	}, "record has an empty description", nil)
}
