package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestPipelineError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "extraction error",
			category:   CategoryExtraction,
			code:       CodeMalformedRecord,
			message:    "malformed record",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "classification error",
			category:   CategoryClassification,
			code:       CodeClassifierTimeout,
			message:    "classifier timed out",
			cause:      errors.New("context deadline exceeded"),
			expectCode: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *PipelineError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, err.Message)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}

			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Error("expected wrapped cause to be found in the chain")
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []*PipelineError{
		UnsupportedFileType("docx"),
		NoTransactionsFound("statement.pdf"),
		ProcessingTimeout("classification", nil),
	}
	for _, err := range terminal {
		if !err.IsTerminal() {
			t.Errorf("expected %s to be terminal", err.Code)
		}
	}

	recoverable := []*PipelineError{
		ClassificationError(CodeClassifierTimeout, "UBER TRIP 12345", nil),
		ExtractionError(CodeMalformedRecord, "statement.csv", 12, nil),
		ValidationError(CodeInvalidDate, "date", "not-a-date", nil),
	}
	for _, err := range recoverable {
		if err.IsTerminal() {
			t.Errorf("expected %s to be recoverable", err.Code)
		}
	}
}

func TestWithContextAndSuggestion(t *testing.T) {
	err := New(CategoryExtraction, CodeMalformedRecord, "bad row").
		WithContext("line", 42).
		WithSuggestion("check the row")

	if err.Context["line"] != 42 {
		t.Errorf("expected context line 42, got %v", err.Context["line"])
	}
	if !strings.Contains(err.Error(), "suggestion: check the row") {
		t.Errorf("expected suggestion in message, got %q", err.Error())
	}
}

func TestUnsupportedFileType(t *testing.T) {
	err := UnsupportedFileType("docx")

	if err.Code != CodeUnsupportedFileType {
		t.Errorf("expected code %s, got %s", CodeUnsupportedFileType, err.Code)
	}
	if err.Context["file_type"] != "docx" {
		t.Errorf("expected file_type context, got %v", err.Context["file_type"])
	}
	if !strings.Contains(err.Message, "docx") {
		t.Errorf("expected file type in message, got %q", err.Message)
	}
}

func TestRecordError(t *testing.T) {
	err := UnparseableDate("statement.csv", 7, "32/13/2024").
		WithLineContent("32/13/2024,COFFEE SHOP,4.50")

	msg := err.Error()
	if !strings.Contains(msg, "statement.csv:7") {
		t.Errorf("expected location in message, got %q", msg)
	}
	if !strings.Contains(msg, "field 'date'") {
		t.Errorf("expected field in message, got %q", msg)
	}

	detailed := err.Detailed()
	if !strings.Contains(detailed, "RECORD DROPPED") {
		t.Errorf("expected detailed header, got %q", detailed)
	}
	if !strings.Contains(detailed, "COFFEE SHOP") {
		t.Errorf("expected line content in detailed output, got %q", detailed)
	}
}

func TestErrorSummary(t *testing.T) {
	errs := []*PipelineError{
		UnparseableDate("a.csv", 1, "x").PipelineError,
		UnparseableAmount("a.csv", 2, "y").PipelineError,
		UnparseableAmount("a.csv", 3, "z").PipelineError,
	}

	summary := NewErrorSummary(errs)

	if summary.Total != 3 {
		t.Errorf("expected 3 errors, got %d", summary.Total)
	}
	if summary.ByCode[CodeInvalidAmount] != 2 {
		t.Errorf("expected 2 invalid_amount errors, got %d", summary.ByCode[CodeInvalidAmount])
	}
	if !summary.HasCode(CodeInvalidDate) {
		t.Error("expected summary to contain invalid_date")
	}

	empty := NewErrorSummary(nil)
	if empty.Error() != "no errors" {
		t.Errorf("expected 'no errors', got %q", empty.Error())
	}
}

func TestAsPipelineError(t *testing.T) {
	base := New(CategoryFile, CodeFileNotFound, "gone")
	wrapped := errors.Join(errors.New("outer"), base)

	got, ok := AsPipelineError(wrapped)
	if !ok {
		t.Fatal("expected to extract PipelineError from chain")
	}
	if got.Code != CodeFileNotFound {
		t.Errorf("expected code %s, got %s", CodeFileNotFound, got.Code)
	}

	if _, ok := AsPipelineError(errors.New("plain")); ok {
		t.Error("expected plain error not to be a PipelineError")
	}
}
