package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.csv")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateProcessFlags(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "statement.csv")
	if err := os.WriteFile(validFile, []byte("Date,Description,Amount\n"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		settings    map[string]interface{}
		expectError bool
	}{
		{
			name: "valid flags",
			settings: map[string]interface{}{
				"file":          validFile,
				"output-format": "text",
			},
			expectError: false,
		},
		{
			name: "missing file",
			settings: map[string]interface{}{
				"file":          "",
				"output-format": "text",
			},
			expectError: true,
		},
		{
			name: "non-existent file",
			settings: map[string]interface{}{
				"file":          "/non/existent/statement.csv",
				"output-format": "text",
			},
			expectError: true,
		},
		{
			name: "invalid output format",
			settings: map[string]interface{}{
				"file":          validFile,
				"output-format": "xml",
			},
			expectError: true,
		},
		{
			name: "output directory does not exist",
			settings: map[string]interface{}{
				"file":          validFile,
				"output-format": "json",
				"output-file":   "/non/existent/dir/report.json",
			},
			expectError: true,
		},
		{
			name: "output file in existing directory",
			settings: map[string]interface{}{
				"file":          validFile,
				"output-format": "json",
				"output-file":   filepath.Join(tmpDir, "report.json"),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			for key, value := range tt.settings {
				viper.Set(key, value)
			}
			defer viper.Reset()

			err := validateProcessFlags(processCmd, nil)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCLIErrorHandlerExitCodes(t *testing.T) {
	handler := &CLIErrorHandler{logger: logger.GetGlobalLogger().WithComponent("cli")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: 0,
		},
		{
			name: "unsupported file type",
			err:  pkgerrors.UnsupportedFileType("docx"),
			want: pkgerrors.UnsupportedFileType("docx").GetExitCode(),
		},
		{
			name: "no transactions found",
			err:  pkgerrors.NoTransactionsFound("statement.csv"),
			want: pkgerrors.NoTransactionsFound("statement.csv").GetExitCode(),
		},
		{
			name: "storage error",
			err:  pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "complete", errors.New("disk full")),
			want: pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "complete", errors.New("disk full")).GetExitCode(),
		},
		{
			name: "generic error",
			err:  errors.New("something unexpected"),
			want: 1,
		},
		{
			name: "file not found",
			err:  os.ErrNotExist,
			want: 2,
		},
	}

	// Quiet stderr for the duration of the test.
	origStderr := os.Stderr
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("failed to open %s: %v", os.DevNull, err)
	}
	os.Stderr = devNull
	defer func() {
		os.Stderr = origStderr
		devNull.Close()
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handler.HandleError(tt.err)
			if got != tt.want {
				t.Errorf("HandleError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatDroppedRecords(t *testing.T) {
	if got := FormatDroppedRecords(nil); got != "" {
		t.Errorf("expected empty string for no errors, got %q", got)
	}

	errs := []*pkgerrors.RecordError{
		pkgerrors.UnparseableDate("statement.csv", 3, "31/31/2024"),
		pkgerrors.EmptyDescription("statement.csv", 5),
	}
	got := FormatDroppedRecords(errs)
	if got == "" {
		t.Fatal("expected formatted output")
	}
	if want := "Skipped 2 unreadable records:"; !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}
