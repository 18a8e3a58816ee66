package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Error("Command failed")

	// Handle PipelineError with detailed information
	if pipelineErr, ok := pkgerrors.AsPipelineError(err); ok {
		return h.handlePipelineError(pipelineErr)
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handlePipelineError handles PipelineError with detailed context
func (h *CLIErrorHandler) handlePipelineError(err *pkgerrors.PipelineError) int {
	// Print the main error message
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	// Add category-specific help
	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-PipelineError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, run with the --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category pkgerrors.ErrorCategory) string {
	switch category {
	case pkgerrors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Supported statement formats: CSV, TSV, XLSX, PDF, TXT
• Use --file-type to override the extension-based detection`

	case pkgerrors.CategoryExtraction:
		return `Extraction error help:
• Verify the file is a bank statement export, not a scanned image
• Check for proper column headers in CSV and XLSX files
• Ensure the file uses UTF-8 encoding
• PDF statements must contain selectable text, not just images
• Use 'analyzer process --help' for examples of supported formats`

	case pkgerrors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify date formats are recognizable (DD/MM/YYYY, YYYY-MM-DD, ...)
• Ensure amounts are numbers, optionally with currency symbols`

	case pkgerrors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'analyzer process --help' to see all available options
• Try running with default settings first`

	case pkgerrors.CategoryClassification:
		return `Classification error help:
• Check that the API key is valid (--api-key or GEMINI_API_KEY)
• Verify network connectivity to the Gemini API
• Use --no-ai to fall back to keyword classification`

	case pkgerrors.CategoryStorage:
		return `Storage error help:
• Check the database path is writable
• Verify the database file is not locked by another process
• Check available disk space`

	default:
		return `For more help:
• Use 'analyzer --help' for general help
• Use 'analyzer process --help' for command-specific help
• Run with --verbose for detailed error information`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}

// FormatDroppedRecords formats record-level extraction diagnostics in a
// user-friendly way.
func FormatDroppedRecords(errs []*pkgerrors.RecordError) string {
	if len(errs) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Skipped %d unreadable records:", len(errs)))

	for i, err := range errs {
		lines = append(lines, fmt.Sprintf("  %d. %v", i+1, err))
		// Limit the number of errors shown
		if i >= 9 && len(errs) > 10 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(errs)-10))
			break
		}
	}

	return strings.Join(lines, "\n")
}
