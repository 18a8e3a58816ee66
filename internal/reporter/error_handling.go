package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with fallback behavior: a
// text rendering failure falls back to JSON, and a file write failure
// falls back to a backup path and then to stdout. The statement is
// already persisted by the time a report is rendered, so a rendering
// problem must not look like a pipeline failure.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, pkgerrors.ConfigurationError(
			pkgerrors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Check the report configuration values")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely renders a statement with format fallback.
func (srg *SafeReportGenerator) GenerateReportSafely(statement *models.ProcessedStatement, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": writerDescription(writer),
	}).Info("Generating report")

	if statement == nil {
		return fmt.Errorf("statement cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	err := srg.GenerateReport(statement, writer)
	if err == nil {
		return nil
	}

	// JSON marshalling of a statement the pipeline produced should never
	// fail; the text formatter is the moving part. Fall back to JSON so
	// the caller still gets a usable report.
	if srg.config.Format != FormatJSON {
		srg.logger.WithError(err).Warn("Report rendering failed; retrying as JSON")
		fallback := *srg.config
		fallback.Format = FormatJSON
		generator := &ReportGenerator{config: &fallback}
		if jsonErr := generator.GenerateReport(statement, writer); jsonErr == nil {
			return nil
		}
	}

	srg.logger.WithError(err).Error("Report generation failed")
	return err
}

// WriteReportFile renders a statement to the given path. On create
// failure it retries a backup path in the same directory, then stdout.
func (srg *SafeReportGenerator) WriteReportFile(statement *models.ProcessedStatement, path string) error {
	file, err := os.Create(path)
	if err == nil {
		defer file.Close()
		return srg.GenerateReportSafely(statement, file)
	}

	backupPath := backupReportPath(path)
	srg.logger.WithError(err).WithFields(logger.Fields{
		"path":   path,
		"backup": backupPath,
	}).Warn("Failed to create report file; trying backup path")

	if backup, backupErr := os.Create(backupPath); backupErr == nil {
		defer backup.Close()
		return srg.GenerateReportSafely(statement, backup)
	}

	srg.logger.Warn("Backup report path also failed; writing report to stdout")
	return srg.GenerateReportSafely(statement, os.Stdout)
}

// backupReportPath derives an alternative filename alongside the original.
func backupReportPath(original string) string {
	dir := filepath.Dir(original)
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+".backup"+ext)
}

func writerDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w == os.Stdout {
			return "stdout"
		}
		if w == os.Stderr {
			return "stderr"
		}
		return w.Name()
	default:
		return fmt.Sprintf("%T", writer)
	}
}
