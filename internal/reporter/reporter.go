// Package reporter renders processed statements for human and machine
// consumption.
//
// Supported output formats:
//   - Text: human-readable sections for terminal display
//   - JSON: the full processed statement for programmatic consumption
//   - CSV: one row per classified transaction for spreadsheets
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseOutputFormat resolves a user-supplied format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "console" {
		f = FormatText
	}
	if !f.IsValid() {
		return "", pkgerrors.ConfigurationError(
			pkgerrors.CodeInvalidConfig,
			"output_format",
			s,
			nil,
		).WithSuggestion("Use one of: text, json, csv")
	}
	return f, nil
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeTransactions bool `json:"include_transactions"`
	IncludeInsights     bool `json:"include_insights"`
	IncludePatterns     bool `json:"include_patterns"`

	// Text formatting options
	MaxListItems int `json:"max_list_items"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatText,
		IncludeTransactions: false,
		IncludeInsights:     true,
		IncludePatterns:     true,
		MaxListItems:        10,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxListItems < 1 {
		return fmt.Errorf("max list items must be at least 1, got %d", c.MaxListItems)
	}

	return nil
}

// ReportGenerator renders processed statements in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders a processed statement to the provided writer.
func (rg *ReportGenerator) GenerateReport(statement *models.ProcessedStatement, writer io.Writer) error {
	if statement == nil {
		return fmt.Errorf("statement cannot be nil")
	}

	switch rg.config.Format {
	case FormatText:
		return rg.generateTextReport(statement, writer)
	case FormatJSON:
		return rg.generateJSONReport(statement, writer)
	case FormatCSV:
		return rg.generateCSVReport(statement, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateTextReport generates a human-readable text report
func (rg *ReportGenerator) generateTextReport(statement *models.ProcessedStatement, writer io.Writer) error {
	// Report header
	fmt.Fprintf(writer, "STATEMENT ANALYSIS REPORT\n")
	fmt.Fprintf(writer, "Statement ID: %s\n", statement.StatementID)
	if statement.BankName != "" {
		fmt.Fprintf(writer, "Bank: %s\n", statement.BankName)
	}
	if statement.Period != nil {
		fmt.Fprintf(writer, "Period: %s\n", statement.Period)
	}
	fmt.Fprintf(writer, "Status: %s\n", statement.Status)
	fmt.Fprintf(writer, "Processing Time: %dms\n\n", statement.ProcessingTime)

	if statement.Status == models.StatusFailed {
		fmt.Fprintf(writer, "Error: %s\n", statement.ErrorMessage)
		return nil
	}

	analysis := statement.Analysis
	if analysis == nil {
		return fmt.Errorf("completed statement has no analysis")
	}

	// Summary section
	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummary(&analysis.Summary, writer)
	fmt.Fprintf(writer, "\n")

	// Category breakdown
	if len(analysis.Categories) > 0 {
		fmt.Fprintf(writer, "=== SPENDING BY CATEGORY ===\n")
		rg.printCategories(analysis.Categories, writer)
		fmt.Fprintf(writer, "\n")
	}

	// Top merchants
	if len(analysis.TopMerchants) > 0 {
		fmt.Fprintf(writer, "=== TOP MERCHANTS ===\n")
		rg.printMerchants(analysis.TopMerchants, writer)
		fmt.Fprintf(writer, "\n")
	}

	// Monthly breakdown
	if len(analysis.Monthly) > 1 {
		fmt.Fprintf(writer, "=== MONTHLY BREAKDOWN ===\n")
		rg.printMonthly(analysis.Monthly, writer)
		fmt.Fprintf(writer, "\n")
	}

	// Detected patterns
	if rg.config.IncludePatterns {
		rg.printPatterns(&analysis.Patterns, writer)
	}

	// Insights
	if rg.config.IncludeInsights && len(analysis.Insights) > 0 {
		fmt.Fprintf(writer, "=== INSIGHTS ===\n")
		for _, insight := range analysis.Insights {
			fmt.Fprintf(writer, "  - %s\n", insight)
		}
		fmt.Fprintf(writer, "\n")
	}

	// Full transaction listing
	if rg.config.IncludeTransactions && len(statement.Transactions) > 0 {
		fmt.Fprintf(writer, "=== TRANSACTIONS ===\n")
		rg.printTransactionList(statement.Transactions, writer)
	}

	return nil
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(statement *models.ProcessedStatement, writer io.Writer) error {
	filtered := rg.filterStatementForOutput(statement)

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(filtered)
}

// generateCSVReport generates a CSV report with one row per transaction
func (rg *ReportGenerator) generateCSVReport(statement *models.ProcessedStatement, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Date",
			"Description",
			"Amount",
			"Type",
			"Balance",
			"Reference",
			"Category",
			"Merchant",
			"Confidence",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, tx := range statement.Transactions {
		balance := ""
		if tx.Balance != nil {
			balance = tx.Balance.StringFixed(2)
		}
		confidence := ""
		if tx.Confidence != nil {
			confidence = fmt.Sprintf("%.2f", *tx.Confidence)
		}

		record := []string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.Type),
			balance,
			tx.Reference,
			tx.Category,
			tx.Merchant,
			confidence,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction record: %w", err)
		}
	}

	return nil
}

// Helper methods for text output formatting

func (rg *ReportGenerator) printSummary(summary *models.Summary, writer io.Writer) {
	fmt.Fprintf(writer, "Transactions:      %d\n", summary.TotalTransactions)
	fmt.Fprintf(writer, "Total Income:      %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(writer, "Total Expenses:    %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Fprintf(writer, "Net Cash Flow:     %s\n", summary.NetCashFlow.StringFixed(2))

	if summary.AverageBalance != nil {
		fmt.Fprintf(writer, "Average Balance:   %s\n", summary.AverageBalance.StringFixed(2))
	}
}

func (rg *ReportGenerator) printCategories(categories []models.CategoryBreakdown, writer io.Writer) {
	for _, cat := range categories {
		fmt.Fprintf(writer, "  %-24s %12s  (%d transactions, %.1f%%)\n",
			cat.Category,
			cat.Amount.StringFixed(2),
			cat.TransactionCount,
			cat.Percentage)
	}
}

func (rg *ReportGenerator) printMerchants(merchants []models.MerchantSummary, writer io.Writer) {
	for i, merchant := range merchants {
		fmt.Fprintf(writer, "  %d. %s: %s (%d transactions)\n",
			i+1,
			merchant.Merchant,
			merchant.Amount.StringFixed(2),
			merchant.TransactionCount)
	}
}

func (rg *ReportGenerator) printMonthly(monthly []models.MonthlyBreakdown, writer io.Writer) {
	for _, month := range monthly {
		fmt.Fprintf(writer, "  %s  income %12s  expenses %12s\n",
			month.Month,
			month.Income.StringFixed(2),
			month.Expenses.StringFixed(2))
	}
}

func (rg *ReportGenerator) printPatterns(patterns *models.DetectedPatterns, writer io.Writer) {
	if len(patterns.RecurringPayments) > 0 {
		fmt.Fprintf(writer, "=== RECURRING PAYMENTS ===\n")
		for _, payment := range patterns.RecurringPayments {
			fmt.Fprintf(writer, "  - %s: %s %s (%d payments, last %s)\n",
				payment.Merchant,
				payment.AverageAmount.StringFixed(2),
				payment.Frequency,
				payment.TransactionCount,
				payment.LastDate.Format("2006-01-02"))
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(patterns.UnusualTransactions) > 0 {
		fmt.Fprintf(writer, "=== UNUSUAL TRANSACTIONS ===\n")
		for _, unusual := range patterns.UnusualTransactions {
			fmt.Fprintf(writer, "  - %s %s %q (%.1fx the average debit)\n",
				unusual.Transaction.Date.Format("2006-01-02"),
				unusual.Transaction.Amount.StringFixed(2),
				truncate(unusual.Transaction.Description, 48),
				unusual.MeanRatio)
		}
		fmt.Fprintf(writer, "\n")
	}
}

func (rg *ReportGenerator) printTransactionList(transactions []*models.Transaction, writer io.Writer) {
	limit := rg.config.MaxListItems
	for i, tx := range transactions {
		category := tx.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(writer, "  %d. %s %10s %-6s %-20s %s\n",
			i+1,
			tx.Date.Format("2006-01-02"),
			tx.Amount.StringFixed(2),
			tx.Type,
			category,
			truncate(tx.Description, 48))

		// Limit output for very long lists
		if i+1 >= limit && len(transactions) > limit {
			fmt.Fprintf(writer, "  ... and %d more\n", len(transactions)-limit)
			break
		}
	}
}

func (rg *ReportGenerator) filterStatementForOutput(statement *models.ProcessedStatement) map[string]interface{} {
	output := map[string]interface{}{
		"statement_id":       statement.StatementID,
		"status":             statement.Status,
		"processing_time_ms": statement.ProcessingTime,
		"generated_at":       time.Now().UTC().Format(time.RFC3339),
	}

	if statement.BankName != "" {
		output["bank_name"] = statement.BankName
	}
	if statement.Period != nil {
		output["statement_period"] = statement.Period
	}
	if statement.ErrorMessage != "" {
		output["error_message"] = statement.ErrorMessage
	}
	if statement.Analysis != nil {
		output["analysis"] = statement.Analysis
	}
	if rg.config.IncludeTransactions && statement.Transactions != nil {
		output["transactions"] = statement.Transactions
	}

	return output
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
