package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-statement-pipeline/internal/models"
)

func createTestStatement() *models.ProcessedStatement {
	confidence := 0.9
	balance := decimal.NewFromInt(95500)

	transactions := []*models.Transaction{
		{
			Date:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Description: "POS PURCHASE SHOPRITE LAGOS",
			Amount:      decimal.NewFromFloat(4500.50),
			Type:        models.TransactionTypeDebit,
			Balance:     &balance,
			Reference:   "REF001",
			Category:    "Groceries",
			Merchant:    "Shoprite",
			Confidence:  &confidence,
		},
		{
			Date:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Description: "SALARY JANUARY",
			Amount:      decimal.NewFromInt(250000),
			Type:        models.TransactionTypeCredit,
			Category:    "Income",
			Merchant:    "Employer",
			Confidence:  &confidence,
		},
	}

	analysis := &models.AnalysisResult{
		Summary: models.Summary{
			TotalTransactions: 2,
			TotalIncome:       decimal.NewFromInt(250000),
			TotalExpenses:     decimal.NewFromFloat(4500.50),
			NetCashFlow:       decimal.NewFromFloat(245499.50),
		},
		Categories: []models.CategoryBreakdown{
			{Category: "Groceries", Amount: decimal.NewFromFloat(4500.50), TransactionCount: 1, Percentage: 100.0},
		},
		TopMerchants: []models.MerchantSummary{
			{Merchant: "Shoprite", Amount: decimal.NewFromFloat(4500.50), TransactionCount: 1},
		},
		Monthly: []models.MonthlyBreakdown{
			{Month: "2024-01", Income: decimal.NewFromInt(250000), Expenses: decimal.NewFromFloat(4500.50)},
		},
		Patterns: models.DetectedPatterns{
			RecurringPayments: []models.RecurringPayment{
				{
					Merchant:         "Netflix",
					AverageAmount:    decimal.NewFromInt(4400),
					TransactionCount: 3,
					LastDate:         time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
					Frequency:        models.FrequencyMonthly,
				},
			},
			UnusualTransactions: []models.UnusualTransaction{
				{Transaction: transactions[0], MeanRatio: 4.3},
			},
			SpendingTrends: []models.SpendingTrend{},
		},
		Insights: []string{"Most of your spending went to groceries."},
	}

	return &models.ProcessedStatement{
		StatementID:  "stmt-test-001",
		Transactions: transactions,
		Analysis:     analysis,
		BankName:     "Guaranty Trust Bank",
		Period: &models.StatementPeriod{
			StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		Status:         models.StatusCompleted,
		ProcessingTime: 1200,
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: " csv ", want: FormatCSV},
		{input: "console", want: FormatText},
		{input: "xml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOutputFormat(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOutputFormat(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestReportConfigValidation(t *testing.T) {
	config := DefaultReportConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	config.Format = "xml"
	if err := config.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}

	config = DefaultReportConfig()
	config.MaxListItems = 0
	if err := config.Validate(); err == nil {
		t.Error("expected error for zero max list items")
	}
}

func TestTextReport(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	expected := []string{
		"STATEMENT ANALYSIS REPORT",
		"stmt-test-001",
		"Guaranty Trust Bank",
		"=== SUMMARY ===",
		"Total Income:      250000.00",
		"Total Expenses:    4500.50",
		"=== SPENDING BY CATEGORY ===",
		"Groceries",
		"=== TOP MERCHANTS ===",
		"Shoprite",
		"=== RECURRING PAYMENTS ===",
		"Netflix",
		"monthly",
		"=== UNUSUAL TRANSACTIONS ===",
		"4.3x the average debit",
		"=== INSIGHTS ===",
		"Most of your spending went to groceries.",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("text report missing %q\ngot:\n%s", want, output)
		}
	}

	// A single month is not worth a breakdown section.
	if strings.Contains(output, "=== MONTHLY BREAKDOWN ===") {
		t.Error("monthly breakdown should be omitted for a single month")
	}
	if strings.Contains(output, "=== TRANSACTIONS ===") {
		t.Error("transaction listing should be off by default")
	}
}

func TestTextReportWithTransactions(t *testing.T) {
	config := DefaultReportConfig()
	config.IncludeTransactions = true
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "=== TRANSACTIONS ===") {
		t.Error("expected transaction listing")
	}
	if !strings.Contains(output, "POS PURCHASE SHOPRITE LAGOS") {
		t.Error("expected transaction description in listing")
	}
}

func TestTextReportTruncatesLongLists(t *testing.T) {
	config := DefaultReportConfig()
	config.IncludeTransactions = true
	config.MaxListItems = 1
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	if !strings.Contains(buf.String(), "... and 1 more") {
		t.Errorf("expected truncation marker, got:\n%s", buf.String())
	}
}

func TestTextReportFailedStatement(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	statement := &models.ProcessedStatement{
		StatementID:  "stmt-failed",
		Status:       models.StatusFailed,
		ErrorMessage: "no transactions found",
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(statement, &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Status: failed") {
		t.Errorf("expected failed status, got:\n%s", output)
	}
	if !strings.Contains(output, "no transactions found") {
		t.Errorf("expected error message, got:\n%s", output)
	}
}

func TestJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON report is not valid JSON: %v", err)
	}

	if decoded["statement_id"] != "stmt-test-001" {
		t.Errorf("unexpected statement_id: %v", decoded["statement_id"])
	}
	if decoded["bank_name"] != "Guaranty Trust Bank" {
		t.Errorf("unexpected bank_name: %v", decoded["bank_name"])
	}
	if _, ok := decoded["analysis"]; !ok {
		t.Error("JSON report missing analysis")
	}
	if _, ok := decoded["transactions"]; ok {
		t.Error("transactions should be excluded by default")
	}
}

func TestJSONReportIncludesTransactions(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	config.IncludeTransactions = true
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON report is not valid JSON: %v", err)
	}
	txs, ok := decoded["transactions"].([]interface{})
	if !ok || len(txs) != 2 {
		t.Errorf("expected 2 transactions in JSON report, got %v", decoded["transactions"])
	}
}

func TestCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV report is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "Date" || records[0][6] != "Category" {
		t.Errorf("unexpected CSV headers: %v", records[0])
	}

	first := records[1]
	if first[0] != "2024-01-02" {
		t.Errorf("unexpected date: %s", first[0])
	}
	if first[2] != "4500.50" {
		t.Errorf("unexpected amount: %s", first[2])
	}
	if first[6] != "Groceries" || first[7] != "Shoprite" {
		t.Errorf("unexpected classification columns: %v", first)
	}
	if first[8] != "0.90" {
		t.Errorf("unexpected confidence: %s", first[8])
	}

	// Second row has no balance.
	if records[2][4] != "" {
		t.Errorf("expected empty balance, got %s", records[2][4])
	}
}

func TestCSVReportWithoutHeaders(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	config.CSVHeaders = false
	generator, err := NewReportGenerator(config)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV report is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 rows without headers, got %d", len(records))
	}
}

func TestGenerateReportNilStatement(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	if err := generator.GenerateReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for nil statement")
	}
}

func TestSafeReportGenerator(t *testing.T) {
	generator, err := NewSafeReportGenerator(nil, nil)
	if err != nil {
		t.Fatalf("NewSafeReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReportSafely(createTestStatement(), &buf); err != nil {
		t.Fatalf("GenerateReportSafely failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected report output")
	}

	if err := generator.GenerateReportSafely(nil, &buf); err == nil {
		t.Error("expected error for nil statement")
	}
	if err := generator.GenerateReportSafely(createTestStatement(), nil); err == nil {
		t.Error("expected error for nil writer")
	}
}

func TestWriteReportFile(t *testing.T) {
	generator, err := NewSafeReportGenerator(nil, nil)
	if err != nil {
		t.Fatalf("NewSafeReportGenerator failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := generator.WriteReportFile(createTestStatement(), path); err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}
	if !strings.Contains(string(content), "STATEMENT ANALYSIS REPORT") {
		t.Error("report file missing expected content")
	}
}

func TestBackupReportPath(t *testing.T) {
	got := backupReportPath("/tmp/report.json")
	want := "/tmp/report.backup.json"
	if got != want {
		t.Errorf("backupReportPath = %s, want %s", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate should not change short strings, got %q", got)
	}
	long := strings.Repeat("x", 60)
	got := truncate(long, 48)
	if len(got) != 48 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation: %q", got)
	}
}
