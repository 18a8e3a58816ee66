package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the headline figures for one statement.
type Summary struct {
	TotalTransactions int              `json:"total_transactions"`
	TotalIncome       decimal.Decimal  `json:"total_income"`
	TotalExpenses     decimal.Decimal  `json:"total_expenses"`
	NetCashFlow       decimal.Decimal  `json:"net_cash_flow"`
	AverageBalance    *decimal.Decimal `json:"average_balance,omitempty"`
	Period            *StatementPeriod `json:"period,omitempty"`
}

// CategoryBreakdown is one row of the per-category spend table.
type CategoryBreakdown struct {
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       float64         `json:"percentage"`
}

// MerchantSummary is one row of the top-merchants table.
type MerchantSummary struct {
	Merchant         string          `json:"merchant"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transaction_count"`
}

// MonthlyBreakdown aggregates income and expenses for one calendar month.
type MonthlyBreakdown struct {
	Month    string          `json:"month"` // "2006-01"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// RecurringFrequency labels the inferred periodicity of a recurring payment
type RecurringFrequency string

const (
	FrequencyWeekly    RecurringFrequency = "weekly"
	FrequencyMonthly   RecurringFrequency = "monthly"
	FrequencyQuarterly RecurringFrequency = "quarterly"
	FrequencyIrregular RecurringFrequency = "irregular"
)

// RecurringPayment is a merchant that received three or more debit
// transactions within the statement, with an inferred billing frequency.
type RecurringPayment struct {
	Merchant         string             `json:"merchant"`
	AverageAmount    decimal.Decimal    `json:"average_amount"`
	TransactionCount int                `json:"transaction_count"`
	LastDate         time.Time          `json:"last_date"`
	Frequency        RecurringFrequency `json:"frequency"`
}

// UnusualTransaction is a debit whose amount exceeds three times the mean
// debit amount for the statement.
type UnusualTransaction struct {
	Transaction *Transaction `json:"transaction"`
	MeanRatio   float64      `json:"mean_ratio"` // amount / mean debit amount
}

// TrendDirection labels the direction of a spending trend
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// SpendingTrend is a per-category spend total. Direction and change are
// stable placeholders unless a historical period is supplied; a single
// statement has no baseline to trend against.
type SpendingTrend struct {
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     TrendDirection  `json:"direction"`
	ChangePercent float64         `json:"change_percent"`
}

// DetectedPatterns bundles the pattern-detection output.
type DetectedPatterns struct {
	RecurringPayments   []RecurringPayment   `json:"recurring_payments"`
	UnusualTransactions []UnusualTransaction `json:"unusual_transactions"`
	SpendingTrends      []SpendingTrend      `json:"spending_trends"`
}

// AnalysisResult is the full aggregate produced once per statement.
// It is immutable after construction.
type AnalysisResult struct {
	Summary      Summary             `json:"summary"`
	Categories   []CategoryBreakdown `json:"categories"`
	TopMerchants []MerchantSummary   `json:"top_merchants"`
	Monthly      []MonthlyBreakdown  `json:"monthly"`
	Patterns     DetectedPatterns    `json:"patterns"`

	// Insights is populated by the external text-generation collaborator
	// after aggregation; the aggregator itself leaves it empty.
	Insights []string `json:"insights"`
}

// EmptyAnalysisResult returns a zeroed result for an empty ledger.
func EmptyAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Summary: Summary{
			TotalIncome:   decimal.Zero,
			TotalExpenses: decimal.Zero,
			NetCashFlow:   decimal.Zero,
		},
		Categories:   []CategoryBreakdown{},
		TopMerchants: []MerchantSummary{},
		Monthly:      []MonthlyBreakdown{},
		Patterns: DetectedPatterns{
			RecurringPayments:   []RecurringPayment{},
			UnusualTransactions: []UnusualTransaction{},
			SpendingTrends:      []SpendingTrend{},
		},
		Insights: []string{},
	}
}
