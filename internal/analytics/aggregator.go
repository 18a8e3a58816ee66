// Package analytics derives the per-statement aggregate: headline summary,
// category and merchant breakdowns, monthly cash flow, and detected
// spending patterns. All money math is decimal; float64 appears only in
// percentages and ratios.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"golang-statement-pipeline/internal/ledger"
	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/pkg/logger"
)

const (
	topCategoryCount = 10
	topMerchantCount = 10
)

// Analyzer computes the statement aggregate.
type Analyzer struct {
	logger logger.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to the global
// logger.
func NewAnalyzer(log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Analyzer{logger: log.WithComponent("analytics")}
}

// Analyze computes the full aggregate for a ledger. An empty ledger yields
// zeroed structures, never nil slices.
func (a *Analyzer) Analyze(transactions []*models.Transaction) *models.AnalysisResult {
	if len(transactions) == 0 {
		return models.EmptyAnalysisResult()
	}

	result := &models.AnalysisResult{
		Summary:      a.summarize(transactions),
		Categories:   a.categoryBreakdown(transactions),
		TopMerchants: a.topMerchants(transactions),
		Monthly:      a.monthlyBreakdown(transactions),
		Patterns: models.DetectedPatterns{
			RecurringPayments:   detectRecurringPayments(transactions),
			UnusualTransactions: detectUnusualTransactions(transactions),
			SpendingTrends:      spendingTrends(transactions),
		},
		Insights: []string{},
	}

	a.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"categories":   len(result.Categories),
		"recurring":    len(result.Patterns.RecurringPayments),
		"unusual":      len(result.Patterns.UnusualTransactions),
	}).Info("Analysis finished")

	return result
}

func (a *Analyzer) summarize(transactions []*models.Transaction) models.Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	balanceSum := decimal.Zero
	balanceCount := 0

	for _, tx := range transactions {
		if tx.IsCredit() {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
		if tx.Balance != nil {
			balanceSum = balanceSum.Add(*tx.Balance)
			balanceCount++
		}
	}

	summary := models.Summary{
		TotalTransactions: len(transactions),
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetCashFlow:       income.Sub(expenses),
		Period:            ledger.Period(transactions),
	}
	if balanceCount > 0 {
		average := balanceSum.DivRound(decimal.NewFromInt(int64(balanceCount)), 2)
		summary.AverageBalance = &average
	}

	return summary
}

// categoryBreakdown ranks categories by debit spend, top 10, with each
// category's share of total expenses.
func (a *Analyzer) categoryBreakdown(transactions []*models.Transaction) []models.CategoryBreakdown {
	totals := make(map[string]*models.CategoryBreakdown)
	totalExpenses := decimal.Zero

	for _, tx := range transactions {
		if !tx.IsDebit() {
			continue
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}

		row, ok := totals[category]
		if !ok {
			row = &models.CategoryBreakdown{Category: category, Amount: decimal.Zero}
			totals[category] = row
		}
		row.Amount = row.Amount.Add(tx.Amount)
		row.TransactionCount++
		totalExpenses = totalExpenses.Add(tx.Amount)
	}

	breakdown := make([]models.CategoryBreakdown, 0, len(totals))
	for _, row := range totals {
		if totalExpenses.IsPositive() {
			row.Percentage = row.Amount.Div(totalExpenses).
				Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		breakdown = append(breakdown, *row)
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if !breakdown[i].Amount.Equal(breakdown[j].Amount) {
			return breakdown[i].Amount.GreaterThan(breakdown[j].Amount)
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	if len(breakdown) > topCategoryCount {
		breakdown = breakdown[:topCategoryCount]
	}
	return breakdown
}

// topMerchants ranks merchants by debit spend, top 10.
func (a *Analyzer) topMerchants(transactions []*models.Transaction) []models.MerchantSummary {
	totals := make(map[string]*models.MerchantSummary)

	for _, tx := range transactions {
		if !tx.IsDebit() || tx.Merchant == "" {
			continue
		}

		row, ok := totals[tx.Merchant]
		if !ok {
			row = &models.MerchantSummary{Merchant: tx.Merchant, Amount: decimal.Zero}
			totals[tx.Merchant] = row
		}
		row.Amount = row.Amount.Add(tx.Amount)
		row.TransactionCount++
	}

	merchants := make([]models.MerchantSummary, 0, len(totals))
	for _, row := range totals {
		merchants = append(merchants, *row)
	}

	sort.Slice(merchants, func(i, j int) bool {
		if !merchants[i].Amount.Equal(merchants[j].Amount) {
			return merchants[i].Amount.GreaterThan(merchants[j].Amount)
		}
		return merchants[i].Merchant < merchants[j].Merchant
	})

	if len(merchants) > topMerchantCount {
		merchants = merchants[:topMerchantCount]
	}
	return merchants
}

// monthlyBreakdown aggregates income and expenses per calendar month,
// chronologically.
func (a *Analyzer) monthlyBreakdown(transactions []*models.Transaction) []models.MonthlyBreakdown {
	totals := make(map[string]*models.MonthlyBreakdown)

	for _, tx := range transactions {
		month := tx.Date.Format("2006-01")
		row, ok := totals[month]
		if !ok {
			row = &models.MonthlyBreakdown{
				Month:    month,
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
			}
			totals[month] = row
		}
		if tx.IsCredit() {
			row.Income = row.Income.Add(tx.Amount)
		} else {
			row.Expenses = row.Expenses.Add(tx.Amount)
		}
	}

	monthly := make([]models.MonthlyBreakdown, 0, len(totals))
	for _, row := range totals {
		monthly = append(monthly, *row)
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Month < monthly[j].Month
	})
	return monthly
}
