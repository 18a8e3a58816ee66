package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"golang-statement-pipeline/internal/models"
)

const (
	recurringMinCount = 3
	recurringTopCount = 5
	unusualTopCount   = 5
	unusualMeanFactor = 3
)

// Mean-gap thresholds, in days, for frequency labeling.
const (
	weeklyGapMax    = 7
	monthlyGapMax   = 31
	quarterlyGapMax = 93
)

// detectRecurringPayments finds merchants with three or more debits and
// labels their billing frequency from the mean gap between consecutive
// charges. Top 5 by charge count.
func detectRecurringPayments(transactions []*models.Transaction) []models.RecurringPayment {
	byMerchant := make(map[string][]*models.Transaction)
	for _, tx := range transactions {
		if !tx.IsDebit() || tx.Merchant == "" {
			continue
		}
		byMerchant[tx.Merchant] = append(byMerchant[tx.Merchant], tx)
	}

	recurring := make([]models.RecurringPayment, 0)
	for merchant, charges := range byMerchant {
		if len(charges) < recurringMinCount {
			continue
		}

		sort.Slice(charges, func(i, j int) bool {
			return charges[i].Date.Before(charges[j].Date)
		})

		total := decimal.Zero
		for _, tx := range charges {
			total = total.Add(tx.Amount)
		}

		recurring = append(recurring, models.RecurringPayment{
			Merchant:         merchant,
			AverageAmount:    total.DivRound(decimal.NewFromInt(int64(len(charges))), 2),
			TransactionCount: len(charges),
			LastDate:         charges[len(charges)-1].Date,
			Frequency:        frequencyFromGaps(charges),
		})
	}

	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].TransactionCount != recurring[j].TransactionCount {
			return recurring[i].TransactionCount > recurring[j].TransactionCount
		}
		return recurring[i].Merchant < recurring[j].Merchant
	})

	if len(recurring) > recurringTopCount {
		recurring = recurring[:recurringTopCount]
	}
	return recurring
}

// frequencyFromGaps labels periodicity from the mean gap between
// consecutive, date-sorted charges.
func frequencyFromGaps(charges []*models.Transaction) models.RecurringFrequency {
	var totalGap time.Duration
	for i := 1; i < len(charges); i++ {
		totalGap += charges[i].Date.Sub(charges[i-1].Date)
	}

	meanGapDays := totalGap.Hours() / 24 / float64(len(charges)-1)
	switch {
	case meanGapDays <= weeklyGapMax:
		return models.FrequencyWeekly
	case meanGapDays <= monthlyGapMax:
		return models.FrequencyMonthly
	case meanGapDays <= quarterlyGapMax:
		return models.FrequencyQuarterly
	default:
		return models.FrequencyIrregular
	}
}

// detectUnusualTransactions flags debits exceeding three times the mean
// debit amount, largest first, up to 5.
func detectUnusualTransactions(transactions []*models.Transaction) []models.UnusualTransaction {
	var debits []*models.Transaction
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.IsDebit() {
			debits = append(debits, tx)
			total = total.Add(tx.Amount)
		}
	}
	if len(debits) == 0 {
		return []models.UnusualTransaction{}
	}

	mean := total.Div(decimal.NewFromInt(int64(len(debits))))
	threshold := mean.Mul(decimal.NewFromInt(unusualMeanFactor))

	unusual := make([]models.UnusualTransaction, 0)
	for _, tx := range debits {
		if tx.Amount.GreaterThan(threshold) {
			unusual = append(unusual, models.UnusualTransaction{
				Transaction: tx,
				MeanRatio:   tx.Amount.Div(mean).Round(1).InexactFloat64(),
			})
		}
	}

	sort.Slice(unusual, func(i, j int) bool {
		return unusual[i].Transaction.Amount.GreaterThan(unusual[j].Transaction.Amount)
	})

	if len(unusual) > unusualTopCount {
		unusual = unusual[:unusualTopCount]
	}
	return unusual
}

// spendingTrends emits per-category debit totals. With only a single
// statement there is no baseline, so every trend is stable with zero
// change; a historical store would supply the comparison period.
func spendingTrends(transactions []*models.Transaction) []models.SpendingTrend {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsDebit() {
			continue
		}
		category := tx.Category
		if category == "" {
			category = "Other"
		}
		totals[category] = totals[category].Add(tx.Amount)
	}

	trends := make([]models.SpendingTrend, 0, len(totals))
	for category, amount := range totals {
		trends = append(trends, models.SpendingTrend{
			Category:      category,
			Amount:        amount,
			Direction:     models.TrendStable,
			ChangePercent: 0,
		})
	}

	sort.Slice(trends, func(i, j int) bool {
		if !trends[i].Amount.Equal(trends[j].Amount) {
			return trends[i].Amount.GreaterThan(trends[j].Amount)
		}
		return trends[i].Category < trends[j].Category
	})
	return trends
}
