// Package ledger converts raw extracted records into the canonical
// transaction form the rest of the pipeline operates on. Normalization is
// lossy on purpose: a record without a parseable date, a description, or a
// positive amount carries no analyzable information and is dropped with a
// diagnostic rather than poisoning downstream aggregates.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/internal/normalize"
	"golang-statement-pipeline/pkg/logger"
)

// NormalizeStats summarizes one normalization run.
type NormalizeStats struct {
	RecordsIn  int `json:"records_in"`
	Normalized int `json:"normalized"`
	Dropped    int `json:"dropped"`
}

// Normalizer turns raw transaction records into validated transactions.
type Normalizer struct {
	logger logger.Logger
	stats  NormalizeStats
}

// NewNormalizer creates a normalizer. A nil logger falls back to the
// global logger.
func NewNormalizer(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Normalizer{logger: log.WithComponent("ledger")}
}

// Stats returns counters for the most recent Normalize call.
func (n *Normalizer) Stats() NormalizeStats {
	return n.stats
}

// Normalize converts raw records into transactions. Every returned
// transaction satisfies Validate: parseable date, non-empty description,
// strictly positive amount, resolved direction.
func (n *Normalizer) Normalize(records []models.RawTransactionRecord) []*models.Transaction {
	n.stats = NormalizeStats{RecordsIn: len(records)}

	transactions := make([]*models.Transaction, 0, len(records))
	for _, record := range records {
		tx, ok := n.normalizeRecord(record)
		if !ok {
			n.stats.Dropped++
			continue
		}
		transactions = append(transactions, tx)
		n.stats.Normalized++
	}

	n.logger.WithFields(logger.Fields{
		"records_in": n.stats.RecordsIn,
		"normalized": n.stats.Normalized,
		"dropped":    n.stats.Dropped,
	}).Info("Ledger normalization finished")

	return transactions
}

func (n *Normalizer) normalizeRecord(record models.RawTransactionRecord) (*models.Transaction, bool) {
	date, ok := normalize.ParseDate(record.Date)
	if !ok {
		n.dropped(record, "unparseable date", record.Date)
		return nil, false
	}

	description := strings.Join(strings.Fields(record.Description), " ")
	if description == "" {
		n.dropped(record, "empty description", "")
		return nil, false
	}

	amount, txType := resolveAmount(record)
	if !amount.IsPositive() {
		n.dropped(record, "no positive amount", record.Amount)
		return nil, false
	}

	tx := models.NewTransaction(date, description, amount, txType)
	tx.Reference = strings.TrimSpace(record.Reference)

	if balanceRaw := strings.TrimSpace(record.Balance); balanceRaw != "" {
		balance := normalize.ParseAmount(balanceRaw)
		tx.Balance = &balance
	}

	return tx, true
}

// resolveAmount picks the transaction value and direction from whichever
// columns the record carries. Precedence: dedicated debit/credit columns,
// then the type-hint column, then sign markers on the amount itself, then
// debit as the default: bank statements list money movements, and an
// unmarked movement is overwhelmingly an outflow.
func resolveAmount(record models.RawTransactionRecord) (amount decimal.Decimal, txType models.TransactionType) {
	if debit := normalize.ParseAmount(record.DebitAmount); debit.IsPositive() {
		return debit, models.TransactionTypeDebit
	}
	if credit := normalize.ParseAmount(record.CreditAmount); credit.IsPositive() {
		return credit, models.TransactionTypeCredit
	}

	amount = normalize.ParseAmount(record.Amount)

	if txType, ok := normalize.DirectionFromHint(record.TypeHint); ok {
		return amount, txType
	}
	if txType, ok := normalize.DirectionFromAmount(record.Amount); ok {
		return amount, txType
	}

	return amount, models.TransactionTypeDebit
}

func (n *Normalizer) dropped(record models.RawTransactionRecord, reason, value string) {
	n.logger.WithFields(logger.Fields{
		"line":   record.SourceLine,
		"reason": reason,
		"value":  value,
	}).Debug("Dropped record during normalization")
}

// Period derives the statement period from the earliest and latest
// transaction dates. Returns nil for an empty ledger.
func Period(transactions []*models.Transaction) *models.StatementPeriod {
	if len(transactions) == 0 {
		return nil
	}

	period := models.StatementPeriod{
		StartDate: transactions[0].Date,
		EndDate:   transactions[0].Date,
	}
	for _, tx := range transactions[1:] {
		if tx.Date.Before(period.StartDate) {
			period.StartDate = tx.Date
		}
		if tx.Date.After(period.EndDate) {
			period.EndDate = tx.Date
		}
	}
	return &period
}
