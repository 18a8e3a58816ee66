package normalize

import (
	"strings"

	"golang-statement-pipeline/internal/models"
)

// debit/credit vocabularies for type-hint columns and DR/CR suffixes.
var (
	debitTokens  = []string{"dr", "d", "debit", "dbt", "withdrawal", "wd", "out", "paid out", "payment", "pos"}
	creditTokens = []string{"cr", "c", "credit", "crd", "deposit", "dep", "in", "paid in", "lodgement"}
)

// DirectionFromHint resolves a transaction direction from a raw
// type-column value ("DR", "credit", "Paid Out", ...). Returns ok=false
// when the hint matches neither vocabulary.
func DirectionFromHint(hint string) (models.TransactionType, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return "", false
	}

	for _, token := range debitTokens {
		if h == token {
			return models.TransactionTypeDebit, true
		}
	}
	for _, token := range creditTokens {
		if h == token {
			return models.TransactionTypeCredit, true
		}
	}

	// Fall back to prefix matching for compound values ("DEBIT CARD
	// PURCHASE", "CREDIT TRANSFER").
	if strings.HasPrefix(h, "debit") || strings.HasPrefix(h, "dr ") {
		return models.TransactionTypeDebit, true
	}
	if strings.HasPrefix(h, "credit") || strings.HasPrefix(h, "cr ") {
		return models.TransactionTypeCredit, true
	}

	return "", false
}

// DirectionFromAmount resolves direction from explicit sign markers on the
// raw amount string, or from a trailing DR/CR token some banks append to
// the value itself ("1,500.00CR").
func DirectionFromAmount(raw string) (models.TransactionType, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "DR") {
		return models.TransactionTypeDebit, true
	}
	if strings.HasSuffix(upper, "CR") {
		return models.TransactionTypeCredit, true
	}

	if HasNegativeMarker(s) {
		return models.TransactionTypeDebit, true
	}
	if HasPositiveMarker(s) {
		return models.TransactionTypeCredit, true
	}

	return "", false
}
