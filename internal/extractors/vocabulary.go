package extractors

import (
	"strings"

	"golang-statement-pipeline/internal/models"
)

// Field names used by the header vocabulary.
const (
	fieldDate        = "date"
	fieldDescription = "description"
	fieldAmount      = "amount"
	fieldDebit       = "debit"
	fieldCredit      = "credit"
	fieldBalance     = "balance"
	fieldReference   = "reference"
	fieldType        = "type"
)

// fieldSynonyms maps each logical field to its prioritized header-name
// synonyms. For every field, the first synonym that matches a header cell
// wins. The lists are ordered most-specific first so that, e.g., a
// "debit amount" column binds to debit before a bare "amount" column
// binds to amount.
var fieldSynonyms = map[string][]string{
	fieldDate: {
		"transaction date", "trans date", "txn date", "value date",
		"posting date", "date posted", "trans. date", "date",
	},
	fieldDescription: {
		"transaction details", "transaction description", "narration",
		"narrative", "particulars", "details", "description", "remarks",
		"memo", "payee",
	},
	fieldDebit: {
		"debit amount", "paid out", "money out", "withdrawals",
		"withdrawal", "debits", "debit", "dr",
	},
	fieldCredit: {
		"credit amount", "paid in", "money in", "deposits", "deposit",
		"lodgement", "credits", "credit", "cr",
	},
	fieldAmount: {
		"transaction amount", "amount (ngn)", "amount", "value", "amt",
	},
	fieldBalance: {
		"running balance", "available balance", "closing balance",
		"balance", "bal",
	},
	fieldReference: {
		"transaction ref", "reference no", "reference number", "ref no",
		"instrument no", "cheque no", "cheque number", "reference", "ref",
	},
	fieldType: {
		"transaction type", "dr/cr", "dr / cr", "direction", "type",
	},
}

// probeOrder fixes the field-probing order so that debit/credit columns
// claim their headers before the looser amount synonyms are tried.
var probeOrder = []string{
	fieldDate, fieldDescription, fieldDebit, fieldCredit,
	fieldAmount, fieldBalance, fieldReference, fieldType,
}

// columnMap binds logical fields to column indices in one header layout.
type columnMap map[string]int

// has reports whether the field was bound to a column.
func (m columnMap) has(field string) bool {
	_, ok := m[field]
	return ok
}

// normalizeHeader canonicalizes a header cell for synonym matching.
func normalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// mapHeader probes a header row against the synonym vocabulary and returns
// the column bindings. Each column binds to at most one field; each field
// binds to its first matching synonym.
func mapHeader(cells []string) columnMap {
	normalized := make([]string, len(cells))
	for i, cell := range cells {
		normalized[i] = normalizeHeader(cell)
	}

	bound := make(map[int]bool)
	mapping := make(columnMap)

	// Exact matches across every field first, so a "dr/cr" type column is
	// claimed by type before debit's bare "dr" synonym can contain-match it.
	for _, field := range probeOrder {
		for _, synonym := range fieldSynonyms[field] {
			if idx := findHeader(normalized, bound, synonym, false); idx >= 0 {
				mapping[field] = idx
				bound[idx] = true
				break
			}
		}
	}

	// Containment fallback for the fields still unbound, covering headers
	// like "debit (₦)" or "value date / time".
	for _, field := range probeOrder {
		if mapping.has(field) {
			continue
		}
		for _, synonym := range fieldSynonyms[field] {
			if idx := findHeader(normalized, bound, synonym, true); idx >= 0 {
				mapping[field] = idx
				bound[idx] = true
				break
			}
		}
	}

	return mapping
}

// findHeader locates the first unbound header cell matching the synonym,
// exactly or by containment. Returns -1 when no cell matches.
func findHeader(normalized []string, bound map[int]bool, synonym string, contains bool) int {
	for i, header := range normalized {
		if bound[i] || header == "" {
			continue
		}
		if header == synonym || (contains && strings.Contains(header, synonym)) {
			return i
		}
	}
	return -1
}

// usable reports whether the mapping can yield transactions: it needs a
// date, a description, and either a single amount column or at least one
// of debit/credit.
func (m columnMap) usable() bool {
	if !m.has(fieldDate) || !m.has(fieldDescription) {
		return false
	}
	return m.has(fieldAmount) || m.has(fieldDebit) || m.has(fieldCredit)
}

// headerScore counts how many cells of a candidate row match any known
// field synonym. The spreadsheet extractor uses this to locate the header
// row among leading title/metadata rows.
func headerScore(cells []string) (matched, nonEmpty int) {
	for _, cell := range cells {
		header := normalizeHeader(cell)
		if header == "" {
			continue
		}
		nonEmpty++
		if matchesAnyField(header) {
			matched++
		}
	}
	return matched, nonEmpty
}

func matchesAnyField(header string) bool {
	for _, synonyms := range fieldSynonyms {
		for _, synonym := range synonyms {
			if header == synonym || strings.Contains(header, synonym) {
				return true
			}
		}
	}
	return false
}

// cellAt returns the trimmed cell at idx, or "" when the row is short.
func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// mapRow converts one data row into a raw record using the column
// bindings. It fills only the fields the mapping bound; validation happens
// in the ledger normalizer.
func (m columnMap) mapRow(cells []string, line int) models.RawTransactionRecord {
	record := models.RawTransactionRecord{
		SourceLine: line,
	}

	if idx, ok := m[fieldDate]; ok {
		record.Date = cellAt(cells, idx)
	}
	if idx, ok := m[fieldDescription]; ok {
		record.Description = cellAt(cells, idx)
	}
	if idx, ok := m[fieldAmount]; ok {
		record.Amount = cellAt(cells, idx)
	}
	if idx, ok := m[fieldDebit]; ok {
		record.DebitAmount = cellAt(cells, idx)
	}
	if idx, ok := m[fieldCredit]; ok {
		record.CreditAmount = cellAt(cells, idx)
	}
	if idx, ok := m[fieldBalance]; ok {
		record.Balance = cellAt(cells, idx)
	}
	if idx, ok := m[fieldReference]; ok {
		record.Reference = cellAt(cells, idx)
	}
	if idx, ok := m[fieldType]; ok {
		record.TypeHint = cellAt(cells, idx)
	}

	return record
}
