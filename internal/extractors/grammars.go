package extractors

import (
	"regexp"
	"strings"

	"golang-statement-pipeline/internal/dialect"
	"golang-statement-pipeline/internal/models"
)

// lineGrammar is one pure line-parsing strategy: it either yields a raw
// record or reports no match. Each dialect's grammar is independently
// unit-testable with literal sample lines.
type lineGrammar func(line string) (models.RawTransactionRecord, bool)

// grammarFor returns the dedicated line grammar for a dialect. Generic has
// no dedicated grammar; callers use the cascade instead.
func grammarFor(d dialect.Dialect) (lineGrammar, bool) {
	switch d {
	case dialect.DialectGTBank:
		return parseGTBankLine, true
	case dialect.DialectAccess:
		return parseAccessLine, true
	case dialect.DialectZenith:
		return parseZenithLine, true
	case dialect.DialectFirstBank:
		return parseFirstBankLine, true
	case dialect.DialectKuda:
		return parseKudaLine, true
	case dialect.DialectOPay:
		return parseOPayLine, true
	case dialect.DialectUBA:
		return parseUBALine, true
	default:
		return nil, false
	}
}

// The dialect regexes below are empirically tuned against sample
// statements. Treat them as configuration data and validate changes
// against real documents; a wrong pattern drops lines silently rather
// than erroring.

// GTBank: "01-Feb-2024 TRF/JOHN DOE/App:To Savings 25,000.00 DR 125,430.50"
var gtbankPattern = regexp.MustCompile(
	`^(\d{1,2}-[A-Za-z]{3}-\d{4})\s+(.+?)\s+([\d,]+\.\d{2})\s+(DR|CR)\s+([\d,]+\.\d{2})\s*$`)

func parseGTBankLine(line string) (models.RawTransactionRecord, bool) {
	m := gtbankPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		TypeHint:    m[4],
		Balance:     m[5],
	}, true
}

// Access Bank: fixed-width export collapses to concatenated fields with no
// separators once extracted: "02/01/2024POS PURCHASE SHOPRITE4,500.00DR150,300.25"
var accessPattern = regexp.MustCompile(
	`^(\d{2}/\d{2}/\d{4})(.+?)([\d,]+\.\d{2})(DR|CR)([\d,]+\.\d{2})\s*$`)

func parseAccessLine(line string) (models.RawTransactionRecord, bool) {
	m := accessPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		TypeHint:    m[4],
		Balance:     m[5],
	}, true
}

// Zenith: "02/01/2024 POS PURCHASE SHOPRITE LEKKI 4,500.00DR 150,300.25"
// (DR/CR rides on the amount itself).
var zenithPattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+([\d,]+\.\d{2})(DR|CR)\s+([\d,]+\.\d{2})\s*$`)

func parseZenithLine(line string) (models.RawTransactionRecord, bool) {
	m := zenithPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		TypeHint:    m[4],
		Balance:     m[5],
	}, true
}

// First Bank: "02-Jan-24 NIP TRANSFER ADEBAYO 15,000.00- 85,200.10"
// (trailing minus marks withdrawals; its absence marks deposits).
var firstbankPattern = regexp.MustCompile(
	`^(\d{1,2}-[A-Za-z]{3}-\d{2})\s+(.+?)\s+([\d,]+\.\d{2}-?)\s+([\d,]+\.\d{2})\s*$`)

func parseFirstBankLine(line string) (models.RawTransactionRecord, bool) {
	m := firstbankPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}

	record := models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		Balance:     m[4],
	}
	if strings.HasSuffix(m[3], "-") {
		record.TypeHint = "DR"
	} else {
		record.TypeHint = "CR"
	}
	return record, true
}

// Kuda: "2024-01-02 Spend and Save -1,500.00 23,450.00 ref:TX12345"
var kudaPattern = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})\s+(.+?)\s+([+-][\d,]+\.\d{2})\s+([\d,]+\.\d{2})(?:\s+ref:(\S+))?\s*$`)

func parseKudaLine(line string) (models.RawTransactionRecord, bool) {
	m := kudaPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		Balance:     m[4],
		Reference:   m[5],
	}, true
}

// OPay: "02/01/2024 10:23 Transfer to JOHN DOE -₦5,000.00 Ref: 240102100233"
var opayPattern = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{4})(?:\s+\d{2}:\d{2})?\s+(.+?)\s+([+-]₦?[\d,]+\.\d{2})(?:\s+Ref:\s*(\S+))?\s*$`)

func parseOPayLine(line string) (models.RawTransactionRecord, bool) {
	m := opayPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		Reference:   m[4],
	}, true
}

// UBA: "02 Jan 2024 ATM WITHDRAWAL IKEJA 20,000.00 DR 65,430.00"
var ubaPattern = regexp.MustCompile(
	`^(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s+(.+?)\s+([\d,]+\.\d{2})\s+(DR|CR)\s+([\d,]+\.\d{2})\s*$`)

func parseUBALine(line string) (models.RawTransactionRecord, bool) {
	m := ubaPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return models.RawTransactionRecord{}, false
	}
	return models.RawTransactionRecord{
		Date:        m[1],
		Description: strings.TrimSpace(m[2]),
		Amount:      m[3],
		TypeHint:    m[4],
		Balance:     m[5],
	}, true
}

// Generic cascade: ordered, increasingly permissive patterns. The first
// pattern that yields a parseable result wins.

const datePrefix = `(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}[- ][A-Za-z]{3}[- ]\d{2,4})`

var genericPatterns = []*regexp.Regexp{
	// date description amount balance
	regexp.MustCompile(`^` + datePrefix + `\s+(.+?)\s+([+-]?₦?[\d,]+\.\d{2})\s+₦?[\d,]+\.\d{2}\s*$`),
	// date description signed-amount
	regexp.MustCompile(`^` + datePrefix + `\s+(.+?)\s+([+-]₦?[\d,]+\.\d{2})\s*$`),
	// date description amount (no sign, no balance; loosest)
	regexp.MustCompile(`^` + datePrefix + `\s+(.+?)\s+([+-]?₦?[\d,]+(?:\.\d{1,2})?)\s*$`),
}

func genericCascade(line string) (models.RawTransactionRecord, bool) {
	trimmed := strings.TrimSpace(line)

	for _, pattern := range genericPatterns {
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		description := strings.TrimSpace(m[2])
		if description == "" {
			continue
		}

		return models.RawTransactionRecord{
			Date:        m[1],
			Description: description,
			Amount:      m[3],
		}, true
	}

	return models.RawTransactionRecord{}, false
}

// Non-transaction lines skipped before pattern matching.

const minLineLength = 10

// Lines beginning with these phrases are section totals or headers.
var skipPrefixes = []string{
	"total", "sub total", "subtotal", "grand total",
	"opening balance", "closing balance",
	"balance brought forward", "balance carried forward",
	"date ", "date\t", "statement of account", "transaction history",
	"account number", "account name", "account no", "sort code",
	"page ", "printed on", "generated on",
}

// Lines containing these phrases anywhere are statement furniture.
// Containment matching is kept narrow: a bare "total" here would eat
// legitimate merchant lines ("TOTAL ENERGIES FILLING STATION").
var skipContains = []string{
	"balance brought forward",
	"balance carried forward",
	"end of statement",
	"this is a system generated",
}

func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minLineLength {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, phrase := range skipContains {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}
