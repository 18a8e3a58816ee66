// Package dialect classifies an extracted statement document as one of the
// known institution layouts. Detection is an ordered, case-insensitive
// substring search over per-dialect indicator phrases.
//
// The registry order is a design contract, not an implementation detail:
// dialects with long, specific indicators are checked first, and UBA is
// deliberately checked last. Its three-letter code also appears inside
// unrelated address tokens ("Tsubaki Street"), so it is matched only as a
// whole token, never as a substring. New dialects must be inserted with
// specificity in mind or they will silently produce false positives. The
// phrase lists are empirically tuned against sample statements; treat them
// as configuration data.
package dialect

import "strings"

// Dialect identifies one institution-specific statement layout.
type Dialect string

const (
	DialectGTBank    Dialect = "gtbank"
	DialectAccess    Dialect = "access"
	DialectZenith    Dialect = "zenith"
	DialectFirstBank Dialect = "firstbank"
	DialectKuda      Dialect = "kuda"
	DialectOPay      Dialect = "opay"
	DialectUBA       Dialect = "uba"
	DialectGeneric   Dialect = "generic"
)

// String returns the dialect tag.
func (d Dialect) String() string {
	return string(d)
}

// BankName returns the human-readable institution name for a dialect.
func (d Dialect) BankName() string {
	switch d {
	case DialectGTBank:
		return "Guaranty Trust Bank"
	case DialectAccess:
		return "Access Bank"
	case DialectZenith:
		return "Zenith Bank"
	case DialectFirstBank:
		return "First Bank of Nigeria"
	case DialectKuda:
		return "Kuda Microfinance Bank"
	case DialectOPay:
		return "OPay Digital Services"
	case DialectUBA:
		return "United Bank for Africa"
	default:
		return "Unknown Bank"
	}
}

// dialectSignature pairs a dialect with its indicator phrases. A document
// matches a signature when any phrase appears in it, case-insensitively.
// Short codes that could occur inside unrelated words go in words instead
// and match only as whole tokens.
type dialectSignature struct {
	dialect    Dialect
	indicators []string
	words      []string
}

// Ordered registry, highest specificity first. See the package comment
// before reordering.
var registry = []dialectSignature{
	{DialectGTBank, []string{
		"guaranty trust bank",
		"gtbank",
		"gtworld",
		"gtco plc",
	}, nil},
	{DialectZenith, []string{
		"zenith bank",
		"zenithbank.com",
		"zenith international bank",
	}, nil},
	{DialectFirstBank, []string{
		"first bank of nigeria",
		"firstbank",
		"firstmobile",
	}, nil},
	{DialectAccess, []string{
		"access bank",
		"accessbankplc",
		"access more",
		"diamond bank", // legacy exports after the merger keep the old header
	}, nil},
	{DialectKuda, []string{
		"kuda microfinance",
		"kuda bank",
		"kuda.com",
	}, nil},
	{DialectOPay, []string{
		"opay digital services",
		"opay wallet",
		"opaweb",
	}, nil},
	// UBA last: "uba" occurs inside ordinary words and address tokens, so
	// the bare code is restricted to whole-token matches and only tried
	// when nothing more specific did.
	{
		dialect: DialectUBA,
		indicators: []string{
			"united bank for africa",
			"ubagroup.com",
			"uba plc",
		},
		words: []string{"uba"},
	},
}

// Detect classifies the full extracted document text. Unmatched text maps
// to DialectGeneric. The first matching dialect in registry order wins.
func Detect(text string) Dialect {
	if strings.TrimSpace(text) == "" {
		return DialectGeneric
	}

	lower := strings.ToLower(text)

	for _, sig := range registry {
		for _, indicator := range sig.indicators {
			if strings.Contains(lower, indicator) {
				return sig.dialect
			}
		}
		for _, word := range sig.words {
			if containsToken(lower, word) {
				return sig.dialect
			}
		}
	}

	return DialectGeneric
}

// containsToken reports whether word occurs in the lowercased text as a
// whole alphanumeric token. "uba plc" matches; "tsubaki" does not.
func containsToken(text, word string) bool {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, token := range tokens {
		if token == word {
			return true
		}
	}
	return false
}

// Known returns every registered dialect tag, in detection order, with
// generic appended.
func Known() []Dialect {
	out := make([]Dialect, 0, len(registry)+1)
	for _, sig := range registry {
		out = append(out, sig.dialect)
	}
	return append(out, DialectGeneric)
}
