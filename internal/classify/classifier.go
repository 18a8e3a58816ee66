// Package classify assigns a spending category and merchant to every
// transaction in a ledger. An AI classifier does the real work; a keyword
// fallback guarantees the post-condition (every transaction classified)
// when the AI is unavailable, rate-limited, or too slow. The orchestrator
// decides per transaction which of the two answers is used and never
// surfaces an error to its caller.
package classify

import "context"

// CategoryResult is one category assignment.
type CategoryResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// MerchantResult is one merchant extraction.
type MerchantResult struct {
	Merchant   string  `json:"merchant"`
	Confidence float64 `json:"confidence"`
}

// Classifier answers category and merchant questions about a single
// transaction description. Implementations must honor ctx cancellation.
type Classifier interface {
	ClassifyCategory(ctx context.Context, description string) (CategoryResult, error)
	ExtractMerchant(ctx context.Context, description string) (MerchantResult, error)
}

// Categories is the canonical category vocabulary. The AI prompt constrains
// answers to this list and the fallback tables map into it.
var Categories = []string{
	"Food & Dining",
	"Groceries",
	"Transport",
	"Airtime & Data",
	"Utilities",
	"Entertainment",
	"Shopping",
	"Health",
	"Education",
	"Rent",
	"Fees & Charges",
	"Transfers",
	"Income",
	"Savings & Investments",
	"Cash Withdrawal",
	"Other",
}

// CategoryOther is the catch-all category.
const CategoryOther = "Other"

// IsKnownCategory reports whether the category is in the canonical
// vocabulary.
func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
