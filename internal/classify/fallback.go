package classify

import (
	"context"
	"strings"
)

// FallbackConfidence marks results produced without the AI classifier.
const FallbackConfidence = 0.3

// keywordRule maps description keywords to a category. Rules are checked
// in order and the first match wins, so more specific keywords come first.
type keywordRule struct {
	keywords []string
	category string
}

// The keyword tables are tuned against sample statements; ordering is
// load-bearing ("uber eats" must match before "uber").
var keywordRules = []keywordRule{
	{[]string{"uber eats", "chowdeck", "glovo", "jumia food", "restaurant", "eatery", "kfc", "chicken republic", "dominos", "pizza", "cafe", "bukka"}, "Food & Dining"},
	{[]string{"shoprite", "spar", "supermarket", "grocery", "market square", "justrite", "foodco"}, "Groceries"},
	{[]string{"uber", "bolt", "taxi", "brt", "danfo", "fuel", "petrol", "filling station", "total energies", "nnpc", "mobil", "oando"}, "Transport"},
	{[]string{"airtime", "data bundle", "mtn", "glo ", "airtel", "9mobile", "recharge", "top-up", "topup"}, "Airtime & Data"},
	{[]string{"nepa", "phcn", "ikedc", "ekedc", "aedc", "electricity", "dstv", "gotv", "startimes", "water bill", "utility"}, "Utilities"},
	{[]string{"netflix", "spotify", "showmax", "cinema", "filmhouse", "betking", "bet9ja", "sportybet", "gaming"}, "Entertainment"},
	{[]string{"jumia", "konga", "amazon", "aliexpress", "boutique", "store", "mall"}, "Shopping"},
	{[]string{"pharmacy", "hospital", "clinic", "medplus", "healthplus", "medical", "lab test"}, "Health"},
	{[]string{"school fees", "tuition", "university", "waec", "jamb", "course", "udemy", "coursera"}, "Education"},
	{[]string{"rent", "landlord", "estate dues", "service charge apartment"}, "Rent"},
	{[]string{"sms charge", "card maintenance", "account maintenance", "stamp duty", "vat", "commission", "bank charge", "sms alert", "fee"}, "Fees & Charges"},
	{[]string{"salary", "payroll", "wages", "allowance"}, "Income"},
	{[]string{"piggyvest", "cowrywise", "bamboo", "risevest", "mutual fund", "treasury bill", "fixed deposit", "investment"}, "Savings & Investments"},
	{[]string{"atm", "cash withdrawal", "cash wd"}, "Cash Withdrawal"},
	{[]string{"trf", "transfer", "nip", "ussd"}, "Transfers"},
}

// FallbackClassifier classifies by keyword lookup. It never fails and
// never blocks, which is exactly what the orchestrator needs when the AI
// path is down.
type FallbackClassifier struct{}

// NewFallbackClassifier creates the keyword classifier.
func NewFallbackClassifier() *FallbackClassifier {
	return &FallbackClassifier{}
}

// ClassifyCategory implements Classifier.
func (f *FallbackClassifier) ClassifyCategory(_ context.Context, description string) (CategoryResult, error) {
	lower := strings.ToLower(description)

	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return CategoryResult{Category: rule.category, Confidence: FallbackConfidence}, nil
			}
		}
	}

	return CategoryResult{Category: CategoryOther, Confidence: FallbackConfidence}, nil
}

// ExtractMerchant implements Classifier: the first three description
// tokens, title-cased. Crude, but it gives the analytics layer a stable
// grouping key when the AI is unavailable.
func (f *FallbackClassifier) ExtractMerchant(_ context.Context, description string) (MerchantResult, error) {
	tokens := strings.Fields(description)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}

	for i, token := range tokens {
		tokens[i] = titleCase(token)
	}

	merchant := strings.Join(tokens, " ")
	if merchant == "" {
		merchant = "Unknown"
	}

	return MerchantResult{Merchant: merchant, Confidence: FallbackConfidence}, nil
}

func titleCase(token string) string {
	lower := strings.ToLower(token)
	for _, r := range lower {
		return strings.ToUpper(string(r)) + lower[len(string(r)):]
	}
	return lower
}
