package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.0-flash"

// GeminiGenerator produces insights through the Gemini API. The prompt
// carries only aggregate figures, never the raw transaction list, to keep
// the payload small and the statement contents out of the provider logs.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// NewGeminiGenerator creates a Gemini-backed insight generator. apiKey may
// be empty, in which case the client library resolves credentials from the
// environment.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log logger.Logger) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultModelName
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, pkgerrors.ClassificationError(
			pkgerrors.CodeClassifierUnavailable, "", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: log.WithComponent("gemini_insights"),
	}, nil
}

// GenerateInsights implements Generator.
func (g *GeminiGenerator) GenerateInsights(ctx context.Context, transactions []*models.Transaction, analysis *models.AnalysisResult) ([]string, error) {
	prompt := buildPrompt(analysis)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "",
			fmt.Errorf("empty response from model"))
	}

	var lines []string
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &lines); err != nil {
		return nil, pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "",
			fmt.Errorf("unparseable model reply: %w", err))
	}

	insights := make([]string, 0, MaxInsights)
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			insights = append(insights, trimmed)
		}
		if len(insights) == MaxInsights {
			break
		}
	}
	if len(insights) == 0 {
		return nil, pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "",
			fmt.Errorf("model returned no usable insights"))
	}

	return insights, nil
}

// buildPrompt condenses the aggregate into a compact figure sheet.
func buildPrompt(analysis *models.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("You are reviewing a personal bank statement summary. ")
	b.WriteString("Write 3-5 short, specific financial observations a person would find useful.\n\n")

	summary := analysis.Summary
	fmt.Fprintf(&b, "Transactions: %d\n", summary.TotalTransactions)
	fmt.Fprintf(&b, "Total income: %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Total expenses: %s\n", summary.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Net cash flow: %s\n", summary.NetCashFlow.StringFixed(2))
	if summary.Period != nil {
		fmt.Fprintf(&b, "Period: %s\n", summary.Period)
	}

	if len(analysis.Categories) > 0 {
		b.WriteString("\nTop spending categories:\n")
		for _, row := range analysis.Categories {
			fmt.Fprintf(&b, "- %s: %s (%.1f%%, %d transactions)\n",
				row.Category, row.Amount.StringFixed(2), row.Percentage, row.TransactionCount)
		}
	}

	if len(analysis.Patterns.RecurringPayments) > 0 {
		b.WriteString("\nRecurring payments:\n")
		for _, payment := range analysis.Patterns.RecurringPayments {
			fmt.Fprintf(&b, "- %s: %s on average, %s\n",
				payment.Merchant, payment.AverageAmount.StringFixed(2), payment.Frequency)
		}
	}

	if len(analysis.Patterns.UnusualTransactions) > 0 {
		b.WriteString("\nUnusually large debits:\n")
		for _, u := range analysis.Patterns.UnusualTransactions {
			fmt.Fprintf(&b, "- %s: %s (%.1fx the mean debit)\n",
				u.Transaction.Description, u.Transaction.Amount.StringFixed(2), u.MeanRatio)
		}
	}

	b.WriteString("\nReturn ONLY a valid raw JSON array of strings.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.")

	return b.String()
}

// cleanModelJSON strips Markdown code fences the model sometimes wraps
// around its reply despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
