package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.0-flash"

// GeminiClassifier answers classification questions through the Gemini
// API. Each call is a single prompt constrained to the canonical category
// vocabulary and a raw-JSON reply contract.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	logger logger.Logger
}

// NewGeminiClassifier creates a Gemini-backed classifier. apiKey may be
// empty, in which case the client library resolves credentials from the
// environment.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, log logger.Logger) (*GeminiClassifier, error) {
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

	return &GeminiClassifier{
		client: client,
		model:  model,
		logger: log.WithComponent("gemini_classifier"),
	}, nil
}

// ClassifyCategory implements Classifier.
func (g *GeminiClassifier) ClassifyCategory(ctx context.Context, description string) (CategoryResult, error) {
	prompt := fmt.Sprintf(
		"Classify this bank transaction description into exactly one category.\n\n"+
			"Description: %q\n\n"+
			"Allowed categories:\n%s\n\n"+
			"Return ONLY valid raw JSON shaped as "+
			`{"category": "<one allowed category>", "confidence": <0.0-1.0>}`+"\n"+
			"Do NOT wrap the response in code fences.\n"+
			"Do NOT use ```json or any Markdown.",
		description, strings.Join(Categories, "\n"))

	var result CategoryResult
	if err := g.generateJSON(ctx, prompt, &result); err != nil {
		return CategoryResult{}, err
	}

	result.Category = sanitizeCategory(result.Category)
	result.Confidence = clampConfidence(result.Confidence)
	return result, nil
}

// ExtractMerchant implements Classifier.
func (g *GeminiClassifier) ExtractMerchant(ctx context.Context, description string) (MerchantResult, error) {
	prompt := fmt.Sprintf(
		"Extract the merchant or counterparty name from this bank transaction description.\n\n"+
			"Description: %q\n\n"+
			"Strip bank codes, reference numbers, and channel prefixes; return a short,\n"+
			"human-readable name (e.g. \"Shoprite\", \"Netflix\", \"John Doe\").\n\n"+
			"Return ONLY valid raw JSON shaped as "+
			`{"merchant": "<name>", "confidence": <0.0-1.0>}`+"\n"+
			"Do NOT wrap the response in code fences.\n"+
			"Do NOT use ```json or any Markdown.",
		description)

	var result MerchantResult
	if err := g.generateJSON(ctx, prompt, &result); err != nil {
		return MerchantResult{}, err
	}

	result.Merchant = strings.TrimSpace(result.Merchant)
	result.Confidence = clampConfidence(result.Confidence)
	return result, nil
}

// generateJSON runs one prompt and unmarshals the reply into out.
func (g *GeminiClassifier) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return pkgerrors.ClassificationError(pkgerrors.CodeClassifierTimeout, "", err)
		}
		return pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "", err)
	}

	raw := resp.Text()
	if raw == "" {
		return pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "",
			fmt.Errorf("empty response from model"))
	}

	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), out); err != nil {
		return pkgerrors.ClassificationError(pkgerrors.CodeClassifierError, "",
			fmt.Errorf("unparseable model reply: %w", err))
	}

	return nil
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
