// Package insights turns a statement's aggregate figures into a handful
// of short, human-readable observations. Generation is strictly
// best-effort: the pipeline substitutes a generic line on any failure, so
// nothing here may abort a statement.
package insights

import (
	"context"

	"golang-statement-pipeline/internal/models"
)

// GenericInsight is the single line used when generation fails or no
// generator is configured.
const GenericInsight = "Unable to generate insights for this statement."

// MaxInsights caps the number of lines kept from a generator.
const MaxInsights = 5

// Generator produces insight lines from a statement's transactions and
// summary. Implementations must honor ctx cancellation.
type Generator interface {
	GenerateInsights(ctx context.Context, transactions []*models.Transaction, analysis *models.AnalysisResult) ([]string, error)
}

// Generic returns the fallback insight list.
func Generic() []string {
	return []string{GenericInsight}
}
