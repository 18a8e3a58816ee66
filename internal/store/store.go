// Package store persists processed statements. The contract mirrors the
// statement lifecycle: a row is created in the processing state, then moved
// exactly once to completed (with its full ledger and analysis, atomically)
// or to failed (with the error message). A completed statement is either
// fully present or absent; partial persistence is a contract violation.
package store

import (
	"context"

	"golang-statement-pipeline/internal/models"
)

// StatementStore is the durable statement repository contract.
type StatementStore interface {
	// Create registers a new statement in the processing state.
	Create(ctx context.Context, statementID string) error

	// Complete transitions the statement to completed and persists its
	// ledger, analysis, bank name, and period in one atomic write.
	Complete(ctx context.Context, statement *models.ProcessedStatement) error

	// Fail transitions the statement to failed with a human-readable
	// reason and the processing duration.
	Fail(ctx context.Context, statementID, errorMessage string, processingTimeMS int64) error

	// Get loads a statement with its ledger and analysis. Returns
	// store-layer errors for unknown IDs.
	Get(ctx context.Context, statementID string) (*models.ProcessedStatement, error)

	// Close releases the underlying resources.
	Close() error
}
