// Package models defines the canonical data model for the statement
// pipeline: raw extractor output, normalized transactions, classification
// results, and the aggregate analysis produced for each statement.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	// TransactionTypeDebit represents money leaving the account
	TransactionTypeDebit TransactionType = "debit"
	// TransactionTypeCredit represents money entering the account
	TransactionTypeCredit TransactionType = "credit"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// RawTransactionRecord is the pre-normalization output of an extractor.
// All value fields are still strings; the ledger normalizer is responsible
// for parsing them. Records are ephemeral and discarded after
// normalization.
type RawTransactionRecord struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance,omitempty"`
	Reference   string `json:"reference,omitempty"`

	// Direction hints, populated when the source carries them explicitly.
	// TypeHint is a raw type-column value ("DR", "credit", ...); DebitAmount
	// and CreditAmount are populated when the source has separate columns.
	TypeHint     string `json:"type_hint,omitempty"`
	DebitAmount  string `json:"debit_amount,omitempty"`
	CreditAmount string `json:"credit_amount,omitempty"`

	// Source metadata for diagnostics.
	SourceLine int    `json:"source_line,omitempty"`
	Dialect    string `json:"dialect,omitempty"`
}

// Transaction is the canonical ledger entry. Amount is always positive;
// direction is carried solely by Type. Category, Merchant, and Confidence
// are absent until the classification run assigns them, and the aggregator
// treats the transaction as read-only afterward.
type Transaction struct {
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        TransactionType  `json:"type"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Reference   string           `json:"reference,omitempty"`

	Category   string   `json:"category,omitempty"`
	Merchant   string   `json:"merchant,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(date time.Time, description string, amount decimal.Decimal, txType TransactionType) *Transaction {
	return &Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description cannot be empty")
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive, got %s", t.Amount)
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if t.Confidence != nil && (*t.Confidence < 0 || *t.Confidence > 1) {
		return fmt.Errorf("confidence must be in [0,1], got %f", *t.Confidence)
	}

	return nil
}

// IsClassified reports whether the classification run has assigned this
// transaction a category, merchant, and confidence.
func (t *Transaction) IsClassified() bool {
	return t.Category != "" && t.Merchant != "" && t.Confidence != nil
}

// IsDebit returns true if the transaction is a debit
func (t *Transaction) IsDebit() bool {
	return t.Type == TransactionTypeDebit
}

// IsCredit returns true if the transaction is a credit
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}

// SignedAmount returns the amount with its direction applied: negative for
// debits, positive for credits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// String returns a compact representation for logs
func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %s %q",
		t.Date.Format("2006-01-02"), t.Type, t.Amount, t.Description)
}

// StatementPeriod is the min/max date range covered by a ledger.
type StatementPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// String returns the period as "2006-01-02 to 2006-01-02"
func (p StatementPeriod) String() string {
	return fmt.Sprintf("%s to %s",
		p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
}

// ClassificationResult is one category/merchant assignment for a
// transaction or description group.
type ClassificationResult struct {
	Category   string  `json:"category"`
	Merchant   string  `json:"merchant"`
	Confidence float64 `json:"confidence"`
}

// StatementStatus represents the lifecycle state of a statement
type StatementStatus string

const (
	StatusProcessing StatementStatus = "processing"
	StatusCompleted  StatementStatus = "completed"
	StatusFailed     StatementStatus = "failed"
)

// IsValid checks if the statement status is valid
func (s StatementStatus) IsValid() bool {
	return s == StatusProcessing || s == StatusCompleted || s == StatusFailed
}

// IsTerminal reports whether the statement has reached a final state
func (s StatementStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProcessedStatement is the caller-facing result of one statement run:
// the classified ledger, the analysis, and the detected metadata.
type ProcessedStatement struct {
	StatementID  string           `json:"statement_id"`
	Transactions []*Transaction   `json:"transactions"`
	Analysis     *AnalysisResult  `json:"analysis"`
	BankName     string           `json:"bank_name,omitempty"`
	Period       *StatementPeriod `json:"statement_period,omitempty"`

	Status         StatementStatus `json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	ProcessingTime int64           `json:"processing_time_ms"`
}
