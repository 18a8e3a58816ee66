package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func createTestTransaction() *Transaction {
	return NewTransaction(
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"POS PURCHASE SHOPRITE LEKKI",
		decimal.NewFromFloat(2500.00),
		TransactionTypeDebit,
	)
}

func TestTransactionType(t *testing.T) {
	tests := []struct {
		txType TransactionType
		valid  bool
	}{
		{TransactionTypeDebit, true},
		{TransactionTypeCredit, true},
		{TransactionType("transfer"), false},
		{TransactionType(""), false},
		{TransactionType("DEBIT"), false},
	}

	for _, tt := range tests {
		if got := tt.txType.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tt.txType, got, tt.valid)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Transaction)
		wantErr string
	}{
		{
			name:    "valid transaction",
			modify:  func(tx *Transaction) {},
			wantErr: "",
		},
		{
			name:    "empty description",
			modify:  func(tx *Transaction) { tx.Description = "   " },
			wantErr: "description",
		},
		{
			name:    "zero amount",
			modify:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: "positive",
		},
		{
			name:    "negative amount",
			modify:  func(tx *Transaction) { tx.Amount = decimal.NewFromFloat(-10) },
			wantErr: "positive",
		},
		{
			name:    "invalid type",
			modify:  func(tx *Transaction) { tx.Type = "refund" },
			wantErr: "type",
		},
		{
			name:    "zero date",
			modify:  func(tx *Transaction) { tx.Date = time.Time{} },
			wantErr: "date",
		},
		{
			name: "confidence out of range",
			modify: func(tx *Transaction) {
				c := 1.5
				tx.Confidence = &c
			},
			wantErr: "confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := createTestTransaction()
			tt.modify(tx)

			err := tx.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid transaction, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestTransactionSignedAmount(t *testing.T) {
	tx := createTestTransaction()

	if !tx.SignedAmount().Equal(decimal.NewFromFloat(-2500.00)) {
		t.Errorf("expected debit signed amount -2500, got %s", tx.SignedAmount())
	}

	tx.Type = TransactionTypeCredit
	if !tx.SignedAmount().Equal(decimal.NewFromFloat(2500.00)) {
		t.Errorf("expected credit signed amount 2500, got %s", tx.SignedAmount())
	}
}

func TestTransactionIsClassified(t *testing.T) {
	tx := createTestTransaction()
	if tx.IsClassified() {
		t.Error("fresh transaction should not be classified")
	}

	tx.Category = "Shopping"
	tx.Merchant = "Shoprite"
	if tx.IsClassified() {
		t.Error("transaction without confidence should not be classified")
	}

	c := 0.85
	tx.Confidence = &c
	if !tx.IsClassified() {
		t.Error("transaction with category, merchant, and confidence should be classified")
	}
}

func TestStatementStatus(t *testing.T) {
	if !StatusProcessing.IsValid() || !StatusCompleted.IsValid() || !StatusFailed.IsValid() {
		t.Error("expected all defined statuses to be valid")
	}
	if StatementStatus("queued").IsValid() {
		t.Error("expected unknown status to be invalid")
	}

	if StatusProcessing.IsTerminal() {
		t.Error("processing should not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("completed and failed should be terminal")
	}
}

func TestStatementPeriodString(t *testing.T) {
	p := StatementPeriod{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	want := "2024-01-01 to 2024-01-31"
	if p.String() != want {
		t.Errorf("expected %q, got %q", want, p.String())
	}
}

func TestEmptyAnalysisResult(t *testing.T) {
	result := EmptyAnalysisResult()

	if !result.Summary.TotalIncome.IsZero() || !result.Summary.TotalExpenses.IsZero() {
		t.Error("expected zeroed summary totals")
	}
	if result.Categories == nil || len(result.Categories) != 0 {
		t.Error("expected empty (non-nil) categories")
	}
	if result.Patterns.RecurringPayments == nil {
		t.Error("expected empty (non-nil) recurring payments")
	}
	if result.Insights == nil {
		t.Error("expected empty (non-nil) insights")
	}
}
