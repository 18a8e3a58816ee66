package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// SQLiteStore implements StatementStore on a local SQLite database.
// Transactions are stored row-per-transaction for querying; the analysis
// aggregate is stored as a JSON document, it is read back whole and never
// queried by field.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewSQLiteStore opens (and if necessary creates) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string, log logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "open", err)
	}
	// SQLite handles one writer at a time; serialize access instead of
	// surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		logger: log.WithComponent("sqlite_store"),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.WithField("path", path).Debug("Statement store initialized")
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS statements (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			bank_name TEXT,
			period_start TEXT,
			period_end TEXT,
			error_message TEXT,
			processing_time_ms INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			statement_id TEXT NOT NULL REFERENCES statements(id),
			date TEXT NOT NULL,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			type TEXT NOT NULL,
			balance TEXT,
			reference TEXT,
			category TEXT,
			merchant TEXT,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_statement
			ON transactions(statement_id)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			statement_id TEXT PRIMARY KEY REFERENCES statements(id),
			payload TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "init schema", err)
		}
	}
	return nil
}

// Create implements StatementStore.
func (s *SQLiteStore) Create(ctx context.Context, statementID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statements (id, status) VALUES (?, ?)
	`, statementID, string(models.StatusProcessing))
	if err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "create statement", err)
	}
	return nil
}

// Complete implements StatementStore. The ledger, the analysis, and the
// status flip commit in a single database transaction.
func (s *SQLiteStore) Complete(ctx context.Context, statement *models.ProcessedStatement) error {
	payload, err := json.Marshal(statement.Analysis)
	if err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "encode analysis", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "begin complete", err)
	}
	defer tx.Rollback()

	var periodStart, periodEnd interface{}
	if statement.Period != nil {
		periodStart = statement.Period.StartDate.Format(time.RFC3339)
		periodEnd = statement.Period.EndDate.Format(time.RFC3339)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE statements
		SET status = ?, bank_name = ?, period_start = ?, period_end = ?,
		    processing_time_ms = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, string(models.StatusCompleted), statement.BankName, periodStart, periodEnd,
		statement.ProcessingTime, statement.StatementID, string(models.StatusProcessing))
	if err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "complete statement", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "complete statement",
			fmt.Errorf("statement %s is not in the processing state", statement.StatementID))
	}

	for _, transaction := range statement.Transactions {
		var balance interface{}
		if transaction.Balance != nil {
			balance = transaction.Balance.String()
		}
		var confidence interface{}
		if transaction.Confidence != nil {
			confidence = *transaction.Confidence
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(statement_id, date, description, amount, type, balance,
				 reference, category, merchant, confidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, statement.StatementID, transaction.Date.Format(time.RFC3339),
			transaction.Description, transaction.Amount.String(),
			string(transaction.Type), balance, transaction.Reference,
			transaction.Category, transaction.Merchant, confidence); err != nil {
			return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "persist ledger", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analyses (statement_id, payload) VALUES (?, ?)
	`, statement.StatementID, string(payload)); err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "persist analysis", err)
	}

	if err := tx.Commit(); err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "commit complete", err)
	}

	s.logger.WithFields(logger.Fields{
		"statement_id": statement.StatementID,
		"transactions": len(statement.Transactions),
	}).Debug("Statement completed")
	return nil
}

// Fail implements StatementStore.
func (s *SQLiteStore) Fail(ctx context.Context, statementID, errorMessage string, processingTimeMS int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE statements
		SET status = ?, error_message = ?, processing_time_ms = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, string(models.StatusFailed), errorMessage, processingTimeMS,
		statementID, string(models.StatusProcessing))
	if err != nil {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "fail statement", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return pkgerrors.StorageError(pkgerrors.CodeStoreWriteFailed, "fail statement",
			fmt.Errorf("statement %s is not in the processing state", statementID))
	}
	return nil
}

// Get implements StatementStore.
func (s *SQLiteStore) Get(ctx context.Context, statementID string) (*models.ProcessedStatement, error) {
	statement := &models.ProcessedStatement{StatementID: statementID}

	var status, bankName, errorMessage sql.NullString
	var periodStart, periodEnd sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT status, bank_name, period_start, period_end, error_message,
		       processing_time_ms
		FROM statements WHERE id = ?
	`, statementID).Scan(&status, &bankName, &periodStart, &periodEnd,
		&errorMessage, &statement.ProcessingTime)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "get statement",
			fmt.Errorf("statement %s not found", statementID))
	}
	if err != nil {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "get statement", err)
	}

	statement.Status = models.StatementStatus(status.String)
	statement.BankName = bankName.String
	statement.ErrorMessage = errorMessage.String
	if periodStart.Valid && periodEnd.Valid {
		start, startErr := time.Parse(time.RFC3339, periodStart.String)
		end, endErr := time.Parse(time.RFC3339, periodEnd.String)
		if startErr == nil && endErr == nil {
			statement.Period = &models.StatementPeriod{StartDate: start, EndDate: end}
		}
	}

	transactions, err := s.loadTransactions(ctx, statementID)
	if err != nil {
		return nil, err
	}
	statement.Transactions = transactions

	var payload sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT payload FROM analyses WHERE statement_id = ?
	`, statementID).Scan(&payload)
	if err != nil && err != sql.ErrNoRows {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "get analysis", err)
	}
	if payload.Valid {
		var analysis models.AnalysisResult
		if err := json.Unmarshal([]byte(payload.String), &analysis); err != nil {
			return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "decode analysis", err)
		}
		statement.Analysis = &analysis
	}

	return statement, nil
}

func (s *SQLiteStore) loadTransactions(ctx context.Context, statementID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, description, amount, type, balance, reference,
		       category, merchant, confidence
		FROM transactions WHERE statement_id = ? ORDER BY id
	`, statementID)
	if err != nil {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "load ledger", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var dateRaw, amountRaw, typeRaw string
		var balanceRaw, reference, category, merchant sql.NullString
		var confidence sql.NullFloat64
		tx := &models.Transaction{}

		if err := rows.Scan(&dateRaw, &tx.Description, &amountRaw, &typeRaw,
			&balanceRaw, &reference, &category, &merchant, &confidence); err != nil {
			return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "scan transaction", err)
		}

		date, err := time.Parse(time.RFC3339, dateRaw)
		if err != nil {
			return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "decode transaction date", err)
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "decode transaction amount", err)
		}

		tx.Date = date
		tx.Amount = amount
		tx.Type = models.TransactionType(typeRaw)
		tx.Reference = reference.String
		tx.Category = category.String
		tx.Merchant = merchant.String
		if balanceRaw.Valid {
			if balance, err := decimal.NewFromString(balanceRaw.String); err == nil {
				tx.Balance = &balance
			}
		}
		if confidence.Valid {
			value := confidence.Float64
			tx.Confidence = &value
		}

		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.StorageError(pkgerrors.CodeStoreUnavailable, "load ledger", err)
	}

	return transactions, nil
}

// Close implements StatementStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
