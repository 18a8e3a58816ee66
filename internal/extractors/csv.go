package extractors

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/internal/normalize"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// DelimitedExtractor parses delimiter-separated statement exports. It is
// row-oriented: the first non-empty row that yields a usable column
// mapping becomes the header, and every subsequent row is mapped through
// the field-synonym vocabulary. Rows that fail to yield a valid date, a
// non-empty description, and a positive amount are silently dropped;
// statements routinely embed section totals and repeated headers that must
// be ignored.
type DelimitedExtractor struct {
	config Config
	logger logger.Logger
	stats  *ExtractStats
}

// NewDelimitedExtractor creates a delimited-text extractor.
func NewDelimitedExtractor(cfg Config) *DelimitedExtractor {
	cfg = cfg.normalized()
	return &DelimitedExtractor{
		config: cfg,
		logger: cfg.Logger.WithComponent("csv_extractor"),
		stats:  &ExtractStats{},
	}
}

// Stats returns diagnostics for the most recent Extract call.
func (e *DelimitedExtractor) Stats() *ExtractStats {
	return e.stats
}

// Extract implements Extractor.
func (e *DelimitedExtractor) Extract(ctx context.Context, data []byte) ([]models.RawTransactionRecord, error) {
	e.stats = &ExtractStats{}

	reader := csv.NewReader(bytes.NewReader(stripBOM(data)))
	reader.Comma = e.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		mapping columnMap
		records []models.RawTransactionRecord
		line    int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// A row the csv reader itself rejects is just another
			// malformed record.
			e.stats.drop(pkgerrors.NewRecordError(
				pkgerrors.CodeMalformedRecord,
				&pkgerrors.RecordContext{Source: e.config.SourceName, Line: line},
				"row failed CSV parsing", err))
			continue
		}
		e.stats.LinesSeen++

		if isEmptyRow(row) {
			continue
		}

		if mapping == nil {
			candidate := mapHeader(row)
			if candidate.usable() {
				mapping = candidate
				continue
			}
			// Leading title/metadata rows before the header are expected.
			e.logger.WithFields(logger.Fields{
				"line": line,
			}).Debug("Skipping pre-header row")
			continue
		}

		record := mapping.mapRow(row, line)
		if dropErr := precheckRecord(e.config.SourceName, &record); dropErr != nil {
			e.stats.drop(dropErr.WithLineContent(strings.Join(row, string(e.config.Delimiter))))
			continue
		}

		records = append(records, record)
		e.stats.RecordsValid++
	}

	if mapping == nil {
		// Without a recognizable header nothing can be mapped; from the
		// caller's point of view that is the no-transactions condition.
		e.logger.Warn("No usable header row found in delimited file")
		return nil, pkgerrors.NoTransactionsFound(e.config.SourceName).
			WithContext("reason", "no recognizable header row")
	}

	if len(records) == 0 {
		return nil, pkgerrors.NoTransactionsFound(e.config.SourceName)
	}

	e.logger.WithFields(logger.Fields{
		"records": len(records),
		"dropped": e.stats.RecordsDropped,
	}).Info("Delimited extraction finished")

	return records, nil
}

// precheckRecord applies the drop rules shared by the delimited and
// spreadsheet extractors: the record must carry a parseable date, a
// non-empty description, and a positive amount in at least one of its
// amount columns. It returns a diagnostic for the first failing rule.
func precheckRecord(source string, record *models.RawTransactionRecord) *pkgerrors.RecordError {
	if _, ok := normalize.ParseDate(record.Date); !ok {
		return pkgerrors.UnparseableDate(source, record.SourceLine, record.Date)
	}

	if strings.TrimSpace(record.Description) == "" {
		return pkgerrors.EmptyDescription(source, record.SourceLine)
	}

	hasAmount := normalize.ParseAmount(record.Amount).IsPositive() ||
		normalize.ParseAmount(record.DebitAmount).IsPositive() ||
		normalize.ParseAmount(record.CreditAmount).IsPositive()
	if !hasAmount {
		return pkgerrors.UnparseableAmount(source, record.SourceLine, record.Amount)
	}

	return nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// stripBOM removes a UTF-8 byte order mark; spreadsheet tools routinely
// prepend one to CSV exports.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
