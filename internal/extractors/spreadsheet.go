package extractors

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/internal/normalize"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// SpreadsheetExtractor parses XLSX workbooks. Statement spreadsheets
// usually open with a few title/metadata rows, so the extractor first
// scores the leading rows against the field-synonym vocabulary to locate
// the real header row, then maps the remaining rows exactly like the
// delimited extractor. Date cells may be raw numeric serials and are
// converted through the spreadsheet epoch instead of string parsing.
type SpreadsheetExtractor struct {
	config Config
	logger logger.Logger
	stats  *ExtractStats
}

// Header row detection: a candidate row qualifies when at least 60% of its
// non-empty cells match a known field token and the mapping it produces is
// usable.
const headerMatchRatio = 0.6

// Excel serials for 1954-10-28 through 2064-06-01; anything outside this
// window is more likely a stray number than a date.
const (
	minDateSerial = 20000
	maxDateSerial = 60000
)

// NewSpreadsheetExtractor creates a spreadsheet extractor.
func NewSpreadsheetExtractor(cfg Config) *SpreadsheetExtractor {
	cfg = cfg.normalized()
	return &SpreadsheetExtractor{
		config: cfg,
		logger: cfg.Logger.WithComponent("spreadsheet_extractor"),
		stats:  &ExtractStats{},
	}
}

// Stats returns diagnostics for the most recent Extract call.
func (e *SpreadsheetExtractor) Stats() *ExtractStats {
	return e.stats
}

// Extract implements Extractor.
func (e *SpreadsheetExtractor) Extract(ctx context.Context, data []byte) ([]models.RawTransactionRecord, error) {
	e.stats = &ExtractStats{}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.ExtractionError(
			pkgerrors.CodeTextExtraction, e.config.SourceName, 0, err)
	}
	defer workbook.Close()

	var records []models.RawTransactionRecord

	// Statements occasionally split months across sheets; walk them all.
	for _, sheet := range workbook.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := workbook.GetRows(sheet)
		if err != nil {
			e.logger.WithError(err).WithField("sheet", sheet).Warn("Failed to read sheet")
			continue
		}

		records = append(records, e.extractSheet(sheet, rows)...)
	}

	if len(records) == 0 {
		return nil, pkgerrors.NoTransactionsFound(e.config.SourceName)
	}

	e.logger.WithFields(logger.Fields{
		"records": len(records),
		"dropped": e.stats.RecordsDropped,
	}).Info("Spreadsheet extraction finished")

	return records, nil
}

func (e *SpreadsheetExtractor) extractSheet(sheet string, rows [][]string) []models.RawTransactionRecord {
	headerIdx, mapping := e.findHeaderRow(rows)
	if mapping == nil {
		e.logger.WithField("sheet", sheet).Debug("No header row found in sheet")
		return nil
	}

	var records []models.RawTransactionRecord
	for i := headerIdx + 1; i < len(rows); i++ {
		line := i + 1 // 1-based for diagnostics
		row := rows[i]
		e.stats.LinesSeen++

		if isEmptyRow(row) {
			continue
		}

		record := mapping.mapRow(row, line)
		record.Date = e.convertSerialDate(record.Date)

		if dropErr := precheckRecord(e.config.SourceName, &record); dropErr != nil {
			e.stats.drop(dropErr.WithLineContent(strings.Join(row, " | ")))
			continue
		}

		records = append(records, record)
		e.stats.RecordsValid++
	}

	return records
}

// findHeaderRow scores the first HeaderSearchRows rows and returns the
// first row that both clears the match ratio and yields a usable mapping.
// Rows above the header are title/metadata and are discarded.
func (e *SpreadsheetExtractor) findHeaderRow(rows [][]string) (int, columnMap) {
	limit := e.config.HeaderSearchRows
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		matched, nonEmpty := headerScore(rows[i])
		if nonEmpty == 0 {
			continue
		}
		if float64(matched)/float64(nonEmpty) < headerMatchRatio {
			continue
		}

		mapping := mapHeader(rows[i])
		if mapping.usable() {
			return i, mapping
		}
	}

	return -1, nil
}

// convertSerialDate converts a numeric Excel date serial to an ISO date
// string. Cells that already carry a textual date pass through untouched.
func (e *SpreadsheetExtractor) convertSerialDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}

	// A parseable textual date is never a serial.
	if _, ok := normalize.ParseDate(s); ok {
		return raw
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < minDateSerial || serial > maxDateSerial {
		return raw
	}

	converted, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}

	return converted.Format("2006-01-02")
}
