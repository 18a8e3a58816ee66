// Package extractors turns raw statement bytes into ordered sequences of
// raw transaction records.
//
// Three extractor families cover the supported export formats:
//   - DelimitedExtractor: CSV and other delimiter-separated exports
//   - SpreadsheetExtractor: XLSX workbooks
//   - DocumentExtractor: PDF and plain-text statements, using the dialect
//     detector to pick an institution-specific line grammar
//
// All extractors share the same failure semantics: a malformed individual
// record is dropped with a diagnostic and never aborts the batch; the
// extractor fails the whole statement only when zero valid records result.
package extractors

import (
	"context"
	"strings"

	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// Extractor converts raw file bytes into raw transaction records.
type Extractor interface {
	// Extract parses the document. It returns NoTransactionsFound when no
	// valid record could be recovered, and never fails on individual
	// malformed rows.
	Extract(ctx context.Context, data []byte) ([]models.RawTransactionRecord, error)

	// Stats returns diagnostics for the most recent Extract call.
	Stats() *ExtractStats
}

// ExtractStats collects diagnostics for one extraction run.
type ExtractStats struct {
	LinesSeen      int                      `json:"lines_seen"`
	RecordsValid   int                      `json:"records_valid"`
	RecordsDropped int                      `json:"records_dropped"`
	Dialect        string                   `json:"dialect,omitempty"`
	DroppedRecords []*pkgerrors.RecordError `json:"-"`
}

// drop registers a dropped record, keeping at most 50 sample diagnostics.
func (s *ExtractStats) drop(err *pkgerrors.RecordError) {
	s.RecordsDropped++
	if len(s.DroppedRecords) < 50 {
		s.DroppedRecords = append(s.DroppedRecords, err)
	}
}

// Config carries extractor construction options.
type Config struct {
	// SourceName labels diagnostics; usually the uploaded filename.
	SourceName string

	// Delimiter for delimited-text extraction. Zero means comma.
	Delimiter rune

	// HeaderSearchRows bounds the spreadsheet header-row scan.
	// Zero means the default of 10.
	HeaderSearchRows int

	Logger logger.Logger
}

// normalized returns a copy with defaults applied.
func (c Config) normalized() Config {
	if c.SourceName == "" {
		c.SourceName = "statement"
	}
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	if c.HeaderSearchRows == 0 {
		c.HeaderSearchRows = 10
	}
	if c.Logger == nil {
		c.Logger = logger.GetGlobalLogger()
	}
	return c
}

// ForFileType selects the extractor family for a declared file type or
// extension. It returns UnsupportedFileType for anything outside the known
// families.
func ForFileType(fileType string, cfg Config) (Extractor, error) {
	switch normalizeFileType(fileType) {
	case "csv", "tsv":
		c := cfg
		if normalizeFileType(fileType) == "tsv" && c.Delimiter == 0 {
			c.Delimiter = '\t'
		}
		return NewDelimitedExtractor(c), nil
	case "xlsx", "xls":
		return NewSpreadsheetExtractor(cfg), nil
	case "pdf":
		return NewDocumentExtractor(cfg, true), nil
	case "txt", "text":
		return NewDocumentExtractor(cfg, false), nil
	default:
		return nil, pkgerrors.UnsupportedFileType(fileType)
	}
}

func normalizeFileType(fileType string) string {
	s := strings.ToLower(strings.TrimSpace(fileType))
	s = strings.TrimPrefix(s, ".")

	// Accept media types as well as extensions.
	switch s {
	case "text/csv", "application/csv":
		return "csv"
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "application/vnd.ms-excel":
		return "xls"
	case "text/plain":
		return "txt"
	}
	return s
}
