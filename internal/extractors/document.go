package extractors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"golang-statement-pipeline/internal/dialect"
	"golang-statement-pipeline/internal/models"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// DocumentExtractor parses PDF and plain-text statements. It extracts the
// document text, runs dialect detection on it, and then applies the
// detected dialect's line grammar. When the dialect grammar yields nothing
// (or the dialect is generic), an ordered cascade of increasingly
// permissive date+description+amount patterns is applied line by line.
// A failed line is dropped, never fatal to the whole document.
type DocumentExtractor struct {
	config Config
	isPDF  bool
	logger logger.Logger
	stats  *ExtractStats
}

// NewDocumentExtractor creates a document-text extractor. isPDF selects
// PDF text extraction; otherwise the input bytes are treated as text.
func NewDocumentExtractor(cfg Config, isPDF bool) *DocumentExtractor {
	cfg = cfg.normalized()
	return &DocumentExtractor{
		config: cfg,
		isPDF:  isPDF,
		logger: cfg.Logger.WithComponent("document_extractor"),
		stats:  &ExtractStats{},
	}
}

// Stats returns diagnostics for the most recent Extract call.
func (e *DocumentExtractor) Stats() *ExtractStats {
	return e.stats
}

// Extract implements Extractor.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte) ([]models.RawTransactionRecord, error) {
	e.stats = &ExtractStats{}

	text, err := e.documentText(data)
	if err != nil {
		return nil, err
	}

	detected := dialect.Detect(text)
	e.stats.Dialect = detected.String()
	e.logger.WithField("dialect", detected.String()).Info("Dialect detected")

	lines := strings.Split(text, "\n")

	var records []models.RawTransactionRecord
	if grammar, ok := grammarFor(detected); ok {
		records = e.applyGrammar(ctx, grammar, detected, lines)
	}

	// Dialect grammars are tuned against samples and can miss a layout
	// revision; the generic cascade is the safety net for those documents
	// as well as the primary path for generic ones.
	if len(records) == 0 {
		records = e.applyGenericCascade(ctx, lines)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, pkgerrors.NoTransactionsFound(e.config.SourceName)
	}

	e.logger.WithFields(logger.Fields{
		"dialect": detected.String(),
		"records": len(records),
		"dropped": e.stats.RecordsDropped,
	}).Info("Document extraction finished")

	return records, nil
}

// DetectedDialect returns the dialect tag from the most recent Extract.
func (e *DocumentExtractor) DetectedDialect() dialect.Dialect {
	if e.stats.Dialect == "" {
		return dialect.DialectGeneric
	}
	return dialect.Dialect(e.stats.Dialect)
}

func (e *DocumentExtractor) applyGrammar(ctx context.Context, grammar lineGrammar, d dialect.Dialect, lines []string) []models.RawTransactionRecord {
	var records []models.RawTransactionRecord

	for i, line := range lines {
		if ctx.Err() != nil {
			return records
		}

		e.stats.LinesSeen++
		if skipLine(line) {
			continue
		}

		record, ok := grammar(line)
		if !ok {
			continue
		}
		record.SourceLine = i + 1
		record.Dialect = d.String()
		records = append(records, record)
		e.stats.RecordsValid++
	}

	return records
}

func (e *DocumentExtractor) applyGenericCascade(ctx context.Context, lines []string) []models.RawTransactionRecord {
	var records []models.RawTransactionRecord

	for i, line := range lines {
		if ctx.Err() != nil {
			return records
		}

		if skipLine(line) {
			continue
		}

		record, ok := genericCascade(line)
		if !ok {
			continue
		}
		record.SourceLine = i + 1
		record.Dialect = dialect.DialectGeneric.String()
		records = append(records, record)
		e.stats.RecordsValid++
	}

	return records
}

// documentText extracts the full text of the document.
func (e *DocumentExtractor) documentText(data []byte) (string, error) {
	if !e.isPDF {
		return string(stripBOM(data)), nil
	}

	text, err := extractPDFText(data)
	if err != nil {
		return "", pkgerrors.ExtractionError(
			pkgerrors.CodeTextExtraction, e.config.SourceName, 0, err)
	}
	if !isReadableText(text) {
		return "", pkgerrors.ExtractionError(
			pkgerrors.CodeTextExtraction, e.config.SourceName, 0,
			fmt.Errorf("extracted text is not readable; the PDF may be image-based or use custom font encodings"))
	}

	return text, nil
}

// extractPDFText pulls text out of a PDF, preferring row-grouped
// extraction (best layout preservation) and falling back to the plain-text
// stream. The library can panic on malformed files, so both paths recover.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	joined := strings.Join(pages, "\n")
	if strings.TrimSpace(joined) == "" {
		// Row extraction found nothing; try the flat text stream.
		buf := new(strings.Builder)
		plain, plainErr := reader.GetPlainText()
		if plainErr != nil {
			return "", plainErr
		}
		if _, copyErr := io.Copy(buf, plain); copyErr != nil {
			return "", copyErr
		}
		joined = buf.String()
	}

	return joined, nil
}

// isReadableText applies a strict ASCII readability ratio. Identity-encoded
// fonts decode into garbage that still counts as "letters" under broader
// Unicode classes, so the check is deliberately narrow.
func isReadableText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(`.,-/:;()'"%&@#!?+=*₦£$€`, r) {
			readable++
		}
	}
	return total > 0 && float64(readable)/float64(total) >= 0.85
}
