// Package pipeline orchestrates one statement run end to end: extract,
// normalize, classify, analyze, generate insights, persist. Failure
// semantics follow the statement lifecycle: extraction problems are
// terminal and fail the statement; classification and insight problems
// degrade and never fail it; persistence is all-or-nothing.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"golang-statement-pipeline/internal/analytics"
	"golang-statement-pipeline/internal/classify"
	"golang-statement-pipeline/internal/dialect"
	"golang-statement-pipeline/internal/extractors"
	"golang-statement-pipeline/internal/insights"
	"golang-statement-pipeline/internal/ledger"
	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/internal/store"
	pkgerrors "golang-statement-pipeline/pkg/errors"
	"golang-statement-pipeline/pkg/logger"
)

// Options configures a Processor. Everything except the classification
// config is optional: a nil store skips persistence, a nil classifier
// routes everything through the keyword fallback, a nil insight generator
// yields the generic insight line.
type Options struct {
	Classify         classify.Config
	Classifier       classify.Classifier
	InsightGenerator insights.Generator
	Store            store.StatementStore
	SourceName       string
	Logger           logger.Logger
}

// Processor runs statements through the pipeline.
type Processor struct {
	options      Options
	orchestrator *classify.Orchestrator
	analyzer     *analytics.Analyzer
	logger       logger.Logger
}

// NewProcessor creates a processor.
func NewProcessor(options Options) (*Processor, error) {
	if err := options.Classify.Validate(); err != nil {
		return nil, err
	}
	if options.Logger == nil {
		options.Logger = logger.GetGlobalLogger()
	}

	log := options.Logger.WithComponent("pipeline")
	return &Processor{
		options:      options,
		orchestrator: classify.NewOrchestrator(options.Classify, options.Classifier, options.Logger),
		analyzer:     analytics.NewAnalyzer(options.Logger),
		logger:       log,
	}, nil
}

// ProcessStatement runs one statement through the full pipeline. The
// returned statement always carries a terminal status; the error is
// non-nil exactly when that status is failed.
func (p *Processor) ProcessStatement(ctx context.Context, data []byte, fileType string) (*models.ProcessedStatement, error) {
	start := time.Now()
	statementID := uuid.NewString()
	tracker := logger.NewPhaseTracker(statementID, p.options.Logger)

	p.logger.WithFields(logger.Fields{
		"statement_id": statementID,
		"file_type":    fileType,
		"bytes":        len(data),
	}).Info("Processing statement")

	if p.options.Store != nil {
		if err := p.options.Store.Create(ctx, statementID); err != nil {
			return nil, err
		}
	}

	statement, err := p.run(ctx, tracker, statementID, data, fileType)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		err = p.normalizeFailure(ctx, err)
		failed := &models.ProcessedStatement{
			StatementID:    statementID,
			Status:         models.StatusFailed,
			ErrorMessage:   err.Error(),
			ProcessingTime: elapsed,
		}
		p.markFailed(statementID, err, elapsed)
		tracker.Summary()
		return failed, err
	}

	statement.ProcessingTime = elapsed
	if p.options.Store != nil {
		tracker.StartPhase("persist")
		if storeErr := p.options.Store.Complete(ctx, statement); storeErr != nil {
			tracker.EndPhase(0)
			statement.Status = models.StatusFailed
			statement.ErrorMessage = storeErr.Error()
			p.markFailed(statementID, storeErr, elapsed)
			tracker.Summary()
			return statement, storeErr
		}
		tracker.EndPhase(len(statement.Transactions))
	}

	tracker.Summary()
	p.logger.WithFields(logger.Fields{
		"statement_id": statementID,
		"transactions": len(statement.Transactions),
		"duration_ms":  statement.ProcessingTime,
	}).Info("Statement completed")

	return statement, nil
}

// run executes the compute phases; persistence is handled by the caller.
func (p *Processor) run(ctx context.Context, tracker *logger.PhaseTracker, statementID string, data []byte, fileType string) (*models.ProcessedStatement, error) {
	source := p.options.SourceName
	if source == "" {
		source = "statement"
	}

	extractor, err := extractors.ForFileType(fileType, extractors.Config{
		SourceName: source,
		Logger:     p.options.Logger,
	})
	if err != nil {
		return nil, err
	}

	tracker.StartPhase("extract")
	records, err := extractor.Extract(ctx, data)
	if err != nil {
		tracker.EndPhase(0)
		return nil, err
	}
	tracker.EndPhase(len(records))

	bankName := "Unknown Bank"
	if tag := extractor.Stats().Dialect; tag != "" {
		bankName = dialect.Dialect(tag).BankName()
	}

	tracker.StartPhase("normalize")
	transactions := ledger.NewNormalizer(p.options.Logger).Normalize(records)
	tracker.EndPhase(len(transactions))
	if len(transactions) == 0 {
		return nil, pkgerrors.NoTransactionsFound(source).
			WithContext("reason", "no records survived normalization")
	}

	tracker.StartPhase("classify")
	runStats := p.orchestrator.Classify(ctx, transactions)
	tracker.EndPhase(runStats.Total)

	tracker.StartPhase("analyze")
	analysis := p.analyzer.Analyze(transactions)
	tracker.EndPhase(len(transactions))

	analysis.Insights = p.generateInsights(ctx, transactions, analysis)

	if ctx.Err() != nil {
		return nil, pkgerrors.ProcessingTimeout("analysis", ctx.Err())
	}

	return &models.ProcessedStatement{
		StatementID:  statementID,
		Transactions: transactions,
		Analysis:     analysis,
		BankName:     bankName,
		Period:       ledger.Period(transactions),
		Status:       models.StatusCompleted,
	}, nil
}

// generateInsights is strictly best-effort.
func (p *Processor) generateInsights(ctx context.Context, transactions []*models.Transaction, analysis *models.AnalysisResult) []string {
	if p.options.InsightGenerator == nil {
		return insights.Generic()
	}

	lines, err := p.options.InsightGenerator.GenerateInsights(ctx, transactions, analysis)
	if err != nil || len(lines) == 0 {
		p.logger.WithError(err).Warn("Insight generation failed; using generic insight")
		return insights.Generic()
	}
	return lines
}

// normalizeFailure maps context expiry onto the processing-timeout code so
// callers see the taxonomy, not a bare context error.
func (p *Processor) normalizeFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil && !pkgerrors.IsPipelineError(err) {
		return pkgerrors.ProcessingTimeout("pipeline", ctx.Err())
	}
	return err
}

// markFailed records the failure in the store. The store context is
// detached from the request: a statement that failed on timeout still must
// have its terminal state persisted.
func (p *Processor) markFailed(statementID string, cause error, elapsedMS int64) {
	if p.options.Store == nil {
		return
	}

	storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.options.Store.Fail(storeCtx, statementID, cause.Error(), elapsedMS); err != nil {
		p.logger.WithError(err).WithField("statement_id", statementID).
			Error("Failed to record statement failure")
	}
}
