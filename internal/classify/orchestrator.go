package classify

import (
	"context"
	"strings"
	"time"
	"unicode"

	"golang-statement-pipeline/internal/models"
	"golang-statement-pipeline/pkg/logger"
)

// aiConfidenceFloor separates AI results worth counting as AI-processed
// from answers so hedged they are no better than the fallback.
const aiConfidenceFloor = 0.4

// RunStats summarizes one classification run.
type RunStats struct {
	Total              int           `json:"total"`
	AIClassified       int           `json:"ai_classified"`
	AILowConfidence    int           `json:"ai_low_confidence"`
	FallbackClassified int           `json:"fallback_classified"`
	MerchantFallbacks  int           `json:"merchant_fallbacks,omitempty"`
	Groups             int           `json:"groups,omitempty"`
	Strategy           string        `json:"strategy"`
	BreakerTripped     bool          `json:"breaker_tripped"`
	DeadlineExceeded   bool          `json:"deadline_exceeded"`
	Duration           time.Duration `json:"duration"`
}

// Orchestrator drives classification of a whole ledger. It guarantees that
// every transaction comes out with a category, merchant, and confidence,
// and it never returns an error: AI failures degrade to the keyword
// fallback, bounded by a circuit breaker and a per-strategy deadline.
type Orchestrator struct {
	config     Config
	classifier Classifier
	fallback   *FallbackClassifier
	logger     logger.Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewOrchestrator creates an orchestrator. classifier may be nil, in which
// case everything takes the fallback path.
func NewOrchestrator(cfg Config, classifier Classifier, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Orchestrator{
		config:     cfg,
		classifier: classifier,
		fallback:   NewFallbackClassifier(),
		logger:     log.WithComponent("classify"),
		sleep:      time.Sleep,
	}
}

// Classify assigns category, merchant, and confidence to every
// transaction in place and returns run statistics.
func (o *Orchestrator) Classify(ctx context.Context, transactions []*models.Transaction) RunStats {
	start := time.Now()
	stats := RunStats{Total: len(transactions)}

	if len(transactions) == 0 {
		stats.Duration = time.Since(start)
		return stats
	}

	if o.classifier == nil {
		stats.Strategy = "fallback"
		o.fallbackAll(transactions, &stats)
		stats.Duration = time.Since(start)
		o.logRun(stats)
		return stats
	}

	if len(transactions) < o.config.GroupingThreshold {
		stats.Strategy = "direct"
		o.classifyDirect(ctx, transactions, &stats)
	} else {
		stats.Strategy = "grouped"
		o.classifyGrouped(ctx, transactions, &stats)
	}

	stats.Duration = time.Since(start)
	o.logRun(stats)
	return stats
}

// classifyDirect classifies each transaction individually, in batches,
// with an AI-call cap; transactions past the cap use the fallback.
func (o *Orchestrator) classifyDirect(ctx context.Context, transactions []*models.Transaction, stats *RunStats) {
	deadline := time.Now().Add(o.config.DirectDeadline)
	breaker := newCircuitBreaker(o.config.BreakerThreshold)

	for i, tx := range transactions {
		if i >= o.config.MaxDirectClassifications || breaker.open() {
			o.applyFallback(tx, stats)
			continue
		}
		if o.expired(ctx, deadline, stats) {
			o.applyFallback(tx, stats)
			continue
		}

		o.classifyOne(ctx, tx, tx.Description, breaker, stats)

		if o.config.InterBatchDelay > 0 && (i+1)%o.config.BatchSize == 0 {
			o.sleep(o.config.InterBatchDelay)
		}
	}

	stats.BreakerTripped = breaker.open()
}

// classifyGrouped classifies one representative per normalized-description
// group and applies the answer to all members. Groups are processed
// largest first so the most transactions are AI-covered before the
// deadline or the breaker cuts the run short.
func (o *Orchestrator) classifyGrouped(ctx context.Context, transactions []*models.Transaction, stats *RunStats) {
	deadline := time.Now().Add(o.config.GroupedDeadline)
	breaker := newCircuitBreaker(o.config.BreakerThreshold)

	groups := groupByDescription(transactions)
	stats.Groups = len(groups)

	for i, group := range groups {
		if breaker.open() || o.expired(ctx, deadline, stats) {
			for _, tx := range group.members {
				o.applyFallback(tx, stats)
			}
			continue
		}

		representative := group.members[0]
		result, merchantAI, ok := o.classifyWithRetry(ctx, representative.Description, breaker)
		for _, tx := range group.members {
			if ok {
				o.apply(tx, result, merchantAI, stats)
			} else {
				o.applyFallback(tx, stats)
			}
		}

		if o.config.InterBatchDelay > 0 && (i+1)%o.config.BatchSize == 0 {
			o.sleep(o.config.InterBatchDelay)
		}
	}

	stats.BreakerTripped = breaker.open()
}

// classifyOne runs the AI path for a single transaction, falling back on
// failure.
func (o *Orchestrator) classifyOne(ctx context.Context, tx *models.Transaction, description string, breaker *circuitBreaker, stats *RunStats) {
	result, merchantAI, ok := o.classifyWithRetry(ctx, description, breaker)
	if !ok {
		o.applyFallback(tx, stats)
		return
	}
	o.apply(tx, result, merchantAI, stats)
}

// classifyWithRetry makes the category call with the configured retry
// budget, pauses InterCallDelay, then makes the merchant call. Both are
// external calls, so either one failing feeds the breaker; the breaker
// resets only when the whole pair succeeds. The category call is
// authoritative: a merchant failure degrades to the fallback merchant
// while keeping the AI category, reported via merchantAI=false.
func (o *Orchestrator) classifyWithRetry(ctx context.Context, description string, breaker *circuitBreaker) (result models.ClassificationResult, merchantAI, ok bool) {
	var category CategoryResult
	var err error

	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		callCtx, cancel := o.callContext(ctx)
		category, err = o.classifier.ClassifyCategory(callCtx, description)
		cancel()
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		breaker.recordFailure()
		o.logger.WithError(err).WithField("description", truncateDescription(description)).
			Debug("Category classification failed")
		return models.ClassificationResult{}, false, false
	}

	result = models.ClassificationResult{
		Category:   sanitizeCategory(category.Category),
		Confidence: clampConfidence(category.Confidence),
	}

	if o.config.InterCallDelay > 0 {
		o.sleep(o.config.InterCallDelay)
	}

	callCtx, cancel := o.callContext(ctx)
	merchant, merchErr := o.classifier.ExtractMerchant(callCtx, description)
	cancel()
	if merchErr != nil {
		breaker.recordFailure()
		o.logger.WithError(merchErr).WithField("description", truncateDescription(description)).
			Debug("Merchant extraction failed")
		fallbackMerchant, _ := o.fallback.ExtractMerchant(ctx, description)
		result.Merchant = fallbackMerchant.Merchant
		return result, false, true
	}
	breaker.recordSuccess()

	result.Merchant = strings.TrimSpace(merchant.Merchant)
	if result.Merchant == "" {
		fallbackMerchant, _ := o.fallback.ExtractMerchant(ctx, description)
		result.Merchant = fallbackMerchant.Merchant
	}

	return result, true, true
}

func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.config.CallTimeout)
}

// expired reports whether the strategy deadline has passed or the outer
// context is done, recording which in the stats.
func (o *Orchestrator) expired(ctx context.Context, deadline time.Time, stats *RunStats) bool {
	if ctx.Err() != nil {
		stats.DeadlineExceeded = true
		return true
	}
	if time.Now().After(deadline) {
		stats.DeadlineExceeded = true
		return true
	}
	return false
}

func (o *Orchestrator) apply(tx *models.Transaction, result models.ClassificationResult, merchantAI bool, stats *RunStats) {
	confidence := clampConfidence(result.Confidence)
	tx.Category = result.Category
	tx.Merchant = result.Merchant
	tx.Confidence = &confidence

	if !merchantAI {
		stats.MerchantFallbacks++
	}
	if merchantAI && confidence > aiConfidenceFloor {
		stats.AIClassified++
	} else {
		stats.AILowConfidence++
	}
}

func (o *Orchestrator) applyFallback(tx *models.Transaction, stats *RunStats) {
	category, _ := o.fallback.ClassifyCategory(context.Background(), tx.Description)
	merchant, _ := o.fallback.ExtractMerchant(context.Background(), tx.Description)

	confidence := FallbackConfidence
	tx.Category = category.Category
	tx.Merchant = merchant.Merchant
	tx.Confidence = &confidence
	stats.FallbackClassified++
}

func (o *Orchestrator) fallbackAll(transactions []*models.Transaction, stats *RunStats) {
	for _, tx := range transactions {
		o.applyFallback(tx, stats)
	}
}

func (o *Orchestrator) logRun(stats RunStats) {
	o.logger.WithFields(logger.Fields{
		"strategy":          stats.Strategy,
		"total":             stats.Total,
		"ai_classified":     stats.AIClassified,
		"fallback":          stats.FallbackClassified,
		"merchant_fallback": stats.MerchantFallbacks,
		"breaker_tripped":   stats.BreakerTripped,
		"deadline_exceeded": stats.DeadlineExceeded,
		"duration":          stats.Duration.String(),
	}).Info("Classification run finished")
}

// descriptionGroup is one set of transactions sharing a normalized
// description.
type descriptionGroup struct {
	key     string
	members []*models.Transaction
}

// groupByDescription buckets transactions by normalized description,
// ordered largest group first (ties broken by first appearance).
func groupByDescription(transactions []*models.Transaction) []*descriptionGroup {
	index := make(map[string]*descriptionGroup)
	var groups []*descriptionGroup

	for _, tx := range transactions {
		key := normalizeDescriptionKey(tx.Description)
		group, ok := index[key]
		if !ok {
			group = &descriptionGroup{key: key}
			index[key] = group
			groups = append(groups, group)
		}
		group.members = append(group.members, tx)
	}

	// Stable insertion sort by size; group counts are small.
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && len(groups[j].members) > len(groups[j-1].members); j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}

	return groups
}

// normalizeDescriptionKey collapses transaction references so recurring
// payments with per-transaction serials group together: lowercase, digits
// removed, punctuation to spaces, whitespace squeezed.
func normalizeDescriptionKey(description string) string {
	lower := strings.ToLower(description)

	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r):
			return -1
		case unicode.IsLetter(r) || unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, lower)

	return strings.Join(strings.Fields(mapped), " ")
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func sanitizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" || !IsKnownCategory(trimmed) {
		return CategoryOther
	}
	return trimmed
}

func truncateDescription(description string) string {
	if len(description) <= 60 {
		return description
	}
	return description[:57] + "..."
}
