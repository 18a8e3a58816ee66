package classify

import (
	"time"

	pkgerrors "golang-statement-pipeline/pkg/errors"
)

// Config controls the classification orchestrator.
type Config struct {
	// GroupingThreshold is the ledger size at which the orchestrator
	// switches from per-transaction classification to grouped
	// classification by normalized description.
	GroupingThreshold int `json:"grouping_threshold"`

	// BatchSize is the number of AI calls made between deadline checks.
	BatchSize int `json:"batch_size"`

	// MaxDirectClassifications caps AI usage in the direct strategy;
	// transactions beyond the cap take the fallback path.
	MaxDirectClassifications int `json:"max_direct_classifications"`

	// MaxRetries is the number of additional attempts after a failed
	// classifier call.
	MaxRetries int `json:"max_retries"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerThreshold int `json:"breaker_threshold"`

	// CallTimeout bounds one classifier call.
	CallTimeout time.Duration `json:"call_timeout"`

	// InterCallDelay and InterBatchDelay pace the AI calls to stay under
	// provider rate limits.
	InterCallDelay  time.Duration `json:"inter_call_delay"`
	InterBatchDelay time.Duration `json:"inter_batch_delay"`

	// DirectDeadline and GroupedDeadline bound the whole classification
	// run per strategy; past the deadline the remainder falls back.
	DirectDeadline  time.Duration `json:"direct_deadline"`
	GroupedDeadline time.Duration `json:"grouped_deadline"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		GroupingThreshold:        100,
		BatchSize:                5,
		MaxDirectClassifications: 30,
		MaxRetries:               1,
		BreakerThreshold:         3,
		CallTimeout:              15 * time.Second,
		InterCallDelay:           200 * time.Millisecond,
		InterBatchDelay:          time.Second,
		DirectDeadline:           90 * time.Second,
		GroupedDeadline:          180 * time.Second,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.GroupingThreshold <= 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.grouping_threshold", c.GroupingThreshold, nil)
	}
	if c.BatchSize <= 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.batch_size", c.BatchSize, nil)
	}
	if c.MaxDirectClassifications < 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.max_direct_classifications", c.MaxDirectClassifications, nil)
	}
	if c.MaxRetries < 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.max_retries", c.MaxRetries, nil)
	}
	if c.BreakerThreshold <= 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.breaker_threshold", c.BreakerThreshold, nil)
	}
	if c.DirectDeadline <= 0 || c.GroupedDeadline <= 0 {
		return pkgerrors.ConfigurationError(pkgerrors.CodeInvalidConfig,
			"classification.deadlines", "must be positive", nil)
	}
	return nil
}
