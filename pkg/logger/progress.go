package logger

import (
	"fmt"
	"sync"
	"time"
)

// PhaseTracker tracks progress through the fixed phases of one statement
// run (extract, normalize, classify, analyze, persist). It logs a line when
// a phase starts and finishes, and accumulates per-phase durations so the
// pipeline can report where a slow statement spent its time.
type PhaseTracker struct {
	logger      Logger
	statementID string
	startTime   time.Time

	mutex        sync.Mutex
	currentPhase string
	phaseStart   time.Time
	durations    map[string]time.Duration
	recordCounts map[string]int
}

// NewPhaseTracker creates a tracker for one statement run.
func NewPhaseTracker(statementID string, log Logger) *PhaseTracker {
	if log == nil {
		log = GetGlobalLogger()
	}

	return &PhaseTracker{
		logger:       log.WithComponent("progress").WithField("statement_id", statementID),
		statementID:  statementID,
		startTime:    time.Now(),
		durations:    make(map[string]time.Duration),
		recordCounts: make(map[string]int),
	}
}

// StartPhase begins timing a named phase, finishing the previous one if it
// is still open.
func (p *PhaseTracker) StartPhase(phase string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	now := time.Now()
	if p.currentPhase != "" {
		p.closeCurrentLocked(now, 0)
	}

	p.currentPhase = phase
	p.phaseStart = now
	p.logger.WithField("phase", phase).Debug("Phase started")
}

// EndPhase finishes the current phase, recording how many records it
// produced or touched.
func (p *PhaseTracker) EndPhase(records int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.currentPhase == "" {
		return
	}
	p.closeCurrentLocked(time.Now(), records)
}

func (p *PhaseTracker) closeCurrentLocked(now time.Time, records int) {
	elapsed := now.Sub(p.phaseStart)
	p.durations[p.currentPhase] += elapsed
	p.recordCounts[p.currentPhase] += records

	p.logger.WithFields(Fields{
		"phase":    p.currentPhase,
		"duration": elapsed.String(),
		"records":  records,
	}).Info("Phase finished")

	p.currentPhase = ""
}

// Elapsed returns the total wall-clock time since the tracker was created.
func (p *PhaseTracker) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// PhaseDuration returns the accumulated time spent in a phase.
func (p *PhaseTracker) PhaseDuration(phase string) time.Duration {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.durations[phase]
}

// Summary logs a single line with the full phase timing breakdown.
func (p *PhaseTracker) Summary() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	fields := Fields{
		"total": time.Since(p.startTime).String(),
	}
	for phase, d := range p.durations {
		fields["phase_"+phase] = d.String()
	}
	for phase, n := range p.recordCounts {
		if n > 0 {
			fields["records_"+phase] = n
		}
	}

	p.logger.WithFields(fields).Info("Statement processing summary")
}

// RateString formats a records-per-second rate for log output.
func RateString(records int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f/sec", float64(records)/elapsed.Seconds())
}
