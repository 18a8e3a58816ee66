package classify

// circuitBreaker trips after a run of consecutive classifier failures.
// Once open it stays open for the rest of the classification run; the
// orchestrator routes everything remaining through the fallback. The
// orchestrator is single-goroutine, so no locking.
type circuitBreaker struct {
	threshold   int
	consecutive int
	tripped     bool
}

func newCircuitBreaker(threshold int) *circuitBreaker {
	return &circuitBreaker{threshold: threshold}
}

func (b *circuitBreaker) recordSuccess() {
	b.consecutive = 0
}

func (b *circuitBreaker) recordFailure() {
	b.consecutive++
	if b.consecutive >= b.threshold {
		b.tripped = true
	}
}

// open reports whether the breaker has tripped.
func (b *circuitBreaker) open() bool {
	return b.tripped
}
