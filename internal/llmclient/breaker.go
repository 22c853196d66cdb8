package llmclient

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker protects a provider from being hammered while it is down.
// Closed passes traffic, open rejects it, and half-open probes after the
// timeout elapses.
type circuitBreaker struct {
	mu sync.Mutex

	state            breakerState
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	openedAt         time.Time
}

func newCircuitBreaker(failureThreshold, successThreshold int, timeout time.Duration) *circuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 2
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &circuitBreaker{
		state:            breakerClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
	}
}

// Allow reports whether a request may proceed.
func (cb *circuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(cb.openedAt) >= cb.timeout {
			cb.state = breakerHalfOpen
			cb.successes = 0
			return true
		}
		return false
	case breakerHalfOpen:
		return true
	}
	return true
}

// RecordSuccess notes a successful call, closing the breaker once enough
// probes succeed.
func (cb *circuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		cb.failures = 0
	case breakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = breakerClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

// RecordFailure notes a failed call, opening the breaker when the failure
// threshold is reached.
func (cb *circuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.state = breakerOpen
			cb.openedAt = time.Now()
		}
	case breakerHalfOpen:
		cb.state = breakerOpen
		cb.openedAt = time.Now()
		cb.failures = cb.failureThreshold
	}
}
