// breaker.go - Circuit breaker in front of remote storage backends.
//
// Stops hammering MinIO, Redis or PostgreSQL once they keep failing and
// lets a single probe through after the cool-down.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CircuitState represents the current state of a circuit breaker.
type CircuitState int

const (
	// StateClosed: requests flow normally
	StateClosed CircuitState = iota
	// StateOpen: requests fail fast
	StateOpen
	// StateHalfOpen: a probe is testing whether the backend recovered
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when half-open circuit receives too many requests.
	ErrTooManyRequests = errors.New("too many requests while circuit is half-open")
)

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	mu sync.Mutex

	maxFailures uint32        // failures before opening circuit
	timeout     time.Duration // time to wait before attempting recovery
	maxHalfOpen uint32        // concurrent probes in half-open state
	now         func() time.Time

	state            CircuitState
	failures         uint32
	lastFailureTime  time.Time
	halfOpenRequests uint32

	totalRequests    uint64
	successRequests  uint64
	failedRequests   uint64
	rejectedRequests uint64
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(maxFailures uint32, timeout time.Duration) *CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		maxHalfOpen: 1,
		now:         time.Now,
		state:       StateClosed,
	}
}

// Execute runs fn unless the circuit is open. A non-nil error from fn
// counts as a failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailureTime) <= cb.timeout {
			cb.rejectedRequests++
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.halfOpenRequests = 0
		logrus.WithField("timeout_elapsed", cb.timeout.String()).Info("circuit_breaker_half_open")
		fallthrough

	case StateHalfOpen:
		if cb.halfOpenRequests >= cb.maxHalfOpen {
			cb.rejectedRequests++
			return ErrTooManyRequests
		}
		cb.halfOpenRequests++
	}
	return nil
}

func (cb *CircuitBreaker) onSuccess() {
	cb.successRequests++

	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = 0
		cb.halfOpenRequests = 0
		logrus.WithField("reason", "recovery_successful").Info("circuit_breaker_closed")
		return
	}
	cb.failures = 0
}

func (cb *CircuitBreaker) onFailure() {
	cb.failedRequests++
	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != StateOpen {
			cb.state = StateOpen
			cb.halfOpenRequests = 0
			logrus.WithFields(logrus.Fields{
				"failures":     cb.failures,
				"max_failures": cb.maxFailures,
				"timeout":      cb.timeout.String(),
			}).Warn("circuit_breaker_opened")
		}
	}
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns circuit breaker statistics.
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerStats{
		State:            cb.state.String(),
		Failures:         cb.failures,
		TotalRequests:    cb.totalRequests,
		SuccessRequests:  cb.successRequests,
		FailedRequests:   cb.failedRequests,
		RejectedRequests: cb.rejectedRequests,
		LastFailureTime:  cb.lastFailureTime,
	}
}

// Reset manually resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.halfOpenRequests = 0
}

// CircuitBreakerStats holds circuit breaker statistics.
type CircuitBreakerStats struct {
	State            string    `json:"state"`
	Failures         uint32    `json:"failures"`
	TotalRequests    uint64    `json:"total_requests"`
	SuccessRequests  uint64    `json:"success_requests"`
	FailedRequests   uint64    `json:"failed_requests"`
	RejectedRequests uint64    `json:"rejected_requests"`
	LastFailureTime  time.Time `json:"last_failure_time"`
}

// Guarded routes every call to a Store through a CircuitBreaker. Answers
// that are part of the Store contract (not found, already exists, bad
// name) and calls ended by the caller's own context do not count as
// backend failures.
type Guarded struct {
	next    Store
	breaker *CircuitBreaker
}

// NewGuarded wraps next with breaker.
func NewGuarded(next Store, breaker *CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

// Breaker exposes the breaker for health reporting.
func (g *Guarded) Breaker() *CircuitBreaker { return g.breaker }

func isContractError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExists) || errors.Is(err, ErrInvalidName)
}

// isCallerError reports whether a failed call ended because the caller's
// own ctx did. Timeouts raised inside a backend client still count.
func isCallerError(ctx context.Context) bool {
	return ctx.Err() != nil
}

func (g *Guarded) run(ctx context.Context, fn func() error) error {
	var passed error
	err := g.breaker.Execute(func() error {
		err := fn()
		if err != nil && (isContractError(err) || isCallerError(ctx)) {
			passed = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return passed
}

func (g *Guarded) Save(ctx context.Context, name string, content []byte) (string, error) {
	var locator string
	err := g.run(ctx, func() error {
		var err error
		locator, err = g.next.Save(ctx, name, content)
		return err
	})
	return locator, err
}

func (g *Guarded) Read(ctx context.Context, name string) ([]byte, error) {
	var b []byte
	err := g.run(ctx, func() error {
		var err error
		b, err = g.next.Read(ctx, name)
		return err
	})
	return b, err
}

// Ping bypasses the breaker so health checks see the real backend state.
func (g *Guarded) Ping(ctx context.Context) error {
	if p, ok := g.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
