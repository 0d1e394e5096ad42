// Package circuit implements a circuit breaker for the object-store gateway.
// Repeated STORE_UNAVAILABLE failures open the circuit so a degraded store is
// not hammered by retries from every UI action at once.
package circuit

import (
	"sync"
	"time"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// State is the breaker state.
type State int

const (
	// StateClosed passes requests through.
	StateClosed State = iota
	// StateOpen rejects requests immediately.
	StateOpen
	// StateHalfOpen allows one probe request to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config tunes the breaker.
type Config struct {
	// FailureThreshold is how many consecutive unavailability failures
	// open the circuit.
	FailureThreshold int `yaml:"failure_threshold"`

	// CoolDown is how long the circuit stays open before a probe is allowed.
	CoolDown time.Duration `yaml:"cool_down"`

	// OnStateChange is called with each transition.
	OnStateChange func(from, to State) `yaml:"-"`
}

// DefaultConfig returns a breaker that opens after 5 consecutive
// unavailability failures and probes again after 30 seconds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		CoolDown:         30 * time.Second,
	}
}

// Breaker is safe for concurrent use.
type Breaker struct {
	config Config

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	now      func() time.Time
}

// New creates a Breaker, applying defaults for zero values.
func New(config Config) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.CoolDown <= 0 {
		config.CoolDown = 30 * time.Second
	}
	return &Breaker{config: config, now: time.Now}
}

// Do runs fn unless the circuit is open. While open, calls fail immediately
// with STORE_UNAVAILABLE; the store is not touched. Only unavailability
// counts toward tripping — NotFound, AccessDenied, and caller errors pass
// through without affecting the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

// State reports the current state, accounting for cool-down expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.stateLocked() {
	case StateOpen:
		return errors.New(errors.ErrCodeStoreUnavailable, "circuit open: store recently unavailable")
	case StateHalfOpen:
		// One probe at a time: re-open for concurrent callers until the
		// probe reports back.
		b.transition(StateOpen)
		b.openedAt = b.now()
		return nil
	default:
		return nil
	}
}

func (b *Breaker) after(err error) {
	unavailable := errors.CodeOf(err) == errors.ErrCodeStoreUnavailable

	b.mu.Lock()
	defer b.mu.Unlock()
	if !unavailable {
		b.failures = 0
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	if b.failures >= b.config.FailureThreshold && b.state == StateClosed {
		b.transition(StateOpen)
		b.openedAt = b.now()
	}
}

func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.CoolDown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	if b.config.OnStateChange != nil && from != to {
		b.config.OnStateChange(from, to)
	}
}
