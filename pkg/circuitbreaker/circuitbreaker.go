// Package circuitbreaker stops calling a failing dependency for a cool-down
// period. The daemon wraps remote notification channels with it, so a dead
// chat endpoint costs one fast error per reminder instead of a full retry
// cycle on every poll.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the current state of the breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets one trial call through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
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
	// ErrOpen is returned while the breaker rejects calls.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTrialInFlight is returned while the half-open trial call is in flight.
	ErrTrialInFlight = errors.New("circuit breaker trial call in flight")
)

// Config holds breaker configuration.
type Config struct {
	// Name identifies the breaker in logs.
	Name string

	// FailureThreshold is the consecutive failures that open the breaker.
	FailureThreshold int

	// CoolDown is how long the breaker stays open before a single trial call
	// is let through. A successful trial closes the breaker.
	CoolDown time.Duration

	// OnStateChange is called, under the breaker lock, on every transition.
	OnStateChange func(name string, from, to State)

	// IsFailure decides whether an error counts. Nil counts every error.
	IsFailure func(error) bool

	// Now is the time source. Nil means time.Now.
	Now func() time.Time
}

// Option is a functional option for configuring the breaker.
type Option func(*Config)

// WithFailureThreshold sets the failure threshold.
func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.FailureThreshold = n
		}
	}
}

// WithCoolDown sets how long the breaker stays open.
func WithCoolDown(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.CoolDown = d
		}
	}
}

// WithOnStateChange sets the transition callback.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) { c.OnStateChange = fn }
}

// WithIsFailure sets the failure classifier.
func WithIsFailure(fn func(error) bool) Option {
	return func(c *Config) { c.IsFailure = fn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.Now = now }
}

// Breaker implements the circuit breaker pattern.
type Breaker struct {
	config Config

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	inTrial  bool
}

// New creates a Breaker. Defaults: 5 consecutive failures open it for 30s.
func New(name string, opts ...Option) *Breaker {
	config := Config{
		Name:             name,
		FailureThreshold: 5,
		CoolDown:         30 * time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Breaker{config: config}
}

// Execute runs fn unless the breaker rejects the call.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.config.Now().Sub(b.openedAt) < b.config.CoolDown {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
		b.inTrial = true
	case StateHalfOpen:
		if b.inTrial {
			return ErrTrialInFlight
		}
		b.inTrial = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil
	if failed && b.config.IsFailure != nil {
		failed = b.config.IsFailure(err)
	}
	b.inTrial = false

	if !failed {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.transition(StateClosed)
		}
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
		b.openedAt = b.config.Now()
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures = 0
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.config.Name, from, to)
	}
}

// State returns the current state. An open breaker whose cool-down elapsed
// still reports open until the next call tries it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.config.Name
}

// IsRejection reports whether err came from the breaker itself.
func IsRejection(err error) bool {
	return errors.Is(err, ErrOpen) || errors.Is(err, ErrTrialInFlight)
}
