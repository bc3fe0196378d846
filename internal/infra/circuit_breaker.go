package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitState is the position of the breaker in front of the SMTP relay.
// Closed lets sends through, Open rejects them outright and HalfOpen lets
// trial sends decide whether the relay is back.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// ErrCircuitOpen is returned without attempting a send while the relay is
// considered down. Email jobs see it as a retryable failure.
var ErrCircuitOpen = errors.New("smtp relay unavailable: circuit open")

// SMTPBreakerConfig sets when the mail relay counts as down. Zero fields
// take the DefaultSMTPBreakerConfig value.
type SMTPBreakerConfig struct {
	TripAfter  int           // consecutive failed sends that open the circuit
	CloseAfter int           // successful trial sends needed to close it again
	Cooldown   time.Duration // time spent open before a trial send
}

// DefaultSMTPBreakerConfig opens after three refused sends, waits two
// minutes, and closes on the first trial that gets through.
func DefaultSMTPBreakerConfig() SMTPBreakerConfig {
	return SMTPBreakerConfig{
		TripAfter:  3,
		CloseAfter: 1,
		Cooldown:   2 * time.Minute,
	}
}

// CircuitBreaker guards Mailer.Send. It is safe for concurrent use by the
// email workers.
type CircuitBreaker struct {
	cfg SMTPBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	trials   int
	openedAt time.Time
}

func NewCircuitBreaker(cfg SMTPBreakerConfig) *CircuitBreaker {
	def := DefaultSMTPBreakerConfig()
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = def.TripAfter
	}
	if cfg.CloseAfter <= 0 {
		cfg.CloseAfter = def.CloseAfter
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State reports the current position. An open circuit whose cooldown has
// passed reads as half-open.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireLocked()
	return cb.state
}

// StateName is what /health reports for the relay.
func (cb *CircuitBreaker) StateName() string { return cb.State().String() }

// Execute runs send unless the circuit is open, and feeds its result back
// into the breaker.
func (cb *CircuitBreaker) Execute(send func() error) error {
	cb.mu.Lock()
	cb.expireLocked()
	if cb.state == CircuitOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := send()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failedLocked()
	} else {
		cb.succeededLocked()
	}
	return err
}

func (cb *CircuitBreaker) expireLocked() {
	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.Cooldown {
		cb.state = CircuitHalfOpen
		cb.trials = 0
		log.Info().Msg("smtp breaker: cooldown over, trying the relay again")
	}
}

func (cb *CircuitBreaker) failedLocked() {
	cb.failures++
	if cb.state == CircuitHalfOpen || cb.failures >= cb.cfg.TripAfter {
		cb.openLocked()
	}
}

func (cb *CircuitBreaker) succeededLocked() {
	switch cb.state {
	case CircuitHalfOpen:
		cb.trials++
		if cb.trials >= cb.cfg.CloseAfter {
			cb.state = CircuitClosed
			cb.failures = 0
			log.Info().Msg("smtp breaker: relay recovered, circuit closed")
		}
	default:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) openLocked() {
	if cb.state != CircuitOpen {
		log.Warn().
			Int("failures", cb.failures).
			Dur("cooldown", cb.cfg.Cooldown).
			Msg("smtp breaker: relay failing, circuit opened")
	}
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.trials = 0
}
