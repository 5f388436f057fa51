package resilience

import "time"

// BackoffStrategy selects how the wait grows between retry attempts.
type BackoffStrategy string

const (
	// BackoffExponential multiplies the wait by RetryMultiplier after each
	// failed attempt.
	BackoffExponential BackoffStrategy = "exponential"
	// BackoffLinear adds RetryBackoffIncrement after each failed attempt, so
	// attempt k (1-based retries) waits k times the increment when the
	// initial backoff equals the increment.
	BackoffLinear BackoffStrategy = "linear"
)

type Config struct {
	RetryMaxAttempts      int
	RetryInitialBackoff   time.Duration
	RetryMaxBackoff       time.Duration
	RetryMultiplier       float64
	RetryBackoffStrategy  BackoffStrategy
	RetryBackoffIncrement time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:     3,
		RetryInitialBackoff:  100 * time.Millisecond,
		RetryMaxBackoff:      400 * time.Millisecond,
		RetryMultiplier:      2.0,
		RetryBackoffStrategy: BackoffExponential,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// LinearConfig is a retry-only policy with attempt-indexed waits of
// unit, 2*unit, ... and no circuit breaker.
func LinearConfig(maxAttempts int, unit time.Duration) Config {
	return Config{
		RetryMaxAttempts:      maxAttempts,
		RetryInitialBackoff:   unit,
		RetryMaxBackoff:       time.Duration(maxAttempts) * unit,
		RetryBackoffStrategy:  BackoffLinear,
		RetryBackoffIncrement: unit,

		BreakerEnabled: false,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryBackoffStrategy == "" {
		out.RetryBackoffStrategy = def.RetryBackoffStrategy
	}
	if out.RetryBackoffStrategy == BackoffExponential {
		if out.RetryInitialBackoff <= 0 {
			out.RetryInitialBackoff = def.RetryInitialBackoff
		}
		if out.RetryMaxBackoff <= 0 {
			out.RetryMaxBackoff = def.RetryMaxBackoff
		}
		if out.RetryMultiplier < 1.0 {
			out.RetryMultiplier = def.RetryMultiplier
		}
	}
	if out.RetryMaxBackoff < out.RetryInitialBackoff {
		out.RetryMaxBackoff = out.RetryInitialBackoff
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}

func (c Config) nextBackoff(current time.Duration) time.Duration {
	var next time.Duration
	switch c.RetryBackoffStrategy {
	case BackoffLinear:
		next = current + c.RetryBackoffIncrement
	default:
		next = time.Duration(float64(current) * c.RetryMultiplier)
	}
	if c.RetryMaxBackoff > 0 && next > c.RetryMaxBackoff {
		next = c.RetryMaxBackoff
	}
	return next
}
