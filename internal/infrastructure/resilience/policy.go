package resilience

import "time"

type Config struct {
	// Retries apply only to errors the classifier marks retryable. Upstream
	// quotas reset on a coarse timescale, so the defaults accept multi-minute
	// stalls rather than failing fast: wait = RetryBaseBackoff × attempt,
	// capped at RetryBackoffCap.
	RetryMaxAttempts int
	RetryBaseBackoff time.Duration
	RetryBackoffCap  time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts: 3,
		RetryBaseBackoff: 65 * time.Second,
		RetryBackoffCap:  5 * time.Minute,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.RetryMaxAttempts <= 0 {
		out.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if out.RetryBaseBackoff <= 0 {
		out.RetryBaseBackoff = def.RetryBaseBackoff
	}
	if out.RetryBackoffCap < out.RetryBaseBackoff {
		out.RetryBackoffCap = out.RetryBaseBackoff
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
