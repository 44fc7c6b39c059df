package fetch

import (
	"math/rand"
	"time"
)

// Policy holds the configuration for retry behavior.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Total attempts are bounded by MaxRetries+1.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Jitter adds a uniformly random duration in [0, delay/2] to each
	// backoff to spread simultaneous retries from many callers.
	Jitter bool

	// RetryableStatuses are HTTP status codes that trigger a retry.
	RetryableStatuses map[int]bool
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
		RetryableStatuses: RetryableStatuses(408, 429, 500, 502, 503, 504),
	}
}

// RetryableStatuses builds a status set from a list of codes.
func RetryableStatuses(codes ...int) map[int]bool {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// PolicyOverride is a partial per-call override merged over a base policy.
// Pointer fields distinguish "not set" from legitimate zero values
// (MaxRetries 0, Jitter false).
type PolicyOverride struct {
	MaxRetries        *int
	InitialDelay      *time.Duration
	MaxDelay          *time.Duration
	BackoffMultiplier *float64
	Jitter            *bool
	RetryableStatuses []int
}

// Merge returns the policy with any set override fields applied.
func (p Policy) Merge(o *PolicyOverride) Policy {
	if o == nil {
		return p
	}
	if o.MaxRetries != nil {
		p.MaxRetries = *o.MaxRetries
	}
	if o.InitialDelay != nil {
		p.InitialDelay = *o.InitialDelay
	}
	if o.MaxDelay != nil {
		p.MaxDelay = *o.MaxDelay
	}
	if o.BackoffMultiplier != nil {
		p.BackoffMultiplier = *o.BackoffMultiplier
	}
	if o.Jitter != nil {
		p.Jitter = *o.Jitter
	}
	if o.RetryableStatuses != nil {
		p.RetryableStatuses = RetryableStatuses(o.RetryableStatuses...)
	}
	return p
}

// backoff computes the delay before retry number attempt (0-based).
// delay = min(InitialDelay * BackoffMultiplier^attempt, MaxDelay),
// plus jitter in [0, delay/2] when enabled.
func (p Policy) backoff(attempt int) time.Duration {
	delay := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffMultiplier
		if delay >= float64(p.MaxDelay) {
			break
		}
	}
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	d := time.Duration(delay)
	if p.Jitter {
		d += time.Duration(rand.Int63n(int64(delay)/2 + 1))
	}
	return d
}
