package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy decides how often and how patiently a RetryingClient retries.
type RetryPolicy struct {
	// Attempts counts every call, the first one included. Values below 1
	// mean a single attempt.
	Attempts int

	// Backoff is the wait before the second attempt. Each later wait is
	// Multiplier times the previous one, capped at MaxBackoff when set.
	Backoff    time.Duration
	MaxBackoff time.Duration
	Multiplier float64

	// Jitter spreads each wait uniformly over +/- Jitter of its length.
	Jitter float64

	// Retryable overrides IsRetryable.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries twice, waiting about 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:   3,
	Backoff:    time.Second,
	MaxBackoff: 30 * time.Second,
	Multiplier: 2,
	Jitter:     0.1,
}

// RetryOption adjusts a RetryPolicy.
type RetryOption func(*RetryPolicy)

// RetryAttempts sets the total number of attempts.
func RetryAttempts(n int) RetryOption {
	return func(p *RetryPolicy) { p.Attempts = n }
}

// RetryBackoff sets the first wait and the cap on later ones.
func RetryBackoff(first, limit time.Duration) RetryOption {
	return func(p *RetryPolicy) {
		p.Backoff = first
		p.MaxBackoff = limit
	}
}

// RetryJitter sets the jitter fraction. Zero makes waits deterministic.
func RetryJitter(j float64) RetryOption {
	return func(p *RetryPolicy) { p.Jitter = j }
}

// RetryOn replaces the retryability check.
func RetryOn(fn func(error) bool) RetryOption {
	return func(p *RetryPolicy) { p.Retryable = fn }
}

// NewRetryPolicy starts from DefaultRetryPolicy and applies opts.
func NewRetryPolicy(opts ...RetryOption) RetryPolicy {
	p := DefaultRetryPolicy
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// wait returns the pause after the given failed attempt (1-based).
func (p RetryPolicy) wait(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.Backoff) * math.Pow(mult, float64(attempt-1))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	return jittered(time.Duration(d), p.Jitter)
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*jitter*(2*rand.Float64()-1))
}

// RetryingClient retries failed completions according to a RetryPolicy.
type RetryingClient struct {
	next   Client
	policy RetryPolicy
}

// Retrying wraps client so retryable failures are attempted again.
// Nodes opt into it explicitly; the graph engine never retries.
func Retrying(client Client, policy RetryPolicy) *RetryingClient {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}
	return &RetryingClient{next: client, policy: policy}
}

// Complete implements Client.
func (r *RetryingClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var err error
	for attempt := 1; ; attempt++ {
		var resp *CompletionResponse
		resp, err = r.next.Complete(ctx, req)
		switch {
		case err == nil:
			return resp, nil
		case !r.policy.Retryable(err):
			return nil, err
		case attempt == r.policy.Attempts:
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(r.policy.wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, NewError("complete", ctx.Err(), false)
		case <-timer.C:
		}
	}
}
