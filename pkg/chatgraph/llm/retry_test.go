package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetry keeps tests quick.
var fastRetry = NewRetryPolicy(
	RetryAttempts(3),
	RetryBackoff(time.Millisecond, 5*time.Millisecond),
	RetryJitter(0),
)

// flakyClient fails the first n calls with err, then succeeds.
func flakyClient(n int, err error) *MockClient {
	calls := 0
	return NewMockClient("").WithCompleteFunc(func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
		calls++
		if calls <= n {
			return nil, err
		}
		return &CompletionResponse{Content: "ok"}, nil
	})
}

func TestRetrying_SucceedsAfterTransientFailures(t *testing.T) {
	mock := flakyClient(2, NewError("complete", errors.New("429"), true))

	resp, err := Retrying(mock, fastRetry).Complete(context.Background(), CompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetrying_GivesUp(t *testing.T) {
	cause := NewError("complete", errors.New("503"), true)
	mock := flakyClient(10, cause)

	_, err := Retrying(mock, fastRetry).Complete(context.Background(), CompletionRequest{})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, mock.CallCount())
}

func TestRetrying_PermanentErrorNotRetried(t *testing.T) {
	cause := NewError("complete", errors.New("401"), false)
	mock := flakyClient(10, cause)

	_, err := Retrying(mock, fastRetry).Complete(context.Background(), CompletionRequest{})

	assert.Same(t, cause, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetrying_CustomRetryableFunc(t *testing.T) {
	plain := errors.New("flaky")
	mock := flakyClient(1, plain)
	policy := NewRetryPolicy(RetryAttempts(2), RetryBackoff(time.Millisecond, 0),
		RetryOn(func(err error) bool { return errors.Is(err, plain) }))

	resp, err := Retrying(mock, policy).Complete(context.Background(), CompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetrying_ContextCancelledDuringBackoff(t *testing.T) {
	mock := flakyClient(10, NewError("complete", errors.New("429"), true))
	policy := NewRetryPolicy(RetryAttempts(5), RetryBackoff(time.Hour, 0), RetryJitter(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Retrying(mock, policy).Complete(ctx, CompletionRequest{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetrying_MinimumOneAttempt(t *testing.T) {
	mock := NewMockClient("hi")

	resp, err := Retrying(mock, RetryPolicy{}).Complete(context.Background(), CompletionRequest{})

	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
}

func TestNewRetryPolicy(t *testing.T) {
	p := NewRetryPolicy()
	assert.Equal(t, DefaultRetryPolicy.Attempts, p.Attempts)
	assert.Equal(t, DefaultRetryPolicy.Backoff, p.Backoff)

	p = NewRetryPolicy(RetryAttempts(7), RetryBackoff(time.Second, time.Minute))
	assert.Equal(t, 7, p.Attempts)
	assert.Equal(t, time.Minute, p.MaxBackoff)
}

func TestRetryPolicy_Wait(t *testing.T) {
	p := RetryPolicy{Backoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, Multiplier: 2}
	assert.Equal(t, 100*time.Millisecond, p.wait(1))
	assert.Equal(t, 200*time.Millisecond, p.wait(2))
	assert.Equal(t, 300*time.Millisecond, p.wait(3), "capped")

	p.Multiplier = 0
	assert.Equal(t, 100*time.Millisecond, p.wait(4), "multiplier below 1 keeps the wait flat")
}

func TestJittered(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, base, jittered(base, 0))

	for i := 0; i < 50; i++ {
		d := jittered(base, 0.2)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}
