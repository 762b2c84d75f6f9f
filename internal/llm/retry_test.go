package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ent0n29/genie/internal/prompt"
)

type flakyClient struct {
	calls    atomic.Int32
	failures int
	err      error
}

func (c *flakyClient) Complete(_ context.Context, _ []prompt.Message) (string, error) {
	n := c.calls.Add(1)
	if int(n) <= c.failures {
		return "", c.err
	}
	return "ok", nil
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	inner := &flakyClient{failures: 2, err: fmt.Errorf("wrapped: %w", ErrUnavailable)}
	client := WithRetry(inner, RetryConfig{Attempts: 2, Base: time.Millisecond, Cap: 5 * time.Millisecond})

	out, err := client.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("Complete() = %q, want %q", out, "ok")
	}
	if got := inner.calls.Load(); got != 3 {
		t.Fatalf("inner calls = %d, want 3", got)
	}
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	inner := &flakyClient{failures: 10, err: fmt.Errorf("wrapped: %w", ErrUnavailable)}
	client := WithRetry(inner, RetryConfig{Attempts: 2, Base: time.Millisecond, Cap: 5 * time.Millisecond})

	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Complete() error = %v, want ErrUnavailable", err)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Fatalf("inner calls = %d, want 3", got)
	}
}

func TestRetrySkipsNonRetryableErrors(t *testing.T) {
	inner := &flakyClient{failures: 10, err: errors.New("bad request")}
	client := WithRetry(inner, RetryConfig{Attempts: 3, Base: time.Millisecond, Cap: 5 * time.Millisecond})

	_, err := client.Complete(context.Background(), nil)
	if err == nil {
		t.Fatalf("Complete() error = nil, want failure")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Fatalf("inner calls = %d, want 1 (no retries)", got)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	inner := &flakyClient{failures: 10, err: fmt.Errorf("wrapped: %w", ErrUnavailable)}
	client := WithRetry(inner, RetryConfig{Attempts: 5, Base: 50 * time.Millisecond, Cap: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Complete() error = %v, want context.Canceled", err)
	}
}

func TestWithRetryZeroAttemptsReturnsInner(t *testing.T) {
	inner := NewMockClient("x")
	if got := WithRetry(inner, RetryConfig{}); got != Client(inner) {
		t.Fatalf("WithRetry(0 attempts) should return the inner client unchanged")
	}
}
