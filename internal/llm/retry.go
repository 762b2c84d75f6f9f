package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ent0n29/genie/internal/prompt"
	"github.com/ent0n29/genie/internal/reliability"
)

// RetryConfig bounds the retry loop around a completion backend.
type RetryConfig struct {
	Attempts int // extra attempts after the first call
	Base     time.Duration
	Cap      time.Duration
}

type retryClient struct {
	inner Client
	cfg   RetryConfig
}

// WithRetry wraps a client with bounded capped-backoff retry for transient
// failures. History is never written inside this loop, so a retried call
// keeps the no-partial-write guarantee.
func WithRetry(inner Client, cfg RetryConfig) Client {
	if cfg.Attempts <= 0 {
		return inner
	}
	if cfg.Base <= 0 {
		cfg.Base = 250 * time.Millisecond
	}
	if cfg.Cap <= 0 {
		cfg.Cap = 2 * time.Second
	}
	return &retryClient{inner: inner, cfg: cfg}
}

func (c *retryClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt-1, c.cfg.Base, c.cfg.Cap)):
			}
		}
		out, err := c.inner.Complete(ctx, messages)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return reliability.IsRetryableHTTPStatus(apiErr.HTTPStatusCode)
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return reliability.IsRetryableHTTPStatus(statusErr.status)
	}
	return false
}
