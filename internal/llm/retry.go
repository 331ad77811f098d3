package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry defaults for transient provider failures.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// RetryingClient wraps a Client with exponential back-off retry logic.
type RetryingClient struct {
	Client
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
}

// NewRetryingClient wraps inner with the default retry policy.
func NewRetryingClient(inner Client, logger *slog.Logger) *RetryingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingClient{
		Client:      inner,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Logger:      logger,
	}
}

// GenerateContent retries the wrapped GenerateContent.
func (r *RetryingClient) GenerateContent(ctx context.Context, req Request) (string, error) {
	return r.do(ctx, "generate_content", func() (string, error) {
		return r.Client.GenerateContent(ctx, req)
	})
}

// GenerateJSON retries the wrapped GenerateJSON.
func (r *RetryingClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	return r.do(ctx, "generate_json", func() (string, error) {
		return r.Client.GenerateJSON(ctx, req)
	})
}

func (r *RetryingClient) do(ctx context.Context, operation string, fn func() (string, error)) (string, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := fn()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == attempts {
			break
		}

		r.Logger.Warn("llm call failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return "", fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
