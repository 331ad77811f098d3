package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetryingClient_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	mock := &MockClient{
		GenerateJSONFunc: func(_ context.Context, _ Request) (string, error) {
			attempts++
			if attempts < 3 {
				return "", &APICallError{Provider: ProviderGemini, Model: "m", Cause: errors.New("503")}
			}
			return `{"ok": true}`, nil
		},
	}

	client := NewRetryingClient(mock, quietLogger())
	client.BaseDelay = time.Millisecond

	out, err := client.GenerateJSON(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
	assert.Equal(t, 3, attempts)
	assert.Len(t, mock.Calls(), 3)
}

func TestRetryingClient_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := &MockClient{
		GenerateContentFunc: func(_ context.Context, _ Request) (string, error) {
			return "", &EmptyResponseError{Reason: "no candidates in response"}
		},
	}

	client := NewRetryingClient(mock, quietLogger())
	client.BaseDelay = time.Millisecond

	_, err := client.GenerateContent(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Len(t, mock.Calls(), DefaultMaxAttempts)

	var emptyErr *EmptyResponseError
	assert.True(t, errors.As(err, &emptyErr))
}

func TestRetryingClient_DoesNotRetryPermanentErrors(t *testing.T) {
	mock := &MockClient{
		GenerateJSONFunc: func(_ context.Context, _ Request) (string, error) {
			return "", errors.New("no model configured for tier lite")
		},
	}

	client := NewRetryingClient(mock, quietLogger())
	_, err := client.GenerateJSON(context.Background(), Request{})
	require.Error(t, err)
	assert.Len(t, mock.Calls(), 1)
}

func TestRetryingClient_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &MockClient{
		GenerateJSONFunc: func(_ context.Context, _ Request) (string, error) {
			cancel()
			return "", &APICallError{Provider: ProviderGemini, Cause: errors.New("timeout")}
		},
	}

	client := NewRetryingClient(mock, quietLogger())
	client.BaseDelay = time.Hour

	_, err := client.GenerateJSON(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, mock.Calls(), 1)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(&APICallError{Cause: context.Canceled}))
	assert.True(t, IsRetryable(&APICallError{Cause: errors.New("boom")}))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.False(t, IsRetryable(errors.New("bad request")))
}
