package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests in this and dependent packages.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, req Request) (string, error)
	GenerateJSONFunc    func(ctx context.Context, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

// GenerateContent records req and delegates to GenerateContentFunc.
func (m *MockClient) GenerateContent(ctx context.Context, req Request) (string, error) {
	m.record(req)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, req)
	}
	return "", nil
}

// GenerateJSON records req and delegates to GenerateJSONFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	m.record(req)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, req)
	}
	return "{}", nil
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(_ ModelTier) string {
	return "mock-model"
}

// Close does nothing.
func (m *MockClient) Close() error {
	return nil
}

// Calls returns the requests seen so far.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) record(req Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
}
