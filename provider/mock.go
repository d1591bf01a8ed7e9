package provider

import (
	"context"
	"sync"
	"time"
)

// MockClient is a test double for Client.
// It supports fixed responses, per-call delay, errors, and custom handlers.
type MockClient struct {
	mu          sync.Mutex
	name        string
	responses   []string
	responseIdx int
	err         error
	delay       time.Duration
	handler     func(ctx context.Context, prompt string) (string, error)

	// Calls tracks all prompts for assertions.
	Calls []string
}

// NewMockClient creates a mock that returns a fixed response.
func NewMockClient(name, response string) *MockClient {
	return &MockClient{name: name, responses: []string{response}}
}

// WithResponses configures sequential responses.
// Each call returns the next response, cycling after exhaustion.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.responses = responses
	return m
}

// WithError configures the mock to always return an error.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// WithDelay makes each call block for d (or until the context is done).
func (m *MockClient) WithDelay(d time.Duration) *MockClient {
	m.delay = d
	return m
}

// WithHandler installs a custom handler, overriding responses and errors.
func (m *MockClient) WithHandler(fn func(ctx context.Context, prompt string) (string, error)) *MockClient {
	m.handler = fn
	return m
}

// GetResponse implements Client.
func (m *MockClient) GetResponse(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	handler := m.handler
	err := m.err
	delay := m.delay
	var response string
	if len(m.responses) > 0 {
		response = m.responses[m.responseIdx%len(m.responses)]
		m.responseIdx++
	}
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", NewError(m.name, "get_response", ctx.Err(), false)
		case <-timer.C:
		}
	}

	if handler != nil {
		return handler(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

// Provider implements Client.
func (m *MockClient) Provider() string {
	return m.name
}

// Close implements Client.
func (m *MockClient) Close() error {
	return nil
}

// CallCount returns how many times GetResponse was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
