package llm

import (
	"context"
	"sync"
)

// MockClient is a test double that replays queued responses in order.
type MockClient struct {
	mu        sync.Mutex
	responses []CompletionResponse
	errors    []error
	calls     []CompletionRequest
	model     string
}

// NewMockClient creates a mock with no queued responses. Complete returns an
// empty response once the queue is drained.
func NewMockClient() *MockClient {
	return &MockClient{model: "mock-model"}
}

func (m *MockClient) QueueResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, CompletionResponse{Content: content})
	m.errors = append(m.errors, nil)
}

func (m *MockClient) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, CompletionResponse{})
	m.errors = append(m.errors, err)
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) ModelName() string { return m.model }

func (m *MockClient) Complete(_ context.Context, in CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, in)
	if len(m.responses) == 0 {
		return CompletionResponse{}, nil
	}
	resp := m.responses[0]
	err := m.errors[0]
	m.responses = m.responses[1:]
	m.errors = m.errors[1:]
	if err != nil {
		return CompletionResponse{}, err
	}
	return resp, nil
}
