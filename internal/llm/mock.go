package llm

import (
	"context"
	"sync"

	"github.com/ent0n29/genie/internal/prompt"
)

// MockClient is a scripted completion backend for tests and local runs.
type MockClient struct {
	mu        sync.Mutex
	Response  string
	Err       error
	Responses []string // consumed in order when non-empty
	calls     [][]prompt.Message
}

func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

func (m *MockClient) Complete(_ context.Context, messages []prompt.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]prompt.Message, len(messages))
	copy(copied, messages)
	m.calls = append(m.calls, copied)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		out := m.Responses[0]
		m.Responses = m.Responses[1:]
		return out, nil
	}
	return m.Response, nil
}

// Calls returns every message sequence received so far.
func (m *MockClient) Calls() [][]prompt.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]prompt.Message, len(m.calls))
	copy(out, m.calls)
	return out
}
