package llm

import "context"

// MockLLM is a fixed-response stand-in for OpenAILLM in tests.
type MockLLM struct {
	Response string
	Err      error
	// Responses, when set, is consumed one call at a time (FIFO) instead
	// of always returning Response — useful for multi-step sequences like
	// name extraction followed by per-character synthesis.
	Responses []string
	calls     int
}

func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return m.next()
}

func (m *MockLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return m.next()
}

func (m *MockLLM) next() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		i := m.calls
		if i >= len(m.Responses) {
			i = len(m.Responses) - 1
		}
		m.calls++
		return m.Responses[i], nil
	}
	return m.Response, nil
}
