package attune

import (
	"context"
	"sync"
)

// modelCall records one Generate invocation for assertions.
type modelCall struct {
	systemPrompt string
	userMessage  string
	maxTokens    int
}

// mockModel is an in-memory LanguageModel for testing. Set response/err for
// a fixed result, or generate for scripted per-call behavior.
type mockModel struct {
	mu       sync.Mutex
	response string
	err      error
	generate func(systemPrompt, userMessage string, maxTokens int) (string, error)
	calls    []modelCall
}

func (m *mockModel) Generate(_ context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, modelCall{systemPrompt: systemPrompt, userMessage: userMessage, maxTokens: maxTokens})
	m.mu.Unlock()

	if m.generate != nil {
		return m.generate(systemPrompt, userMessage, maxTokens)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ LanguageModel = (*mockModel)(nil)
