package attune

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zoobz-io/zyn"
)

// LanguageModel is the sole inference dependency of the core. One method,
// one failure kind: any transport, auth, or empty-response condition is
// reported as an error wrapping ErrModel.
type LanguageModel interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error)
}

// ErrModel is the single service-error kind for language model failures.
// Agents recover from it locally; it never reaches workflow callers.
var ErrModel = errors.New("language model service error")

// Provider matches zyn.Provider so existing provider implementations
// plug in directly.
type Provider interface {
	Call(ctx context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error)
	Name() string
}

// ZynModel adapts a zyn-compatible Provider to the LanguageModel port.
// It lets any provider written against zyn's Call signature serve as the
// inference engine without the core depending on synapse-level prompting.
type ZynModel struct {
	provider    Provider
	temperature float32
}

// NewZynModel wraps a zyn-compatible provider.
func NewZynModel(p Provider) *ZynModel {
	return &ZynModel{provider: p, temperature: DefaultTemperature}
}

// WithTemperature sets the sampling temperature for all calls.
func (m *ZynModel) WithTemperature(temp float32) *ZynModel {
	m.temperature = temp
	return m
}

// Generate implements LanguageModel.
//
// maxTokens is accepted for interface compatibility; providers behind the
// zyn Call signature enforce their own output budgets.
func (m *ZynModel) Generate(ctx context.Context, systemPrompt, userMessage string, _ int) (string, error) {
	resp, err := m.provider.Call(ctx, []zyn.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}, m.temperature)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrModel, m.provider.Name(), err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: %s returned empty response", ErrModel, m.provider.Name())
	}
	return resp.Content, nil
}

var _ LanguageModel = (*ZynModel)(nil)
