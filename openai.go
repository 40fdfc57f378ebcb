package attune

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// DefaultOpenAIModel is the model used when none is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIModel implements LanguageModel against the OpenAI Responses API.
// It makes exactly one API call per Generate; agents own all degradation,
// so there is no retry loop here.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a model adapter authenticated with the given key.
func NewOpenAIModel(apiKey string) *OpenAIModel {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIModel{
		client: &client,
		model:  DefaultOpenAIModel,
	}
}

// WithModel sets the model identifier used for all calls.
func (m *OpenAIModel) WithModel(model string) *OpenAIModel {
	m.model = model
	return m
}

// Generate implements LanguageModel. The system prompt travels as
// Instructions and the user message as a single input item.
func (m *OpenAIModel) Generate(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	params := responses.ResponseNewParams{
		Model:           m.model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Instructions:    openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(userMessage, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := m.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", ErrModel, err)
	}
	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: openai returned empty response", ErrModel)
	}
	return text, nil
}

var _ LanguageModel = (*OpenAIModel)(nil)
