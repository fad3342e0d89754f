package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"cjk-assistant/internal/domain"
	"cjk-assistant/internal/domain/ports/adapter"
)

var _ adapter.GenerationClient = (*OpenAIClient)(nil)

// OpenAIClient implements the generation port against the Chat Completions
// API, as the fallback provider when no Gemini key is configured.
type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (o *OpenAIClient) Complete(ctx context.Context, req adapter.CompletionRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.Preamble != "" {
		msgs = append(msgs, openai.SystemMessage(req.Preamble))
	}
	for _, m := range req.History {
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrGenerationUnavailable, err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", fmt.Errorf("%w: openai: no choice content", domain.ErrGenerationUnavailable)
}

// CountTokens counts locally with tiktoken; falls back to the cl100k_base
// encoding for models the library does not know.
func (o *OpenAIClient) CountTokens(_ context.Context, text string) (int, error) {
	enc, err := tiktoken.EncodingForModel(o.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(text, nil, nil)), nil
}
