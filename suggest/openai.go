package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You write git commit messages. Given a unified diff, " +
	"reply with a single imperative subject line under 72 characters. " +
	"No quotes, no trailing period, no body."

// OpenAISuggester asks an OpenAI chat model for a commit subject line.
type OpenAISuggester struct {
	client openai.Client
	model  openai.ChatModel
}

// OpenAIOption configures an OpenAISuggester.
type OpenAIOption func(*OpenAISuggester)

// WithModel overrides the default chat model.
func WithModel(model openai.ChatModel) OpenAIOption {
	return func(s *OpenAISuggester) {
		s.model = model
	}
}

// NewOpenAI creates a suggester backed by the OpenAI API.
func NewOpenAI(apiKey string, options ...OpenAIOption) (*OpenAISuggester, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	s := &OpenAISuggester{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Suggest implements Suggester.
func (s *OpenAISuggester) Suggest(ctx context.Context, diffText string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(diffText),
		},
		MaxTokens:   openai.Int(80),
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
