package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiClient answers questions through an OpenAI-compatible API.
// Groq is the only such provider wired up today.
type openaiClient struct {
	client   openai.Client
	provider Provider
	model    string
}

// newOpenAIClient creates a chat client for an OpenAI-compatible
// provider. Returns nil if apiKey is empty (provider disabled).
func newOpenAIClient(provider Provider, apiKey, model string) (*openaiClient, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled when no API key
	}

	baseURL, ok := ProviderEndpoint[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s has no OpenAI-compatible endpoint", provider)
	}

	if model == "" {
		model = DefaultGroqChatModel
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiClient{client: client, provider: provider, model: model}, nil
}

func (c *openaiClient) Provider() Provider {
	return c.provider
}

// Generate produces a grounded answer for the request.
func (c *openaiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c == nil {
		return "", errors.New("openai client is nil")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2*MaxHistoryTurns+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range capHistory(req.History) {
		messages = append(messages,
			openai.UserMessage(turn.Question),
			openai.AssistantMessage(turn.Answer),
		)
	}
	messages = append(messages, openai.UserMessage(buildUserPrompt(req)))

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(1024),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", c.provider,
			"model", c.model,
			"input_length", len(req.Question),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response from model")
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", c.provider,
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
			"duration_ms", duration.Milliseconds())
	}

	return text, nil
}

// Close releases the underlying client. The SDK uses plain HTTP
// requests, so this is a no-op.
func (c *openaiClient) Close() error {
	return nil
}
