package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient answers questions using the Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// newGeminiClient creates a Gemini chat client.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiClient(ctx context.Context, apiKey, model string) (*geminiClient, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiChatModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

func (c *geminiClient) Provider() Provider {
	return ProviderGemini
}

// Generate produces a grounded answer for the request.
func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if c == nil {
		return "", errors.New("gemini client is nil")
	}

	contents := make([]*genai.Content, 0, 2*MaxHistoryTurns+1)
	for _, turn := range capHistory(req.History) {
		contents = append(contents,
			genai.NewContentFromText(turn.Question, genai.RoleUser),
			genai.NewContentFromText(turn.Answer, genai.RoleModel),
		)
	}
	contents = append(contents, genai.NewContentFromText(buildUserPrompt(req), genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   1024,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "answer generation API call failed",
			"provider", "gemini",
			"model", c.model,
			"input_length", len(req.Question),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}

	if result.UsageMetadata != nil {
		slog.DebugContext(ctx, "answer generation completed",
			"provider", "gemini",
			"model", c.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"total_tokens", result.UsageMetadata.TotalTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return text, nil
}

// Close releases the underlying client.
// The Gemini SDK holds no persistent connections, so this is a no-op.
func (c *geminiClient) Close() error {
	return nil
}
