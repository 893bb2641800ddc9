package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiClient struct {
	model llms.Model
}

// NewGemini initializes the Gemini client through langchaingo.
func NewGemini(ctx context.Context, cfg Config) (*GeminiClient, error) {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{model: llm}, nil
}

// NewGeminiWithModel wraps an existing langchaingo model.
func NewGeminiWithModel(model llms.Model) *GeminiClient {
	return &GeminiClient{model: model}
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := c.model.GenerateContent(ctx, msgs, llms.WithJSONMode(), llms.WithTemperature(0.1))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
