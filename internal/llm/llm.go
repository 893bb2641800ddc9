// Package llm adapts chat-completion providers to a single JSON-mode call.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any choice.
var ErrEmptyResponse = errors.New("llm: empty response")

// Completer sends a system instruction and a user message and returns the
// raw content of the first choice. Implementations ask the provider for a
// JSON object and do not retry on their own.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL points the OpenAI client at a compatible gateway.
	BaseURL string
}

// New builds the Completer named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, errors.New("llm: unknown provider " + cfg.Provider)
	}
}
