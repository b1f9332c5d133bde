package analyzer

import (
	"context"
	"fmt"
	"time"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider        string
	Model           string
	Timeout         time.Duration
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
}

// NewProvider builds the provider named in s.Provider.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case "anthropic", "":
		return NewAnthropic(s.AnthropicAPIKey, s.Model, s.Timeout)
	case "openai", "openrouter":
		return NewOpenAI(s.OpenAIAPIKey, s.OpenAIBaseURL, s.Model, s.Timeout)
	case "gemini":
		return NewGemini(ctx, s.GeminiAPIKey, s.Model, s.Timeout)
	case "placeholder", "none":
		return Placeholder{}, nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider %q", s.Provider)
	}
}
