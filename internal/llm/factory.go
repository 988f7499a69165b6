package llm

import (
	"context"

	"github.com/sirupsen/logrus"
)

// NewProvider creates a Provider from configuration, wrapped with retry
// and logging middleware.
func NewProvider(ctx context.Context, cfg Config, log *logrus.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "groq":
		base, err = NewGroqProvider(cfg.Groq)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, &ErrConfiguration{Reason: "unknown LLM provider: " + cfg.Provider}
	}
	if err != nil {
		return nil, err
	}

	// Middleware order: caller → retry → logging → base.
	logged := WithLogging(base, log)
	return WithRetry(logged, cfg.Retry), nil
}
