package llm

import (
	"os"
	"time"
)

// Config holds all LLM gateway configuration. Each job execution receives
// an immutable snapshot of this value; there is no shared mutable client
// state.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "groq", "gemini", "anthropic", "mock"
	Provider string

	Groq      GroqConfig
	Gemini    GeminiConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig
}

// GroqConfig holds Groq-specific configuration. Groq serves an
// OpenAI-compatible API.
type GroqConfig struct {
	APIKey string
	// SearchModel handles source discovery and page summarization.
	// Default: "compound".
	SearchModel string
	// ReasoningModel handles structured generation. Default: "oss-120b".
	ReasoningModel string
	// BaseURL overrides the Groq API endpoint. Mostly for tests.
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// RetryConfig configures transport-level retry behavior.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "groq",
		Groq: GroqConfig{
			SearchModel:    "compound",
			ReasoningModel: "oss-120b",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("PREPFORGE_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("GROQ_API_KEY"); k != "" {
		cfg.Groq.APIKey = k
	}
	if m := os.Getenv("PREPFORGE_GROQ_SEARCH_MODEL"); m != "" {
		cfg.Groq.SearchModel = m
	}
	if m := os.Getenv("PREPFORGE_GROQ_REASONING_MODEL"); m != "" {
		cfg.Groq.ReasoningModel = m
	}
	if u := os.Getenv("PREPFORGE_GROQ_BASE_URL"); u != "" {
		cfg.Groq.BaseURL = u
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("PREPFORGE_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("PREPFORGE_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	return cfg
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "groq":
		if c.Groq.APIKey == "" {
			return &ErrConfiguration{Reason: "GROQ_API_KEY is required for the groq provider"}
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return &ErrConfiguration{Reason: "GEMINI_API_KEY is required for the gemini provider"}
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return &ErrConfiguration{Reason: "ANTHROPIC_API_KEY is required for the anthropic provider"}
		}
	case "mock":
		// No API key needed.
	default:
		return &ErrConfiguration{Reason: "unknown LLM provider: " + c.Provider}
	}
	return nil
}
