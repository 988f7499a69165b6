package llm

import (
	"context"
	"encoding/json"
)

// Provider is the gateway abstraction for LLM interaction. Every pipeline
// step goes through a single synchronous Generate call.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its output.
	// When the request carries a Schema, the provider uses its native
	// structured-output mechanism and the returned Content is JSON that
	// has been validated against that schema. When Schema is nil the
	// Content is free text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the default model identifier this provider is
	// configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Pipeline steps are
	// single-turn, so this usually holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// Nil means free-text output.
	Schema *Schema

	// Model overrides the provider's configured model for this request.
	// Pipeline steps use different models (a search-capable model for
	// source discovery, a reasoning model for generation). Empty uses
	// the provider default.
	Model string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Zero is deterministic.
	Temperature float64
}

// Message is a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema declares the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI-compatible APIs). Kebab-case, e.g. "path-skeleton".
	Name string

	// Description tells the LLM what this schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. Validated JSON when the request
	// carried a Schema, otherwise raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as a plain string with surrounding
// JSON quoting removed if present. Free-text steps use this.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}
