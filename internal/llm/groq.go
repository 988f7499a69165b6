package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// groqModels maps friendly names to Groq model IDs.
var groqModels = map[string]string{
	"compound": "groq/compound",
	"oss-120b": "openai/gpt-oss-120b",
	"llama3":   "llama3-8b-8192",
}

// GroqProvider implements Provider against the Groq API, which is
// OpenAI-compatible, so the OpenAI SDK is reused with a different base URL.
type GroqProvider struct {
	client *openai.Client
	model  string
}

// NewGroqProvider creates a new Groq provider. The default model is the
// reasoning model; per-request overrides select the search model for
// discovery and summarization steps.
func NewGroqProvider(cfg GroqConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrConfiguration{Reason: "groq API key is required"}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = defaultGroqBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &GroqProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  resolveModel(cfg.ReasoningModel, groqModels),
	}, nil
}

func (p *GroqProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = resolveModel(req.Model, groqModels)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    buildGroqMessages(req),
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxTokens
	}

	// Groq supports json_object response format; the full json_schema
	// format is not available on all models, so conformance is enforced
	// by ValidateJSON below.
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapGroqError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("no choices in Groq response"),
		}
	}

	content := json.RawMessage(resp.Choices[0].Message.Content)

	if req.Schema != nil {
		if err := ValidateJSON(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapGroqStopReason(resp.Choices[0].FinishReason),
	}, nil
}

func (p *GroqProvider) ModelID() string {
	return p.model
}

func buildGroqMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return messages
}

func mapGroqStopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return "end"
	case openai.FinishReasonLength:
		return "max_tokens"
	default:
		return "end"
	}
}

func mapGroqError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names pass through, allowing direct model IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
