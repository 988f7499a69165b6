// Package ask exposes a plain prompt passthrough task: one free-text
// completion with no orchestration around it.
package ask

import (
	"context"

	"github.com/prepforge/prepforge/internal/llm"
)

// Payload is the input for one ask job.
type Payload struct {
	Prompt string `json:"prompt" validate:"required"`
	Model  string `json:"model"`
}

// Run sends the prompt and returns the completion text.
func Run(ctx context.Context, provider llm.Provider, payload Payload) (string, error) {
	if payload.Prompt == "" {
		return "", &llm.ErrConfiguration{Reason: "payload must include a prompt"}
	}

	ctx = llm.WithPurpose(ctx, "ask")

	resp, err := provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: payload.Prompt},
		},
		Model: payload.Model,
	})
	if err != nil {
		return "", err
	}

	return resp.Text(), nil
}
