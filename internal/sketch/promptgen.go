// Package sketch turns a generated question into a one-sentence scene
// description suitable as an image-generation prompt. The rendering of
// the sketch itself happens in a separate system; this service only
// produces the description.
package sketch

import (
	"context"
	"fmt"
	"strings"

	"github.com/prepforge/prepforge/internal/llm"
)

const promptGenSystem = `You are an AI assistant that specializes in summarizing physics problems for visual representation. You will be given the text of a multiple-choice question and its detailed explanation.

Your task is to read the problem and generate a single, concise, one-sentence description of the physical setup. This description will be used as a prompt for an image generation model.

CRITICAL INSTRUCTIONS:
1. Focus ONLY on the initial physical arrangement of objects. Describe the scene before any action happens.
2. DO NOT describe the question being asked or the solution.
3. DO NOT include specific values, numbers, or complex variables. Keep it generic (e.g., "a block", "an angle theta").
4. Your output MUST BE ONLY the descriptive sentence and nothing else. Do not add any introductory phrases like "Here is the description:".

EXAMPLES:
- Input: A question about a block of mass 5kg sliding down a 30-degree ramp.
  Output: A block on an inclined plane.
- Input: A question about a pendulum of length L swinging.
  Output: A simple pendulum hanging from a pivot point.
- Input: A question about two masses connected by a pulley on a table.
  Output: Two masses connected by a string over a pulley, with one mass on a table.`

// Payload is the input for one sketch prompt generation job.
type Payload struct {
	QuestionText    string `json:"question_text" validate:"required"`
	ExplanationText string `json:"explanation_text" validate:"required"`
}

// Result is the job output.
type Result struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Config holds the generator's knobs.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns the generator defaults. Low temperature: this is
// factual summarization, not creative writing.
func DefaultConfig() Config {
	return Config{
		Model:       "oss-120b",
		Temperature: 0.1,
	}
}

// PromptGenerator produces sketch descriptions with a single free-text
// LLM call.
type PromptGenerator struct {
	provider llm.Provider
	cfg      Config
}

// New creates a PromptGenerator.
func New(provider llm.Provider, cfg Config) *PromptGenerator {
	return &PromptGenerator{provider: provider, cfg: cfg}
}

// Generate produces the one-sentence scene description.
func (g *PromptGenerator) Generate(ctx context.Context, payload Payload) (*Result, error) {
	if payload.QuestionText == "" || payload.ExplanationText == "" {
		return nil, &llm.ErrConfiguration{Reason: "payload must include question_text and explanation_text"}
	}

	ctx = llm.WithPurpose(ctx, "sketch-prompt")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: promptGenSystem,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildContext(payload)},
		},
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("sketch prompt generation: %w", err)
	}

	return &Result{
		Status:      "completed",
		Description: strings.TrimSpace(resp.Text()),
	}, nil
}

func buildContext(payload Payload) string {
	return fmt.Sprintf("QUESTION: %s\n\nEXPLANATION: %s",
		payload.QuestionText, payload.ExplanationText)
}
