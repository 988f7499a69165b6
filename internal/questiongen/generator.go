package questiongen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepforge/prepforge/internal/llm"
)

// subjectIDs maps extracted subject names to external database
// identifiers. An unmapped subject leaves the identifier absent.
var subjectIDs = map[string]string{
	"Physics":     "68c97d193c5fb93d44667a6c",
	"Chemistry":   "68cbc78bcd2937d0d4dda433",
	"Mathematics": "68cbc7abcd2937d0d4dda434",
}

// Config holds the generator's knobs.
type Config struct {
	// Model used for both steps.
	Model string

	// MCQTemperature for the content step; some creative variation helps.
	MCQTemperature float64

	// MetadataTemperature for the extraction step; near-deterministic.
	MetadataTemperature float64

	// MaxTokens caps each response. Zero means provider default.
	MaxTokens int
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		Model:               "oss-120b",
		MCQTemperature:      0.5,
		MetadataTemperature: 0.1,
	}
}

// Generator runs the two-step question generation workflow: MCQ content,
// then metadata extraction, then a pure transform into the target
// document shape. Unlike the learning path pipeline there is no
// degrade-and-continue policy: any validation failure fails the attempt
// and the job envelope decides whether to retry.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

// Generate produces one formatted question for the query.
func (g *Generator) Generate(ctx context.Context, payload Payload) (*Output, error) {
	if payload.Query == "" {
		return nil, &llm.ErrConfiguration{Reason: "payload must include a query"}
	}

	mcq, err := g.generateMCQ(ctx, payload.Query)
	if err != nil {
		return nil, fmt.Errorf("mcq generation: %w", err)
	}

	meta, err := g.extractMetadata(ctx, payload.Query)
	if err != nil {
		return nil, fmt.Errorf("metadata extraction: %w", err)
	}

	return assemble(mcq, meta), nil
}

func (g *Generator) generateMCQ(ctx context.Context, query string) (*mcqOutput, error) {
	ctx = llm.WithPurpose(ctx, "mcq-generation")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: mcqSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: query},
		},
		Schema:      MCQSchema,
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.MCQTemperature,
	})
	if err != nil {
		return nil, err
	}

	var out mcqOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrParseFailure{Content: resp.Content, Err: err}
	}
	return &out, nil
}

func (g *Generator) extractMetadata(ctx context.Context, query string) (*metadataOutput, error) {
	ctx = llm.WithPurpose(ctx, "metadata-extraction")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: metadataSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: query},
		},
		Schema:      MetadataSchema,
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.MetadataTemperature,
	})
	if err != nil {
		return nil, err
	}

	var out metadataOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrParseFailure{Content: resp.Content, Err: err}
	}
	return &out, nil
}

// assemble is the pure transform from validated step outputs to the
// target document: the option mapping becomes an ordered list and the
// subject name maps through the identifier table.
func assemble(mcq *mcqOutput, meta *metadataOutput) *Output {
	options := []Option{
		{Text: mcq.Options.A, IsCorrect: mcq.CorrectAnswer == "A"},
		{Text: mcq.Options.B, IsCorrect: mcq.CorrectAnswer == "B"},
		{Text: mcq.Options.C, IsCorrect: mcq.CorrectAnswer == "C"},
		{Text: mcq.Options.D, IsCorrect: mcq.CorrectAnswer == "D"},
	}

	doc := QuestionDocument{
		Text:       mcq.Question,
		Options:    options,
		Difficulty: meta.Difficulty,
		Subject:    subjectIDs[meta.Subject],
		Tags:       meta.Tags,
	}

	return &Output{
		QuestionData: doc,
		Explanation:  mcq.Explanation,
	}
}
