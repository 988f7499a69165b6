package learningpath

// Config holds the pipeline's generation knobs.
type Config struct {
	// SearchModel handles source discovery and page summarization.
	SearchModel string

	// ReasoningModel handles skeleton generation and elaboration.
	ReasoningModel string

	// Temperature for generation requests. Zero is deterministic.
	Temperature float64

	// MaxTokens caps each response. Zero means provider default.
	MaxTokens int
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		SearchModel:    "compound",
		ReasoningModel: "oss-120b",
	}
}
