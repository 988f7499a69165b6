package learningpath

import "github.com/prepforge/prepforge/internal/llm"

// SourceListSchema validates the source discovery step's output.
var SourceListSchema = &llm.Schema{
	Name:        "source-list",
	Description: "Authoritative URLs for learning a topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"urls": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Authoritative URLs, academic or reputable educational sites",
			},
		},
		"required":             []any{"urls"},
		"additionalProperties": false,
	},
}

var mcqDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"correct_answer_index": map[string]any{"type": "integer"},
		"explanation":          map[string]any{"type": "string"},
	},
	"required": []any{"question", "options", "correct_answer_index", "explanation"},
}

var conceptDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"concept_name":     map[string]any{"type": "string"},
		"reading_material": map[string]any{"type": "string"},
		"mcqs": map[string]any{
			"type":  "array",
			"items": mcqDefinition,
		},
	},
	"required": []any{"concept_name"},
}

var topicDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topic_name": map[string]any{"type": "string"},
		"prerequisites": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"problem_solving_tips": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"common_pitfalls": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"concepts": map[string]any{
			"type":  "array",
			"items": conceptDefinition,
		},
	},
	"required": []any{"topic_name", "concepts"},
}

// SkeletonSchema validates the skeleton generation step's output: a single
// chapter key holding the topic list. The chapter name is model-chosen, so
// the root is constrained by property count rather than a fixed key.
var SkeletonSchema = &llm.Schema{
	Name:        "path-skeleton",
	Description: "Hierarchical learning path scaffold with empty leaf fields",
	Definition: map[string]any{
		"type":          "object",
		"minProperties": 1,
		"maxProperties": 1,
		"additionalProperties": map[string]any{
			"type":  "array",
			"items": topicDefinition,
		},
	},
}

// TopicDetailsSchema validates the per-topic elaboration output. The three
// detail keys are typed when present; a missing key merges as empty.
var TopicDetailsSchema = &llm.Schema{
	Name:        "topic-details",
	Description: "Prerequisites, tips and pitfalls for one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prerequisites": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"problem_solving_tips": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"common_pitfalls": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	},
}

// ConceptContentSchema validates the per-concept elaboration output. Both
// keys are required; anything less invalidates the whole value.
var ConceptContentSchema = &llm.Schema{
	Name:        "concept-content",
	Description: "Reading material and MCQs for one concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reading_material": map[string]any{"type": "string"},
			"mcqs": map[string]any{
				"type":  "array",
				"items": mcqDefinition,
			},
		},
		"required": []any{"reading_material", "mcqs"},
	},
}
