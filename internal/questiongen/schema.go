package questiongen

import "github.com/prepforge/prepforge/internal/llm"

// MCQSchema validates the MCQ generation step. Four fixed option keys,
// a pattern-constrained answer key, nothing optional.
var MCQSchema = &llm.Schema{
	Name:        "exam-mcq",
	Description: "A single multiple-choice question with four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The full text of the question",
			},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"A": map[string]any{"type": "string"},
					"B": map[string]any{"type": "string"},
					"C": map[string]any{"type": "string"},
					"D": map[string]any{"type": "string"},
				},
				"required":             []any{"A", "B", "C", "D"},
				"additionalProperties": false,
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"pattern":     "^[A-D]$",
				"description": "The key of the correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Step-by-step derivation of the correct answer",
			},
		},
		"required":             []any{"question", "options", "correct_answer", "explanation"},
		"additionalProperties": false,
	},
}

// MetadataSchema validates the metadata extraction step. The subject is a
// free string: an unmapped subject is handled by the transform (the
// identifier is left absent), not rejected here.
var MetadataSchema = &llm.Schema{
	Name:        "question-metadata",
	Description: "Subject, difficulty and search tags for a question query",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject": map[string]any{
				"type":        "string",
				"description": "The identified subject, e.g. Physics",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"easy", "medium", "hard"},
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"subject", "difficulty", "tags"},
		"additionalProperties": false,
	},
}
