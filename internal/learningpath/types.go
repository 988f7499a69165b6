package learningpath

import (
	"fmt"
	"strings"
)

// DetailLevel selects the exam tier the generated path targets.
type DetailLevel string

const (
	DetailMains    DetailLevel = "mains"
	DetailAdvanced DetailLevel = "advanced"
)

// Request is the input for one learning path generation job.
type Request struct {
	Topic       string      `json:"topic" validate:"required"`
	DetailLevel DetailLevel `json:"detail_level" validate:"omitempty,oneof=mains advanced"`
}

// Normalize applies the default detail level.
func (r *Request) Normalize() {
	if r.DetailLevel == "" {
		r.DetailLevel = DetailAdvanced
	}
}

// Skeleton is the structural scaffold generated once per job: a single
// chapter key mapped to its ordered topics. The shape is fixed by the
// skeleton generation step; later steps only fill the empty leaf fields
// in place, per node.
type Skeleton map[string][]Topic

// Chapter returns the skeleton's single chapter name and its topics.
func (s Skeleton) Chapter() (string, []Topic, error) {
	if len(s) != 1 {
		return "", nil, fmt.Errorf("skeleton must have exactly one chapter, got %d", len(s))
	}
	for name, topics := range s {
		return name, topics, nil
	}
	return "", nil, fmt.Errorf("skeleton is empty")
}

// Topic is one node of the learning path tree.
type Topic struct {
	TopicName          string    `json:"topic_name"`
	Prerequisites      []string  `json:"prerequisites"`
	ProblemSolvingTips []string  `json:"problem_solving_tips"`
	CommonPitfalls     []string  `json:"common_pitfalls"`
	Concepts           []Concept `json:"concepts"`
}

// Concept is a leaf topic with reading material and practice questions.
type Concept struct {
	ConceptName     string `json:"concept_name"`
	ReadingMaterial string `json:"reading_material"`
	MCQs            []MCQ  `json:"mcqs"`
}

// MCQ is a multiple-choice question attached to a concept.
type MCQ struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	Explanation        string   `json:"explanation"`
}

// TopicDetails is the patch produced by the per-topic elaboration step.
// The driver merges it into the topic node it owns.
type TopicDetails struct {
	Prerequisites      []string `json:"prerequisites"`
	ProblemSolvingTips []string `json:"problem_solving_tips"`
	CommonPitfalls     []string `json:"common_pitfalls"`
}

// ConceptContent is the patch produced by the per-concept elaboration step.
type ConceptContent struct {
	ReadingMaterial string `json:"reading_material"`
	MCQs            []MCQ  `json:"mcqs"`
}

// Result is the job's terminal output: the populated chapter.
type Result struct {
	Topic   string  `json:"topic"`
	Content []Topic `json:"content"`
}

// KnowledgeBase is the cumulative text context assembled from source
// summaries. Append-only, in source order; read-only once elaboration
// begins.
type KnowledgeBase struct {
	notes []sourceNote
}

type sourceNote struct {
	url     string
	summary string
}

// Append records one (url, summary) pair in source order.
func (kb *KnowledgeBase) Append(url, summary string) {
	kb.notes = append(kb.notes, sourceNote{url: url, summary: summary})
}

// Empty reports whether no sources contributed anything.
func (kb *KnowledgeBase) Empty() bool {
	return len(kb.notes) == 0
}

// Len returns the number of recorded sources.
func (kb *KnowledgeBase) Len() int {
	return len(kb.notes)
}

// Render formats the knowledge base as prompt context.
func (kb *KnowledgeBase) Render() string {
	var b strings.Builder
	for _, n := range kb.notes {
		fmt.Fprintf(&b, "--- Source from %s ---\n%s\n\n", n.url, n.summary)
	}
	return b.String()
}
