package learningpath

import (
	"fmt"
	"strings"
)

// noContextMarker replaces the knowledge base in elaboration prompts when
// no source contributed anything.
const noContextMarker = "No web context available. Rely on your internal knowledge."

// buildSearchPrompt asks a search-capable model for authoritative URLs.
func buildSearchPrompt(req Request) string {
	return fmt.Sprintf(
		`Perform a web search to find 3-4 highly authoritative URLs for learning about %q `+
			`for the Indian IIT-JEE %s syllabus. Focus on academic or reputable educational sites. `+
			`Return ONLY a single JSON object with a key "urls" containing an array of the found URLs.`,
		req.Topic, req.DetailLevel)
}

// buildSkeletonPrompt asks for the empty structural scaffold. Source
// content is deliberately absent: the shape does not depend on it.
func buildSkeletonPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Act as an expert academic curriculum designer for IIT-JEE coaching in India.\n")
	fmt.Fprintf(&b, "For the topic %q targeting the %q level, create a hierarchical learning path structure.\n",
		req.Topic, req.DetailLevel)
	b.WriteString(`Generate a pure JSON object with a single root key representing the chapter name. This key should contain a list of "topics".
Each "topic" object must have: "topic_name" (string), "prerequisites" (empty list), "problem_solving_tips" (empty list), "common_pitfalls" (empty list), and "concepts" (a list of "concept" objects).
Each "concept" object must have: "concept_name" (string), "reading_material" (empty string), and "mcqs" (empty list).
`)
	fmt.Fprintf(&b, "Break down %q into logical topics and concepts essential for the JEE syllabus. Do NOT populate the empty fields yet.\n", req.Topic)

	return b.String()
}

// buildSummaryPrompt asks for a summary of one source page.
func buildSummaryPrompt(url string) string {
	return fmt.Sprintf(
		"Visit and provide a detailed summary of the key academic points from this page, "+
			"focusing on formulas, definitions, and core principles relevant to IIT-JEE "+
			"Physics/Chemistry/Maths: %s", url)
}

// buildTopicDetailsPrompt asks for one topic's prerequisites, tips and
// pitfalls, grounded on the knowledge base when one exists.
func buildTopicDetailsPrompt(chapter, topicName string, kb *KnowledgeBase) string {
	context := noContextMarker
	if !kb.Empty() {
		context = kb.Render()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the context below, generate details for the IIT-JEE topic %q within the chapter %q.\n", topicName, chapter)
	fmt.Fprintf(&b, "CONTEXT: %s\n", context)
	b.WriteString("---\n")
	b.WriteString(`Generate a single JSON object with keys: "prerequisites", "problem_solving_tips", "common_pitfalls". Each key holds an array of strings.` + "\n")

	return b.String()
}

// buildConceptPrompt asks for one concept's reading material and MCQs.
func buildConceptPrompt(topicName, conceptName string, kb *KnowledgeBase) string {
	context := noContextMarker
	if !kb.Empty() {
		context = kb.Render()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Act as a master teacher for IIT-JEE. Use the context below to generate content for the concept %q under the topic %q.\n", conceptName, topicName)
	fmt.Fprintf(&b, "CONTEXT: %s\n", context)
	b.WriteString("---\n")
	b.WriteString(`Generate a single JSON object with two keys: "reading_material" (string) and "mcqs" (an array of MCQ objects).
Each MCQ object must have: "question", "options" (array), "correct_answer_index" (integer), and "explanation".
`)

	return b.String()
}
