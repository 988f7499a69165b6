package learningpath

import (
	"strings"
	"testing"
)

func TestBuildSearchPrompt_CarriesDetailLevel(t *testing.T) {
	prompt := buildSearchPrompt(Request{Topic: "Thermodynamics", DetailLevel: DetailMains})
	if !strings.Contains(prompt, "Thermodynamics") {
		t.Fatalf("topic missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "mains") {
		t.Fatalf("detail level missing from prompt:\n%s", prompt)
	}
}

func TestBuildSkeletonPrompt_RequestsEmptyFields(t *testing.T) {
	prompt := buildSkeletonPrompt(Request{Topic: "Optics", DetailLevel: DetailAdvanced})
	if !strings.Contains(prompt, "Do NOT populate the empty fields yet") {
		t.Fatalf("skeleton prompt must ask for an empty scaffold:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"concept_name"`) {
		t.Fatalf("skeleton prompt must describe the concept shape:\n%s", prompt)
	}
}

func TestBuildTopicDetailsPrompt_EmptyKnowledgeBase(t *testing.T) {
	prompt := buildTopicDetailsPrompt("Optics", "Refraction", &KnowledgeBase{})
	if !strings.Contains(prompt, noContextMarker) {
		t.Fatalf("expected no-context marker:\n%s", prompt)
	}
}

func TestBuildConceptPrompt_RendersKnowledgeBaseInOrder(t *testing.T) {
	kb := &KnowledgeBase{}
	kb.Append("https://a.example", "first summary")
	kb.Append("https://b.example", "second summary")

	prompt := buildConceptPrompt("Refraction", "Snell's Law", kb)
	a := strings.Index(prompt, "https://a.example")
	b := strings.Index(prompt, "https://b.example")
	if a < 0 || b < 0 {
		t.Fatalf("both sources should appear in the prompt:\n%s", prompt)
	}
	if a > b {
		t.Fatal("sources must render in append order")
	}
}

func TestSkeletonChapter(t *testing.T) {
	s := Skeleton{"Waves": []Topic{{TopicName: "SHM"}}}
	chapter, topics, err := s.Chapter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chapter != "Waves" || len(topics) != 1 {
		t.Fatalf("unexpected chapter %q with %d topics", chapter, len(topics))
	}

	if _, _, err := (Skeleton{}).Chapter(); err == nil {
		t.Fatal("empty skeleton must be rejected")
	}
	two := Skeleton{"A": nil, "B": nil}
	if _, _, err := two.Chapter(); err == nil {
		t.Fatal("multi-chapter skeleton must be rejected")
	}
}
