package learningpath

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prepforge/prepforge/internal/llm"
)

// Pipeline drives the fixed step sequence that produces one learning path:
//
//  1. source discovery        (non-fatal: degrades to no sources)
//  2. skeleton generation     (fatal: nothing downstream works without it)
//  3. knowledge acquisition   (per-URL failures isolated)
//  4. topic elaboration       (per-topic and per-concept failures isolated)
//  5. finalize
//
// Failure isolation is graded by how essential a step's output is to
// everything downstream: degraded content richness is acceptable,
// structural failure is not. Steps run strictly sequentially; the
// knowledge base is cumulative context for later calls.
type Pipeline struct {
	provider llm.Provider
	cfg      Config
	log      *logrus.Logger
}

// New creates a Pipeline. The provider and config are immutable for the
// lifetime of the pipeline; each Run owns all of its intermediate state.
func New(provider llm.Provider, cfg Config, log *logrus.Logger) *Pipeline {
	return &Pipeline{provider: provider, cfg: cfg, log: log}
}

// Run executes the pipeline for one request. The returned error is
// non-nil only for fatal failures: a missing topic, or a skeleton
// generation failure.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Topic == "" {
		return nil, &llm.ErrConfiguration{Reason: "request must include a topic"}
	}
	req.Normalize()

	log := p.log.WithFields(logrus.Fields{
		"task":         "learning-path",
		"topic":        req.Topic,
		"detail_level": req.DetailLevel,
	})

	// Step 1: source discovery. The only wholly optional step.
	urls := p.discoverSources(ctx, req, log)
	log.WithField("sources", len(urls)).Info("source discovery complete")

	// Step 2: skeleton generation. Fatal on failure.
	skeleton, err := p.generateSkeleton(ctx, req)
	if err != nil {
		log.WithError(err).Error("skeleton generation failed, aborting")
		return nil, fmt.Errorf("generate skeleton: %w", err)
	}

	chapter, topics, err := skeleton.Chapter()
	if err != nil {
		return nil, fmt.Errorf("generate skeleton: %w", err)
	}
	log.WithFields(logrus.Fields{"chapter": chapter, "topics": len(topics)}).Info("skeleton generated")

	// Step 3: knowledge acquisition. Per-URL failures are skipped.
	kb := p.buildKnowledgeBase(ctx, urls, log)

	// Step 4: elaboration. The driver owns the accumulator; each call
	// returns a patch that is merged into the node, in order.
	for i := range topics {
		topic := &topics[i]
		tlog := log.WithField("topic_name", topic.TopicName)

		details, err := p.elaborateTopic(ctx, chapter, topic.TopicName, kb)
		if err != nil {
			tlog.WithError(err).Warn("topic elaboration failed, leaving defaults")
		} else {
			topic.Prerequisites = details.Prerequisites
			topic.ProblemSolvingTips = details.ProblemSolvingTips
			topic.CommonPitfalls = details.CommonPitfalls
		}

		for j := range topic.Concepts {
			concept := &topic.Concepts[j]

			content, err := p.elaborateConcept(ctx, topic.TopicName, concept.ConceptName, kb)
			if err != nil {
				tlog.WithField("concept", concept.ConceptName).
					WithError(err).Warn("concept elaboration failed, leaving defaults")
				continue
			}
			concept.ReadingMaterial = content.ReadingMaterial
			concept.MCQs = content.MCQs
		}
	}

	// Step 5: finalize.
	log.Info("learning path synthesis complete")
	return &Result{Topic: chapter, Content: topics}, nil
}

// discoverSources runs the search step. Any failure — transport, parse,
// or schema — degrades to an empty source list.
func (p *Pipeline) discoverSources(ctx context.Context, req Request, log *logrus.Entry) []string {
	ctx = llm.WithPurpose(ctx, "source-discovery")

	resp, err := p.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSearchPrompt(req)},
		},
		Schema:      SourceListSchema,
		Model:       p.cfg.SearchModel,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		log.WithError(err).Warn("source discovery failed, continuing without sources")
		return nil
	}

	var out struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		log.WithError(err).Warn("source list unreadable, continuing without sources")
		return nil
	}
	return out.URLs
}

// generateSkeleton runs the structure step. Its failure aborts the job.
func (p *Pipeline) generateSkeleton(ctx context.Context, req Request) (Skeleton, error) {
	ctx = llm.WithPurpose(ctx, "skeleton")

	resp, err := p.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSkeletonPrompt(req)},
		},
		Schema:      SkeletonSchema,
		Model:       p.cfg.ReasoningModel,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var skeleton Skeleton
	if err := json.Unmarshal(resp.Content, &skeleton); err != nil {
		return nil, &llm.ErrParseFailure{Content: resp.Content, Err: err}
	}
	return skeleton, nil
}

// buildKnowledgeBase summarizes each source URL in order. A failed
// summarization is logged and skipped; its URL contributes nothing.
func (p *Pipeline) buildKnowledgeBase(ctx context.Context, urls []string, log *logrus.Entry) *KnowledgeBase {
	kb := &KnowledgeBase{}

	if len(urls) == 0 {
		log.Info("no sources found, relying on model's internal knowledge")
		return kb
	}

	sctx := llm.WithPurpose(ctx, "source-summary")
	for i, url := range urls {
		resp, err := p.provider.Generate(sctx, llm.Request{
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: buildSummaryPrompt(url)},
			},
			Model:       p.cfg.SearchModel,
			MaxTokens:   p.cfg.MaxTokens,
			Temperature: p.cfg.Temperature,
		})
		if err != nil {
			log.WithFields(logrus.Fields{"url": url, "index": i}).
				WithError(err).Warn("source summarization failed, skipping")
			continue
		}

		summary := resp.Text()
		if summary == "" {
			summary = "No summary available."
		}
		kb.Append(url, summary)
	}

	log.WithField("sources_summarized", kb.Len()).Info("knowledge base built")
	return kb
}

// elaborateTopic produces the detail patch for one topic node.
func (p *Pipeline) elaborateTopic(ctx context.Context, chapter, topicName string, kb *KnowledgeBase) (*TopicDetails, error) {
	ctx = llm.WithPurpose(ctx, "topic-details")

	resp, err := p.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildTopicDetailsPrompt(chapter, topicName, kb)},
		},
		Schema:      TopicDetailsSchema,
		Model:       p.cfg.ReasoningModel,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var details TopicDetails
	if err := json.Unmarshal(resp.Content, &details); err != nil {
		return nil, &llm.ErrParseFailure{Content: resp.Content, Err: err}
	}
	return &details, nil
}

// elaborateConcept produces the content patch for one concept node.
func (p *Pipeline) elaborateConcept(ctx context.Context, topicName, conceptName string, kb *KnowledgeBase) (*ConceptContent, error) {
	ctx = llm.WithPurpose(ctx, "concept-content")

	resp, err := p.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildConceptPrompt(topicName, conceptName, kb)},
		},
		Schema:      ConceptContentSchema,
		Model:       p.cfg.ReasoningModel,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var content ConceptContent
	if err := json.Unmarshal(resp.Content, &content); err != nil {
		return nil, &llm.ErrParseFailure{Content: resp.Content, Err: err}
	}
	return &content, nil
}
