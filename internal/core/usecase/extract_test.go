package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/oblicore/oblicore/internal/core/domain"
)

func newExtractionStage(cache *cacheFake, completions *completionFake, usage *usageFake) *ExtractionStage {
	return NewExtractionStage(cache, completions, usage, &chunkerFake{}, ExtractionConfig{
		Model:           "haiku-test",
		MaxOutputTokens: 4096,
		MinSectionChars: 10,
		DedupThreshold:  0.9,
	})
}

func obligationSections() []domain.Section {
	return []domain.Section{
		{Number: "1", Title: "Objectives", Content: "Background text only, long enough.", HasObligations: false},
		{Number: "4.2", Title: "Operational risk", Content: "An entity must maintain effective internal controls at all times.", PageStart: 5, HasObligations: true},
	}
}

func TestExtractSkipsSectionsWithoutObligations(t *testing.T) {
	completions := &completionFake{handler: func(req domain.CompletionRequest) (domain.CompletionResult, error) {
		if !strings.Contains(req.Prompt, "Section 4.2") {
			t.Fatalf("unexpected section in prompt: %s", req.Prompt)
		}
		return textResult(`[{"extracted_text": "An entity must maintain effective internal controls.", "context": "operational risk", "keywords": ["controls"], "confidence": 0.9}]`)
	}}

	stage := newExtractionStage(newCacheFake(), completions, &usageFake{})
	obligations, err := stage.Run(context.Background(), "doc-1", obligationSections())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(obligations) != 1 {
		t.Fatalf("expected 1 obligation, got %d", len(obligations))
	}
	if obligations[0].SectionNumber != "4.2" || obligations[0].PageNumber != 5 {
		t.Fatalf("unexpected obligation source: %+v", obligations[0])
	}
	if obligations[0].ID == "" || obligations[0].DocumentID != "doc-1" {
		t.Fatalf("identity not attached: %+v", obligations[0])
	}
}

func TestExtractMalformedChunkIsSkippedNotFatal(t *testing.T) {
	completions := &completionFake{handler: func(domain.CompletionRequest) (domain.CompletionResult, error) {
		return textResult("no json here at all")
	}}

	stage := newExtractionStage(newCacheFake(), completions, &usageFake{})
	obligations, err := stage.Run(context.Background(), "doc-1", obligationSections())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(obligations) != 0 {
		t.Fatalf("expected no obligations, got %d", len(obligations))
	}
}

func TestExtractSectionCacheHitSkipsCompletion(t *testing.T) {
	cache := newCacheFake()
	cache.put("extract:doc-1:4.2", domain.CacheOpExtract, []extractedObligation{
		{ExtractedText: "Cached obligation text.", Confidence: 0.8},
	})
	completions := &completionFake{handler: func(domain.CompletionRequest) (domain.CompletionResult, error) {
		t.Fatalf("completion must not be called on cache hit")
		return domain.CompletionResult{}, nil
	}}

	stage := newExtractionStage(cache, completions, &usageFake{})
	obligations, err := stage.Run(context.Background(), "doc-1", obligationSections())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(obligations) != 1 || obligations[0].ExtractedText != "Cached obligation text." {
		t.Fatalf("expected cached obligation, got %+v", obligations)
	}
}

func TestDedupeObligationsDropsNearDuplicates(t *testing.T) {
	obligations := []domain.Obligation{
		{ExtractedText: "An entity must maintain effective internal controls over operational risk"},
		{ExtractedText: "An entity must maintain effective internal controls over operational risk."},
		{ExtractedText: "An entity must report material incidents to the regulator within 72 hours"},
	}

	deduped := dedupeObligations(obligations, 0.9)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 obligations after dedup, got %d", len(deduped))
	}
	if deduped[0].ExtractedText != obligations[0].ExtractedText {
		t.Fatalf("first occurrence must win, got %q", deduped[0].ExtractedText)
	}
}

func TestDedupeKeepsDistinctObligationsBelowThreshold(t *testing.T) {
	obligations := []domain.Obligation{
		{ExtractedText: "An entity must maintain a register of material service providers"},
		{ExtractedText: "An entity must notify APRA before entering material arrangements"},
	}

	deduped := dedupeObligations(obligations, 0.9)
	if len(deduped) != 2 {
		t.Fatalf("expected both obligations kept, got %d", len(deduped))
	}
}

func TestDedupeSimilarityExactlyAtThresholdKeepsBoth(t *testing.T) {
	// Word sets of size 10 and its 9-word subset: intersection 9, union 10,
	// similarity exactly 0.9.
	obligations := []domain.Obligation{
		{ExtractedText: "the entity must notify apra within ten business days promptly"},
		{ExtractedText: "the entity must notify apra within ten business days"},
	}

	deduped := dedupeObligations(obligations, 0.9)
	if len(deduped) != 2 {
		t.Fatalf("similarity exactly at the threshold must keep both obligations, got %d", len(deduped))
	}
}

func TestJaccardIdenticalSetsIsOne(t *testing.T) {
	a := wordSet("must maintain controls")
	if got := jaccard(a, a); got != 1 {
		t.Fatalf("jaccard(a, a) = %v, want 1", got)
	}
}
