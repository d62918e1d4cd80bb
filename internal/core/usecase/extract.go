package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/jsonrepair"
)

type ExtractionConfig struct {
	Model           string
	MaxOutputTokens int
	MinSectionChars int
	DedupThreshold  float64
}

// ExtractionStage pulls obligation candidates out of every obligation-bearing
// section, one completion call per chunk, memoized per section. A chunk whose
// output defeats every repair strategy is skipped, not fatal: losing one chunk
// beats losing the document.
type ExtractionStage struct {
	cache       ports.ProcessingCache
	completions ports.CompletionClient
	usage       ports.UsageLog
	chunker     ports.Chunker
	cfg         ExtractionConfig
}

func NewExtractionStage(
	cache ports.ProcessingCache,
	completions ports.CompletionClient,
	usage ports.UsageLog,
	chunker ports.Chunker,
	cfg ExtractionConfig,
) *ExtractionStage {
	if cfg.DedupThreshold <= 0 || cfg.DedupThreshold > 1 {
		cfg.DedupThreshold = 0.9
	}
	return &ExtractionStage{
		cache:       cache,
		completions: completions,
		usage:       usage,
		chunker:     chunker,
		cfg:         cfg,
	}
}

// extractedObligation is the model-facing shape; identity and section context
// are attached by this stage, never requested from the model.
type extractedObligation struct {
	ExtractedText string   `json:"extracted_text"`
	Context       string   `json:"context"`
	Keywords      []string `json:"keywords"`
	Confidence    float64  `json:"confidence"`
}

func (s *ExtractionStage) Run(ctx context.Context, docID string, sections []domain.Section) ([]domain.Obligation, error) {
	var obligations []domain.Obligation

	for _, section := range sections {
		if !section.HasObligations {
			continue
		}
		if len(strings.TrimSpace(section.Content)) < s.cfg.MinSectionChars {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates, err := s.extractSection(ctx, docID, section)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		for _, c := range candidates {
			if strings.TrimSpace(c.ExtractedText) == "" {
				continue
			}
			obligations = append(obligations, domain.Obligation{
				ID:            uuid.NewString(),
				DocumentID:    docID,
				ExtractedText: c.ExtractedText,
				Context:       c.Context,
				SectionNumber: section.Number,
				PageNumber:    section.PageStart,
				Keywords:      c.Keywords,
				Confidence:    c.Confidence,
				CreatedAt:     now,
			})
		}
	}

	return dedupeObligations(obligations, s.cfg.DedupThreshold), nil
}

func (s *ExtractionStage) extractSection(ctx context.Context, docID string, section domain.Section) ([]extractedObligation, error) {
	key := domain.SectionCacheKey(domain.CacheOpExtract, docID, section.Number)

	if output, ok := cacheLookup(ctx, s.cache, s.usage, docID, domain.StageExtraction, key); ok {
		var cached []extractedObligation
		if err := json.Unmarshal(output, &cached); err == nil {
			return cached, nil
		}
		if err := s.cache.Invalidate(ctx, key); err != nil {
			return nil, fmt.Errorf("invalidate bad extract cache: %w", err)
		}
	}

	var results []extractedObligation
	var total domain.CompletionResult

	for _, chunk := range s.chunker.Split(section.Content) {
		started := time.Now()
		res, err := s.completions.Complete(ctx, domain.CompletionRequest{
			Prompt:          buildExtractionPrompt(section.Number, section.Title, chunk),
			MaxOutputTokens: s.cfg.MaxOutputTokens,
			Model:           s.cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("extract section %s: %w", section.Number, err)
		}
		recordCompletion(ctx, s.usage, docID, domain.StageExtraction, s.cfg.Model, res, started)
		total.InputTokens += res.InputTokens
		total.OutputTokens += res.OutputTokens

		repaired := jsonrepair.RepairArray(res.Text)
		var chunkResults []extractedObligation
		if err := json.Unmarshal([]byte(repaired), &chunkResults); err != nil {
			slog.Warn("extraction_chunk_unparseable",
				"document_id", docID,
				"section", section.Number,
				"error", err,
			)
			continue
		}
		results = append(results, chunkResults...)
	}

	output, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction results: %w", err)
	}
	cacheStore(ctx, s.cache, key, domain.CacheOpExtract, s.cfg.Model, output, total)

	return results, nil
}

// dedupeObligations drops any obligation whose word set overlaps an earlier
// one strictly above the threshold; similarity exactly at the threshold keeps
// both. First occurrence wins, so section order is preserved.
func dedupeObligations(obligations []domain.Obligation, threshold float64) []domain.Obligation {
	kept := make([]domain.Obligation, 0, len(obligations))
	keptWords := make([]map[string]struct{}, 0, len(obligations))

	for _, ob := range obligations {
		words := wordSet(ob.ExtractedText)
		duplicate := false
		for _, prior := range keptWords {
			if jaccard(words, prior) > threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, ob)
		keptWords = append(keptWords, words)
	}
	return kept
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()[]\"'")
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
