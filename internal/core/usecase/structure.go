package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/jsonrepair"
)

type StructuringConfig struct {
	Model           string
	MaxOutputTokens int
}

// StructuringStage turns the raw PDF into a section list. One completion call
// per document, memoized at parse:{docID}; an output no repair strategy can
// parse is fatal for the document.
type StructuringStage struct {
	cache       ports.ProcessingCache
	completions ports.CompletionClient
	usage       ports.UsageLog
	docs        ports.DocumentRepository
	cfg         StructuringConfig
}

func NewStructuringStage(
	cache ports.ProcessingCache,
	completions ports.CompletionClient,
	usage ports.UsageLog,
	docs ports.DocumentRepository,
	cfg StructuringConfig,
) *StructuringStage {
	return &StructuringStage{
		cache:       cache,
		completions: completions,
		usage:       usage,
		docs:        docs,
		cfg:         cfg,
	}
}

func (s *StructuringStage) Run(ctx context.Context, doc *domain.Document, pdf []byte) (domain.DocumentStructure, error) {
	key := domain.CacheKey(domain.CacheOpParse, doc.ID)

	if output, ok := cacheLookup(ctx, s.cache, s.usage, doc.ID, domain.StageParsing, key); ok {
		structure, err := parseStructure(string(output))
		if err == nil {
			return structure, s.persist(ctx, doc.ID, structure)
		}
		// A poisoned cache entry must not permanently fail the document.
		if invErr := s.cache.Invalidate(ctx, key); invErr != nil {
			return domain.DocumentStructure{}, fmt.Errorf("invalidate bad parse cache: %w", invErr)
		}
	}

	started := time.Now()
	res, err := s.completions.Complete(ctx, domain.CompletionRequest{
		Prompt:          buildStructurePrompt(),
		Attachment:      pdf,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		Model:           s.cfg.Model,
	})
	if err != nil {
		return domain.DocumentStructure{}, fmt.Errorf("structure document: %w", err)
	}
	recordCompletion(ctx, s.usage, doc.ID, domain.StageParsing, s.cfg.Model, res, started)

	repaired := jsonrepair.RepairObject(res.Text)
	structure, err := parseStructure(repaired)
	if err != nil {
		return domain.DocumentStructure{}, domain.WrapError(domain.ErrStructuringFailed, "parse structure output", err)
	}

	cacheStore(ctx, s.cache, key, domain.CacheOpParse, s.cfg.Model, json.RawMessage(repaired), res)

	return structure, s.persist(ctx, doc.ID, structure)
}

func parseStructure(text string) (domain.DocumentStructure, error) {
	var structure domain.DocumentStructure
	if err := json.Unmarshal([]byte(text), &structure); err != nil {
		return domain.DocumentStructure{}, err
	}
	if len(structure.Sections) == 0 {
		return domain.DocumentStructure{}, fmt.Errorf("no sections in structure output")
	}
	return structure, nil
}

func (s *StructuringStage) persist(ctx context.Context, docID string, structure domain.DocumentStructure) error {
	err := s.docs.UpdateStructure(ctx, docID, len(structure.Sections), structure.TotalPages, structure.EffectiveDate, structure.Version)
	if err != nil {
		return fmt.Errorf("persist document structure: %w", err)
	}
	return nil
}
