package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/jsonrepair"
)

type DateExtractionConfig struct {
	Model           string
	MaxOutputTokens int
}

// ExtractDatesUseCase finds document-level commencement dates. Stored dates
// short-circuit; otherwise one completion call with the PDF attached, cached
// at dates:{docID}.
type ExtractDatesUseCase struct {
	docs        ports.DocumentRepository
	cache       ports.ProcessingCache
	completions ports.CompletionClient
	usage       ports.UsageLog
	storage     ports.ObjectStorage
	cfg         DateExtractionConfig
}

func NewExtractDatesUseCase(
	docs ports.DocumentRepository,
	cache ports.ProcessingCache,
	completions ports.CompletionClient,
	usage ports.UsageLog,
	storage ports.ObjectStorage,
	cfg DateExtractionConfig,
) *ExtractDatesUseCase {
	return &ExtractDatesUseCase{
		docs:        docs,
		cache:       cache,
		completions: completions,
		usage:       usage,
		storage:     storage,
		cfg:         cfg,
	}
}

func (uc *ExtractDatesUseCase) ExtractDates(ctx context.Context, documentID string) ([]domain.CommencementDate, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if len(doc.CommencementDates) > 0 {
		return doc.CommencementDates, nil
	}

	key := domain.CacheKey(domain.CacheOpDates, doc.ID)
	if output, ok := cacheLookup(ctx, uc.cache, uc.usage, doc.ID, domain.StageDates, key); ok {
		var cached []domain.CommencementDate
		if err := json.Unmarshal(output, &cached); err == nil {
			dates := normalizeDates(cached)
			return dates, uc.persist(ctx, doc.ID, dates)
		}
		if err := uc.cache.Invalidate(ctx, key); err != nil {
			return nil, fmt.Errorf("invalidate bad dates cache: %w", err)
		}
	}

	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	pdf, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}

	started := time.Now()
	res, err := uc.completions.Complete(ctx, domain.CompletionRequest{
		Prompt:          buildDatesPrompt(),
		Attachment:      pdf,
		MaxOutputTokens: uc.cfg.MaxOutputTokens,
		Model:           uc.cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("extract commencement dates: %w", err)
	}
	recordCompletion(ctx, uc.usage, doc.ID, domain.StageDates, uc.cfg.Model, res, started)

	repaired := jsonrepair.RepairArray(res.Text)
	var parsed []domain.CommencementDate
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedOutput, "parse dates output", err)
	}

	cacheStore(ctx, uc.cache, key, domain.CacheOpDates, uc.cfg.Model, json.RawMessage(repaired), res)

	dates := normalizeDates(parsed)
	return dates, uc.persist(ctx, doc.ID, dates)
}

func (uc *ExtractDatesUseCase) persist(ctx context.Context, documentID string, dates []domain.CommencementDate) error {
	if err := uc.docs.SaveCommencementDates(ctx, documentID, dates); err != nil {
		return fmt.Errorf("persist commencement dates: %w", err)
	}
	return nil
}

// normalizeDates drops entries without a valid ISO day and orders the rest
// earliest first, so the primary commencement date is always element zero.
func normalizeDates(in []domain.CommencementDate) []domain.CommencementDate {
	out := make([]domain.CommencementDate, 0, len(in))
	for _, d := range in {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
