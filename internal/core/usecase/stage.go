package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/pricing"
)

// Cache and usage-log plumbing shared by every pipeline stage. Cache
// infrastructure failures degrade to a miss: the pipeline pays tokens rather
// than failing a document over a memoization problem.

func cacheLookup(ctx context.Context, cache ports.ProcessingCache, usage ports.UsageLog, docID, stage, key string) (json.RawMessage, bool) {
	entry, err := cache.Get(ctx, key)
	if err != nil {
		if !domain.IsKind(err, domain.ErrNotFound) {
			slog.Warn("cache_lookup_failed", "key", key, "error", err)
		}
		return nil, false
	}

	if err := cache.IncrementHit(ctx, key); err != nil {
		slog.Warn("cache_hit_count_failed", "key", key, "error", err)
	}
	appendUsage(ctx, usage, domain.UsageRecord{
		DocumentID: docID,
		Stage:      stage,
		Model:      entry.Model,
		CacheHit:   true,
		CreatedAt:  time.Now().UTC(),
	})
	return entry.Output, true
}

func cacheStore(ctx context.Context, cache ports.ProcessingCache, key, operation, model string, output json.RawMessage, res domain.CompletionResult) {
	err := cache.Put(ctx, domain.CacheEntry{
		Key:        key,
		Operation:  operation,
		Output:     output,
		Model:      model,
		TokensUsed: res.InputTokens + res.OutputTokens,
		Cost:       pricing.Cost(model, res.InputTokens, res.OutputTokens),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("cache_store_failed", "key", key, "error", err)
	}
}

func recordCompletion(ctx context.Context, usage ports.UsageLog, docID, stage, model string, res domain.CompletionResult, started time.Time) {
	appendUsage(ctx, usage, domain.UsageRecord{
		DocumentID:   docID,
		Stage:        stage,
		Model:        model,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		Cost:         pricing.Cost(model, res.InputTokens, res.OutputTokens),
		Duration:     time.Since(started),
		CreatedAt:    time.Now().UTC(),
	})
}

func appendUsage(ctx context.Context, usage ports.UsageLog, record domain.UsageRecord) {
	if err := usage.Append(ctx, record); err != nil {
		slog.Warn("usage_append_failed", "document_id", record.DocumentID, "stage", record.Stage, "error", err)
	}
}
