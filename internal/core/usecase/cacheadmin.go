package usecase

import (
	"context"
	"fmt"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
)

// ClearCacheUseCase wipes a document's cached pipeline artifacts and its
// persisted obligations, so the next pipeline run starts from scratch and
// pays full price.
type ClearCacheUseCase struct {
	cache       ports.ProcessingCache
	obligations ports.ObligationRepository
}

func NewClearCacheUseCase(cache ports.ProcessingCache, obligations ports.ObligationRepository) *ClearCacheUseCase {
	return &ClearCacheUseCase{cache: cache, obligations: obligations}
}

func (uc *ClearCacheUseCase) ClearDocument(ctx context.Context, documentID string) error {
	keys := []string{
		domain.CacheKey(domain.CacheOpParse, documentID),
		domain.CacheKey(domain.CacheOpDates, documentID),
		domain.CacheKey(domain.CacheOpRTM, documentID),
		domain.CacheKey(domain.CacheOpFuncSpec, documentID),
	}
	if err := uc.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate cache keys: %w", err)
	}
	if err := uc.cache.InvalidatePrefix(ctx, domain.SectionCachePrefix(domain.CacheOpExtract, documentID)); err != nil {
		return fmt.Errorf("invalidate extraction cache: %w", err)
	}
	if err := uc.obligations.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete obligations: %w", err)
	}
	return nil
}
