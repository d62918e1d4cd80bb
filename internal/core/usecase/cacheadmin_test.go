package usecase

import (
	"context"
	"testing"

	"github.com/oblicore/oblicore/internal/core/domain"
)

func TestClearDocumentWipesCacheAndObligations(t *testing.T) {
	cache := newCacheFake()
	cache.put("parse:doc-1", domain.CacheOpParse, map[string]string{})
	cache.put("extract:doc-1:4.2", domain.CacheOpExtract, []string{})
	cache.put("extract:doc-1:5.1", domain.CacheOpExtract, []string{})
	cache.put("dates:doc-1", domain.CacheOpDates, []string{})
	cache.put("docgen_rtm:doc-1", domain.CacheOpRTM, map[string]string{})
	cache.put("docgen_funcspec:doc-1", domain.CacheOpFuncSpec, map[string]string{})
	cache.put("parse:doc-2", domain.CacheOpParse, map[string]string{})

	obligations := newObligationRepoFake()
	obligations.inserted = []domain.Obligation{
		{ID: "ob-1", DocumentID: "doc-1"},
		{ID: "ob-2", DocumentID: "doc-2"},
	}

	uc := NewClearCacheUseCase(cache, obligations)
	if err := uc.ClearDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ClearDocument() error = %v", err)
	}

	if len(cache.entries) != 1 {
		t.Fatalf("expected only doc-2 entry to survive, got %d entries", len(cache.entries))
	}
	if _, ok := cache.entries["parse:doc-2"]; !ok {
		t.Fatalf("other documents' cache must be untouched")
	}
	if len(obligations.inserted) != 1 || obligations.inserted[0].DocumentID != "doc-2" {
		t.Fatalf("expected doc-1 obligations deleted, got %+v", obligations.inserted)
	}
}
