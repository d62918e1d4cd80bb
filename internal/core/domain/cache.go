package domain

import (
	"encoding/json"
	"time"
)

// Cache key construction. Whole-document operations use {op}:{docID};
// per-section extraction adds the section number so a partial re-run never
// re-pays for sections already processed.
const (
	CacheOpParse    = "parse"
	CacheOpExtract  = "extract"
	CacheOpDates    = "dates"
	CacheOpRTM      = "docgen_rtm"
	CacheOpFuncSpec = "docgen_funcspec"
)

func CacheKey(operation, documentID string) string {
	return operation + ":" + documentID
}

func SectionCacheKey(operation, documentID, sectionNumber string) string {
	return operation + ":" + documentID + ":" + sectionNumber
}

// SectionCachePrefix matches every per-section key for a document.
func SectionCachePrefix(operation, documentID string) string {
	return operation + ":" + documentID + ":"
}

// CacheEntry, once written, is immutable truth for its key until explicitly
// invalidated. Only the hit counter changes afterwards.
type CacheEntry struct {
	Key        string          `json:"cache_key"`
	Operation  string          `json:"operation"`
	InputHash  string          `json:"input_hash"`
	Output     json.RawMessage `json:"output"`
	Model      string          `json:"model"`
	TokensUsed int             `json:"tokens_used"`
	Cost       float64         `json:"cost"`
	HitCount   int             `json:"hit_count"`
	CreatedAt  time.Time       `json:"created_at"`
}
