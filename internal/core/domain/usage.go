package domain

import "time"

// Pipeline stage names used in usage records and cache entries.
const (
	StageParsing        = "parsing"
	StageExtraction     = "extraction"
	StageClassification = "classification"
	StageDates          = "date_extraction"
	StageRTM            = "rtm_generation"
	StageFuncSpec       = "funcspec_generation"
)

// UsageRecord is an append-only entry per completion-service invocation.
// Cache hits are recorded at zero tokens and cost for observability; the
// aggregate spend for a document is the sum of its non-cache-hit records.
type UsageRecord struct {
	DocumentID   string        `json:"document_id"`
	Stage        string        `json:"stage"`
	Model        string        `json:"model"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	CacheHit     bool          `json:"cache_hit"`
	Duration     time.Duration `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}
