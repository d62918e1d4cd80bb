package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) Append(ctx context.Context, record domain.UsageRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO usage_log (document_id, stage, model, input_tokens, output_tokens, cost, cache_hit, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		record.DocumentID, record.Stage, record.Model, record.InputTokens, record.OutputTokens,
		record.Cost, record.CacheHit, record.Duration.Milliseconds(), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append usage record: %w", err)
	}
	return nil
}

// SumCost reports what the document actually cost: cache hits carry zero
// spend and are excluded.
func (r *UsageRepository) SumCost(ctx context.Context, documentID string) (float64, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(cost), 0)
FROM usage_log
WHERE document_id = $1 AND cache_hit = FALSE
`, documentID)
	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum usage cost: %w", err)
	}
	return total, nil
}
