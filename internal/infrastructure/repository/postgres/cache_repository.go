package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type CacheRepository struct {
	db *sql.DB
}

func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT cache_key, operation, input_hash, output, model, tokens_used, cost, hit_count, created_at
FROM processing_cache
WHERE cache_key = $1
`, key)

	var entry domain.CacheEntry
	var inputHash, model sql.NullString
	err := row.Scan(
		&entry.Key, &entry.Operation, &inputHash, &entry.Output, &model,
		&entry.TokensUsed, &entry.Cost, &entry.HitCount, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan cache entry: %w", err)
	}
	entry.InputHash = inputHash.String
	entry.Model = model.String
	return &entry, nil
}

func (r *CacheRepository) Put(ctx context.Context, entry domain.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO processing_cache (cache_key, operation, input_hash, output, model, tokens_used, cost, hit_count, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (cache_key) DO UPDATE SET
	operation = EXCLUDED.operation,
	input_hash = EXCLUDED.input_hash,
	output = EXCLUDED.output,
	model = EXCLUDED.model,
	tokens_used = EXCLUDED.tokens_used,
	cost = EXCLUDED.cost,
	created_at = EXCLUDED.created_at
`,
		entry.Key, entry.Operation, entry.InputHash, []byte(entry.Output), entry.Model,
		entry.TokensUsed, entry.Cost, entry.HitCount, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepository) IncrementHit(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE processing_cache
SET hit_count = hit_count + 1
WHERE cache_key = $1
`, key)
	if err != nil {
		return fmt.Errorf("increment cache hit: %w", err)
	}
	return nil
}

func (r *CacheRepository) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM processing_cache WHERE cache_key = ANY($1)`, keys)
	if err != nil {
		return fmt.Errorf("invalidate cache keys: %w", err)
	}
	return nil
}

func (r *CacheRepository) InvalidatePrefix(ctx context.Context, prefix string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM processing_cache WHERE cache_key LIKE $1 || '%'`, prefix)
	if err != nil {
		return fmt.Errorf("invalidate cache prefix: %w", err)
	}
	return nil
}
