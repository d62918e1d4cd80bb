package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema bootstraps all tables. Safe to call from both binaries.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source TEXT NOT NULL,
	document_type TEXT NOT NULL,
	file_hash TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	effective_date TEXT,
	version TEXT,
	section_count INTEGER NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	commencement_dates JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	processing_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	obligation_count INTEGER NOT NULL DEFAULT 0,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	uploaded_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_file_hash ON documents(file_hash);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS obligations (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	extracted_text TEXT NOT NULL,
	context TEXT,
	section_number TEXT,
	page_number INTEGER NOT NULL DEFAULT 0,
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	obligation_type TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	stakeholders JSONB NOT NULL DEFAULT '[]'::jsonb,
	impacted_systems JSONB NOT NULL DEFAULT '[]'::jsonb,
	implementation_type TEXT,
	estimated_effort TEXT,
	commencement_date TEXT,
	commencement_date_text TEXT,
	date_confidence TEXT,
	classification_reasoning TEXT,
	stakeholder_reasoning TEXT,
	implementation_reasoning TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_obligations_document ON obligations(document_id);

CREATE TABLE IF NOT EXISTS processing_cache (
	cache_key TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	input_hash TEXT,
	output JSONB NOT NULL,
	model TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	hit_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_log (
	id BIGSERIAL PRIMARY KEY,
	document_id TEXT,
	stage TEXT NOT NULL,
	model TEXT,
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost DOUBLE PRECISION NOT NULL DEFAULT 0,
	cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_log_document ON usage_log(document_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
