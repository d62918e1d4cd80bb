package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, source, document_type, file_hash, storage_path, effective_date, version,
section_count, page_count, commencement_dates, status, error_message, processing_cost,
obligation_count, archived, uploaded_at, processed_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	datesJSON, err := json.Marshal(dates(doc.CommencementDates))
	if err != nil {
		return fmt.Errorf("marshal commencement dates: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, title, source, document_type, file_hash, storage_path, effective_date, version,
	section_count, page_count, commencement_dates, status, error_message, processing_cost,
	obligation_count, archived, uploaded_at, processed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		doc.ID, doc.Title, doc.Source, doc.DocumentType, doc.FileHash, doc.StoragePath,
		doc.EffectiveDate, doc.Version, doc.SectionCount, doc.PageCount, datesJSON,
		string(doc.Status), doc.Error, doc.ProcessingCost, doc.ObligationCount, doc.Archived,
		doc.UploadedAt, doc.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	return scanDocument(row)
}

func (r *DocumentRepository) GetByHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE file_hash = $1
`, hash)
	return scanDocument(row)
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3
WHERE id = $1
`, id, string(status), errMessage)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateStructure(ctx context.Context, id string, sectionCount, pageCount int, effectiveDate, version string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET section_count = $2, page_count = GREATEST(page_count, $3), effective_date = $4, version = $5
WHERE id = $1
`, id, sectionCount, pageCount, effectiveDate, version)
	if err != nil {
		return fmt.Errorf("update document structure: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FinishProcessing(ctx context.Context, id string, status domain.ProcessingStatus, obligationCount int, cost float64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, obligation_count = $3, processing_cost = $4, processed_at = $5
WHERE id = $1
`, id, string(status), obligationCount, cost, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("finish document processing: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SaveCommencementDates(ctx context.Context, id string, datesIn []domain.CommencementDate) error {
	datesJSON, err := json.Marshal(dates(datesIn))
	if err != nil {
		return fmt.Errorf("marshal commencement dates: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE documents
SET commencement_dates = $2
WHERE id = $1
`, id, datesJSON)
	if err != nil {
		return fmt.Errorf("save commencement dates: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE documents
SET archived = $2
WHERE id = $1
`, id, archived)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListArchived(ctx context.Context, search, sortBy string) ([]domain.Document, error) {
	order := "processed_at DESC NULLS LAST, uploaded_at DESC"
	switch sortBy {
	case "complex":
		order = "obligation_count DESC"
	case "alphabetical":
		order = "title ASC"
	}

	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE archived = TRUE
  AND ($1 = '' OR title ILIKE '%' || $1 || '%' OR source ILIKE '%' || $1 || '%' OR document_type ILIKE '%' || $1 || '%')
ORDER BY ` + order

	rows, err := r.db.QueryContext(ctx, query, search)
	if err != nil {
		return nil, fmt.Errorf("list archived documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) AggregateStats(ctx context.Context) (domain.PlatformStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(obligation_count), 0), COALESCE(SUM(page_count), 0), COALESCE(SUM(processing_cost), 0)
FROM documents
WHERE archived = TRUE AND obligation_count > 0
`)
	var stats domain.PlatformStats
	if err := row.Scan(&stats.DocumentCount, &stats.TotalObligations, &stats.TotalPages, &stats.TotalCost); err != nil {
		return domain.PlatformStats{}, fmt.Errorf("aggregate platform stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var datesRaw []byte
	var status string
	var effectiveDate, version, errMessage sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Source, &doc.DocumentType, &doc.FileHash, &doc.StoragePath,
		&effectiveDate, &version, &doc.SectionCount, &doc.PageCount, &datesRaw, &status,
		&errMessage, &doc.ProcessingCost, &doc.ObligationCount, &doc.Archived,
		&doc.UploadedAt, &processedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(datesRaw, &doc.CommencementDates); err != nil {
		return nil, fmt.Errorf("unmarshal commencement dates: %w", err)
	}
	doc.Status = domain.ProcessingStatus(status)
	doc.EffectiveDate = effectiveDate.String
	doc.Version = version.String
	doc.Error = errMessage.String
	if processedAt.Valid {
		t := processedAt.Time
		doc.ProcessedAt = &t
	}
	return &doc, nil
}

func dates(in []domain.CommencementDate) []domain.CommencementDate {
	if in == nil {
		return []domain.CommencementDate{}
	}
	return in
}
