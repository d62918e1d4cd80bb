package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/oblicore/oblicore/internal/core/domain"
)

func newDocumentRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, title, source, document_type").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByHashScansDocument(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	uploaded := time.Date(2026, 5, 26, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "title", "source", "document_type", "file_hash", "storage_path",
		"effective_date", "version", "section_count", "page_count", "commencement_dates",
		"status", "error_message", "processing_cost", "obligation_count", "archived",
		"uploaded_at", "processed_at",
	}).AddRow(
		"doc-1", "Prudential Standard CPS 230", "APRA", "regulation", "abc123", "doc-1.pdf",
		"2025-07-01", "1.0", 12, 40, []byte(`[{"date":"2025-07-01","description":"general commencement"}]`),
		"completed", nil, 0.42, 17, true, uploaded, uploaded,
	)

	mock.ExpectQuery("SELECT id, title, source, document_type").
		WithArgs("abc123").
		WillReturnRows(rows)

	doc, err := repo.GetByHash(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if doc.ID != "doc-1" || doc.Status != domain.StatusCompleted {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.CommencementDates) != 1 || doc.CommencementDates[0].Date != "2025-07-01" {
		t.Fatalf("unexpected commencement dates: %+v", doc.CommencementDates)
	}
	if doc.ProcessedAt == nil || !doc.ProcessedAt.Equal(uploaded) {
		t.Fatalf("unexpected processed_at: %v", doc.ProcessedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFinishProcessingUpdatesTerminalFields(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", string(domain.StatusCompleted), 9, 0.12, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.FinishProcessing(context.Background(), "doc-1", domain.StatusCompleted, 9, 0.12)
	if err != nil {
		t.Fatalf("FinishProcessing() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAggregateStatsScansTotals(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count", "obligations", "pages", "cost"}).
			AddRow(3, 42, 180, 1.25))

	stats, err := repo.AggregateStats(context.Background())
	if err != nil {
		t.Fatalf("AggregateStats() error = %v", err)
	}
	if stats.DocumentCount != 3 || stats.TotalObligations != 42 || stats.TotalPages != 180 || stats.TotalCost != 1.25 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
