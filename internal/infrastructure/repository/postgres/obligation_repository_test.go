package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/oblicore/oblicore/internal/core/domain"
)

func newObligationRepoWithMock(t *testing.T) (*ObligationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ObligationRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestBulkInsertRunsInTransaction(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	created := time.Date(2026, 5, 26, 10, 0, 0, 0, time.UTC)
	obligations := []domain.Obligation{
		{
			ID:            "ob-1",
			DocumentID:    "doc-1",
			ExtractedText: "An APRA-regulated entity must maintain a register.",
			SectionNumber: "4.2",
			PageNumber:    7,
			Keywords:      []string{"register"},
			Type:          domain.ObligationBinding,
			Confidence:    0.9,
			CreatedAt:     created,
		},
		{
			ID:            "ob-2",
			DocumentID:    "doc-1",
			ExtractedText: "The entity should review annually.",
			SectionNumber: "4.3",
			CreatedAt:     created,
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO obligations").
		WithArgs(
			"ob-1", "doc-1", obligations[0].ExtractedText, "", "4.2", 7,
			[]byte(`["register"]`), "binding", 0.9, []byte(`[]`), []byte(`[]`), "",
			"", "", "", "", "", "", "", created,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO obligations").
		WithArgs(
			"ob-2", "doc-1", obligations[1].ExtractedText, "", "4.3", 0,
			[]byte(`[]`), "", float64(0), []byte(`[]`), []byte(`[]`), "",
			"", "", "", "", "", "", "", created,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.BulkInsert(context.Background(), obligations); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBulkInsertEmptySliceIsNoop(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	if err := repo.BulkInsert(context.Background(), nil); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByDocumentScansNullableColumns(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	created := time.Date(2026, 5, 26, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, document_id, extracted_text").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "document_id", "extracted_text", "context", "section_number", "page_number",
			"keywords", "obligation_type", "confidence", "stakeholders", "impacted_systems",
			"implementation_type", "estimated_effort", "commencement_date", "commencement_date_text",
			"date_confidence", "classification_reasoning", "stakeholder_reasoning",
			"implementation_reasoning", "created_at",
		}).AddRow(
			"ob-1", "doc-1", "must maintain a register", nil, "4.2", 7,
			[]byte(`["register"]`), "binding", 0.9, []byte(`["risk team"]`), []byte(`[]`),
			"process_change", "medium", nil, nil, "low", "clearly binding", nil, nil, created,
		))

	out, err := repo.ListByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 obligation, got %d", len(out))
	}

	ob := out[0]
	if ob.Type != domain.ObligationBinding || ob.ImplementationType != domain.ImplProcessChange {
		t.Fatalf("enums not mapped: %+v", ob)
	}
	if len(ob.Keywords) != 1 || ob.Keywords[0] != "register" {
		t.Fatalf("keywords = %v", ob.Keywords)
	}
	if len(ob.Stakeholders) != 1 || ob.Stakeholders[0] != "risk team" {
		t.Fatalf("stakeholders = %v", ob.Stakeholders)
	}
	if ob.Context != "" || ob.CommencementDate != "" {
		t.Fatalf("null columns must scan to empty strings: %+v", ob)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveClassificationUpdatesAllDimensions(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE obligations").
		WithArgs(
			"ob-1", "binding", 0.85, []byte(`["compliance team"]`), []byte(`["reporting system"]`),
			"system_change", "large", "2026-07-01", "from 1 July 2026", "high",
			"imperative language", "named in clause", "new report required",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveClassification(context.Background(), "ob-1",
		domain.ClassificationResult{Type: domain.ObligationBinding, Confidence: 0.85, Reasoning: "imperative language"},
		domain.StakeholderResult{Stakeholders: []string{"compliance team"}, ImpactedSystems: []string{"reporting system"}, Reasoning: "named in clause"},
		domain.ImplementationResult{
			ImplementationType:   domain.ImplSystemChange,
			EstimatedEffort:      domain.EffortLarge,
			CommencementDate:     "2026-07-01",
			CommencementDateText: "from 1 July 2026",
			DateConfidence:       domain.DateConfidenceHigh,
			Reasoning:            "new report required",
		},
	)
	if err != nil {
		t.Fatalf("SaveClassification() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteByDocument(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM obligations").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := repo.DeleteByDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountByDocument(t *testing.T) {
	repo, mock, done := newObligationRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("CountByDocument() error = %v", err)
	}
	if count != 12 {
		t.Fatalf("count = %d, want 12", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
