package ports

import (
	"context"

	"github.com/oblicore/oblicore/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload. The returned
// bool reports whether the upload was a byte-identical duplicate, in which
// case the existing document is returned and nothing is created.
type DocumentIngestor interface {
	Upload(ctx context.Context, upload domain.Upload) (*domain.Document, bool, error)
}

// DocumentProcessor is the inbound contract for asynchronous pipeline runs.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DateExtractor extracts document-level commencement dates.
type DateExtractor interface {
	ExtractDates(ctx context.Context, documentID string) ([]domain.CommencementDate, error)
}

// DeliverableGenerator produces rendered compliance deliverables.
type DeliverableGenerator interface {
	GenerateRTM(ctx context.Context, documentID string) ([]byte, error)
	GenerateFunctionalSpec(ctx context.Context, documentID string) ([]byte, error)
}

// CacheAdmin clears a document's cached pipeline artifacts and obligations so
// the pipeline can be re-run from scratch.
type CacheAdmin interface {
	ClearDocument(ctx context.Context, documentID string) error
}
