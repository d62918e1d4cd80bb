package ports

import (
	"context"
	"io"

	"github.com/oblicore/oblicore/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByHash(ctx context.Context, hash string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errMessage string) error
	UpdateStructure(ctx context.Context, id string, sectionCount, pageCount int, effectiveDate, version string) error
	FinishProcessing(ctx context.Context, id string, status domain.ProcessingStatus, obligationCount int, cost float64) error
	SaveCommencementDates(ctx context.Context, id string, dates []domain.CommencementDate) error
	SetArchived(ctx context.Context, id string, archived bool) error
	ListArchived(ctx context.Context, search, sortBy string) ([]domain.Document, error)
	AggregateStats(ctx context.Context) (domain.PlatformStats, error)
}

// ObligationRepository persists extracted obligations. Classification updates
// are keyed by obligation id, which keeps re-runs idempotent.
type ObligationRepository interface {
	BulkInsert(ctx context.Context, obligations []domain.Obligation) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Obligation, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
	SaveClassification(ctx context.Context, id string, cls domain.ClassificationResult, st domain.StakeholderResult, impl domain.ImplementationResult) error
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ProcessingCache is the content-addressed memoization layer. Get returns
// domain.ErrNotFound on miss; hit-counter updates are the caller's job.
type ProcessingCache interface {
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry domain.CacheEntry) error
	IncrementHit(ctx context.Context, key string) error
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// UsageLog is append-only. SumCost aggregates non-cache-hit entries only: the
// log, not any in-memory running total, is the source of truth for spend.
type UsageLog interface {
	Append(ctx context.Context, record domain.UsageRecord) error
	SumCost(ctx context.Context, documentID string) (float64, error)
}

// CompletionClient wraps the external text-completion service, retry policy
// included. Failures are either domain.ErrRateLimited (after retries are
// exhausted) or fatal.
type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}

// ObjectStorage stores source document bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document-processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageCounter reads page metadata from raw PDF bytes.
type PageCounter interface {
	CountPages(data []byte) (int, error)
}

// Chunker splits section text into completion-sized chunks.
type Chunker interface {
	Split(text string) []string
}

// DeliverableRenderer turns a deliverable JSON tree into a downloadable
// byte buffer. Rendering is an external collaborator of the core.
type DeliverableRenderer interface {
	RenderRTM(rtm domain.RTM) ([]byte, error)
	RenderFunctionalSpec(spec domain.FunctionalSpec) ([]byte, error)
}
