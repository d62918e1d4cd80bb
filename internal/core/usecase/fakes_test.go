package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type statusCall struct {
	status domain.ProcessingStatus
	errMsg string
}

type docRepoFake struct {
	mu   sync.Mutex
	docs map[string]*domain.Document

	statusCalls   []statusCall
	finishStatus  domain.ProcessingStatus
	finishCount   int
	finishCost    float64
	finishCalls   int
	savedDates    []domain.CommencementDate
	structureErr  error
	sectionCount  int
	pageCount     int
	effectiveDate string
	version       string
}

func newDocRepoFake(docs ...*domain.Document) *docRepoFake {
	f := &docRepoFake{docs: make(map[string]*domain.Document)}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) GetByHash(_ context.Context, hash string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.FileHash == hash {
			copyDoc := *doc
			return &copyDoc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *docRepoFake) UpdateStatus(_ context.Context, _ string, status domain.ProcessingStatus, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *docRepoFake) UpdateStructure(_ context.Context, _ string, sectionCount, pageCount int, effectiveDate, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.structureErr != nil {
		return f.structureErr
	}
	f.sectionCount = sectionCount
	f.pageCount = pageCount
	f.effectiveDate = effectiveDate
	f.version = version
	return nil
}

func (f *docRepoFake) FinishProcessing(_ context.Context, _ string, status domain.ProcessingStatus, obligationCount int, cost float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishStatus = status
	f.finishCount = obligationCount
	f.finishCost = cost
	f.finishCalls++
	return nil
}

func (f *docRepoFake) SaveCommencementDates(_ context.Context, _ string, dates []domain.CommencementDate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedDates = dates
	return nil
}

func (f *docRepoFake) SetArchived(context.Context, string, bool) error { return nil }

func (f *docRepoFake) ListArchived(context.Context, string, string) ([]domain.Document, error) {
	return nil, nil
}

func (f *docRepoFake) AggregateStats(context.Context) (domain.PlatformStats, error) {
	return domain.PlatformStats{}, nil
}

type savedClassification struct {
	cls  domain.ClassificationResult
	st   domain.StakeholderResult
	impl domain.ImplementationResult
}

type obligationRepoFake struct {
	mu        sync.Mutex
	inserted  []domain.Obligation
	saved     map[string]savedClassification
	insertErr error
	deleted   []string
}

func newObligationRepoFake() *obligationRepoFake {
	return &obligationRepoFake{saved: make(map[string]savedClassification)}
}

func (f *obligationRepoFake) BulkInsert(_ context.Context, obligations []domain.Obligation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, obligations...)
	return nil
}

func (f *obligationRepoFake) ListByDocument(_ context.Context, documentID string) ([]domain.Obligation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Obligation
	for _, ob := range f.inserted {
		if ob.DocumentID == documentID {
			out = append(out, ob)
		}
	}
	return out, nil
}

func (f *obligationRepoFake) CountByDocument(_ context.Context, documentID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, ob := range f.inserted {
		if ob.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (f *obligationRepoFake) SaveClassification(_ context.Context, id string, cls domain.ClassificationResult, st domain.StakeholderResult, impl domain.ImplementationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = savedClassification{cls: cls, st: st, impl: impl}
	return nil
}

func (f *obligationRepoFake) DeleteByDocument(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, documentID)
	kept := f.inserted[:0]
	for _, ob := range f.inserted {
		if ob.DocumentID != documentID {
			kept = append(kept, ob)
		}
	}
	f.inserted = kept
	return nil
}

type cacheFake struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	hits    map[string]int
}

func newCacheFake() *cacheFake {
	return &cacheFake{
		entries: make(map[string]domain.CacheEntry),
		hits:    make(map[string]int),
	}
}

func (f *cacheFake) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copyEntry := entry
	return &copyEntry, nil
}

func (f *cacheFake) Put(_ context.Context, entry domain.CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.Key] = entry
	return nil
}

func (f *cacheFake) IncrementHit(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[key]++
	return nil
}

func (f *cacheFake) Invalidate(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *cacheFake) InvalidatePrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *cacheFake) put(key, operation string, value any) {
	output, _ := json.Marshal(value)
	f.entries[key] = domain.CacheEntry{Key: key, Operation: operation, Output: output}
}

type usageFake struct {
	mu      sync.Mutex
	records []domain.UsageRecord
}

func (f *usageFake) Append(_ context.Context, record domain.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *usageFake) SumCost(_ context.Context, documentID string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0.0
	for _, r := range f.records {
		if r.DocumentID == documentID && !r.CacheHit {
			total += r.Cost
		}
	}
	return total, nil
}

func (f *usageFake) cacheHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if r.CacheHit {
			count++
		}
	}
	return count
}

// completionFake dispatches on prompt content, so one fake can serve every
// stage of a pipeline test.
type completionFake struct {
	mu      sync.Mutex
	handler func(req domain.CompletionRequest) (domain.CompletionResult, error)
	calls   []domain.CompletionRequest
}

func (f *completionFake) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.handler(req)
}

func (f *completionFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func textResult(text string) (domain.CompletionResult, error) {
	return domain.CompletionResult{Text: text, InputTokens: 100, OutputTokens: 50}, nil
}

type storageFake struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newStorageFake() *storageFake {
	return &storageFake{files: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = content
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

type queueFake struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

type pageCounterFake struct {
	count int
	err   error
}

func (f *pageCounterFake) CountPages([]byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

type chunkerFake struct {
	size int
}

func (f *chunkerFake) Split(text string) []string {
	if f.size <= 0 || len(text) <= f.size {
		return []string{text}
	}
	var chunks []string
	for len(text) > f.size {
		chunks = append(chunks, text[:f.size])
		text = text[f.size:]
	}
	return append(chunks, text)
}

type rendererFake struct {
	rtmCalls  int
	specCalls int
}

func (f *rendererFake) RenderRTM(domain.RTM) ([]byte, error) {
	f.rtmCalls++
	return []byte("rtm-workbook"), nil
}

func (f *rendererFake) RenderFunctionalSpec(domain.FunctionalSpec) ([]byte, error) {
	f.specCalls++
	return []byte("spec-workbook"), nil
}
