package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
)

type UploadDocumentUseCase struct {
	docs    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	pages   ports.PageCounter
}

func NewUploadDocumentUseCase(
	docs ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	pages ports.PageCounter,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		docs:    docs,
		storage: storage,
		queue:   queue,
		pages:   pages,
	}
}

// Upload stores a new document and queues it for processing. A byte-identical
// re-upload (same content hash) returns the existing document untouched.
func (uc *UploadDocumentUseCase) Upload(ctx context.Context, upload domain.Upload) (*domain.Document, bool, error) {
	if upload.Hash == "" || len(upload.Content) == 0 {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("empty content or hash"))
	}

	existing, err := uc.docs.GetByHash(ctx, upload.Hash)
	if err == nil {
		return existing, true, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("look up document by hash: %w", err)
	}

	pageCount := 0
	if count, err := uc.pages.CountPages(upload.Content); err != nil {
		slog.Warn("page_count_failed", "filename", upload.Filename, "error", err)
	} else {
		pageCount = count
	}

	id := uuid.NewString()
	storageKey := id + ".pdf"

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(upload.Content)); err != nil {
		return nil, false, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:           id,
		Title:        upload.Title,
		Source:       upload.Source,
		DocumentType: upload.DocumentType,
		FileHash:     upload.Hash,
		StoragePath:  storageKey,
		PageCount:    pageCount,
		Status:       domain.StatusPending,
		UploadedAt:   time.Now().UTC(),
	}
	if doc.Title == "" {
		doc.Title = upload.Filename
	}

	if err := uc.docs.Create(ctx, doc); err != nil {
		// A concurrent upload of the same bytes can win the unique hash
		// index; surface the winner instead of an error.
		if winner, getErr := uc.docs.GetByHash(ctx, upload.Hash); getErr == nil {
			return winner, true, nil
		}
		return nil, false, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		// The record and stored bytes are kept: re-uploading the same bytes
		// resolves to this document, and the process endpoint can queue it
		// once the broker is back. Marking it failed keeps the status honest
		// in the meantime.
		if statusErr := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed, "queue publish failed: "+err.Error()); statusErr != nil {
			slog.Error("mark_unqueued_upload_failed", "document_id", doc.ID, "error", statusErr)
		}
		return nil, false, domain.WrapError(domain.ErrTemporary, "publish upload event", err)
	}

	return doc, false, nil
}
