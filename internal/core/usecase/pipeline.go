package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
)

// ProcessDocumentUseCase drives one document through the pipeline:
// structuring, extraction, persistence, classification, cost roll-up. The
// status transitions are pending → processing → completed | failed, and a
// failure after obligations were persisted still finishes the document as
// completed: partial results are results.
type ProcessDocumentUseCase struct {
	docs        ports.DocumentRepository
	obligations ports.ObligationRepository
	storage     ports.ObjectStorage
	usage       ports.UsageLog
	structure   *StructuringStage
	extract     *ExtractionStage
	classify    *ClassificationStage
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	obligations ports.ObligationRepository,
	storage ports.ObjectStorage,
	usage ports.UsageLog,
	structure *StructuringStage,
	extract *ExtractionStage,
	classify *ClassificationStage,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		docs:        docs,
		obligations: obligations,
		storage:     storage,
		usage:       usage,
		structure:   structure,
		extract:     extract,
		classify:    classify,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.runPipeline(ctx, doc); err != nil {
		return uc.finalizeAfterError(ctx, doc.ID, err)
	}

	return uc.finalize(ctx, doc.ID, domain.StatusCompleted, "")
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) error {
	pdf, err := uc.readDocument(ctx, doc.StoragePath)
	if err != nil {
		return err
	}

	structure, err := uc.structure.Run(ctx, doc, pdf)
	if err != nil {
		return err
	}

	obligations, err := uc.extract.Run(ctx, doc.ID, structure.Sections)
	if err != nil {
		return err
	}

	// Persist before classification so a downstream failure can never lose
	// the extracted set.
	if err := uc.obligations.BulkInsert(ctx, obligations); err != nil {
		return fmt.Errorf("persist obligations: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := uc.classify.Run(ctx, doc.ID, obligations); err != nil {
		return err
	}

	return nil
}

func (uc *ProcessDocumentUseCase) readDocument(ctx context.Context, storagePath string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return data, nil
}

// finalizeAfterError decides the terminal status by what actually got
// persisted, not by where the pipeline stopped.
func (uc *ProcessDocumentUseCase) finalizeAfterError(ctx context.Context, documentID string, pipelineErr error) error {
	// The incoming ctx may already be cancelled; finalization must still run
	// so the document never stays in processing.
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	count, err := uc.obligations.CountByDocument(finalizeCtx, documentID)
	if err != nil {
		slog.Error("count_obligations_failed", "document_id", documentID, "error", err)
		count = 0
	}

	status := domain.StatusFailed
	message := pipelineErr.Error()
	if count > 0 {
		status = domain.StatusCompleted
		message = ""
		slog.Warn("pipeline_completed_partially",
			"document_id", documentID,
			"obligations", count,
			"error", pipelineErr,
		)
	}

	if err := uc.finalize(finalizeCtx, documentID, status, message); err != nil {
		return fmt.Errorf("%w; finalize: %v", pipelineErr, err)
	}
	return pipelineErr
}

func (uc *ProcessDocumentUseCase) finalize(ctx context.Context, documentID string, status domain.ProcessingStatus, errMessage string) error {
	count, err := uc.obligations.CountByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("count obligations: %w", err)
	}

	cost, err := uc.usage.SumCost(ctx, documentID)
	if err != nil {
		return fmt.Errorf("sum usage cost: %w", err)
	}

	if errMessage != "" {
		if err := uc.docs.UpdateStatus(ctx, documentID, status, errMessage); err != nil {
			return fmt.Errorf("set terminal status: %w", err)
		}
	}
	if err := uc.docs.FinishProcessing(ctx, documentID, status, count, cost); err != nil {
		return fmt.Errorf("finish processing: %w", err)
	}
	return nil
}
