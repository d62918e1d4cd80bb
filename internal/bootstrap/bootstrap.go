package bootstrap

import (
	"context"
	"fmt"

	"github.com/oblicore/oblicore/internal/config"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/core/usecase"
	"github.com/oblicore/oblicore/internal/infrastructure/chunking"
	"github.com/oblicore/oblicore/internal/infrastructure/docgen/excel"
	"github.com/oblicore/oblicore/internal/infrastructure/llm/anthropic"
	"github.com/oblicore/oblicore/internal/infrastructure/pdfinfo"
	"github.com/oblicore/oblicore/internal/infrastructure/queue/nats"
	"github.com/oblicore/oblicore/internal/infrastructure/repository/postgres"
	"github.com/oblicore/oblicore/internal/infrastructure/resilience"
	"github.com/oblicore/oblicore/internal/infrastructure/storage/localfs"
	"github.com/oblicore/oblicore/internal/observability/metrics"
)

// App wires the full dependency graph once; both binaries pick the pieces
// they need from it.
type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Docs        ports.DocumentRepository
	Obligations ports.ObligationRepository

	IngestUC       ports.DocumentIngestor
	ProcessUC      ports.DocumentProcessor
	DatesUC        ports.DateExtractor
	DeliverablesUC ports.DeliverableGenerator
	CacheAdminUC   ports.CacheAdmin

	HTTPMetrics   *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	obligations := postgres.NewObligationRepository(db)
	cache := postgres.NewCacheRepository(db)
	usage := postgres.NewUsageRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryBaseBackoff: cfg.RetryBaseBackoff,
		RetryBackoffCap:  cfg.RetryBackoffCap,

		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      cfg.BreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenMaxCalls),
	})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	workerMetrics := metrics.NewWorkerMetrics(service)
	httpMetrics := metrics.NewHTTPServerMetrics(service)
	instrumentedUsage := metrics.NewInstrumentedUsageLog(usage, workerMetrics, service)

	completions := anthropic.New(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, executor)
	chunker := chunking.NewSplitter(cfg.ChunkMaxChars)
	pages := pdfinfo.NewCounter()
	renderer := excel.NewRenderer()

	structure := usecase.NewStructuringStage(cache, completions, instrumentedUsage, docs, usecase.StructuringConfig{
		Model:           cfg.ModelFast,
		MaxOutputTokens: cfg.ParseMaxOutputTokens,
	})
	extract := usecase.NewExtractionStage(cache, completions, instrumentedUsage, chunker, usecase.ExtractionConfig{
		Model:           cfg.ModelFast,
		MaxOutputTokens: cfg.ExtractMaxOutputTokens,
		MinSectionChars: cfg.MinSectionChars,
		DedupThreshold:  cfg.DedupThreshold,
	})
	classify := usecase.NewClassificationStage(obligations, completions, instrumentedUsage, usecase.ClassificationConfig{
		Model:           cfg.ModelQuality,
		MaxOutputTokens: cfg.ClassifyMaxOutputTokens,
		BatchSize:       cfg.ClassifyBatchSize,
		BatchDelay:      cfg.ClassifyBatchDelay,
	})

	ingestUC := usecase.NewUploadDocumentUseCase(docs, storage, queue, pages)
	processUC := usecase.NewProcessDocumentUseCase(docs, obligations, storage, instrumentedUsage, structure, extract, classify)
	datesUC := usecase.NewExtractDatesUseCase(docs, cache, completions, instrumentedUsage, storage, usecase.DateExtractionConfig{
		Model:           cfg.ModelQuality,
		MaxOutputTokens: cfg.DatesMaxOutputTokens,
	})
	deliverablesUC := usecase.NewDeliverableUseCase(docs, obligations, cache, completions, instrumentedUsage, renderer, usecase.DeliverableConfig{
		Model:           cfg.ModelQuality,
		MaxOutputTokens: cfg.DocgenMaxOutputTokens,
	})
	cacheAdminUC := usecase.NewClearCacheUseCase(cache, obligations)

	return &App{
		Config: cfg,

		Queue:       queue,
		Docs:        docs,
		Obligations: obligations,

		IngestUC:       ingestUC,
		ProcessUC:      processUC,
		DatesUC:        datesUC,
		DeliverablesUC: deliverablesUC,
		CacheAdminUC:   cacheAdminUC,

		HTTPMetrics:   httpMetrics,
		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
