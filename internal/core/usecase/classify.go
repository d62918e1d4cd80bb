package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/jsonrepair"
)

type ClassificationConfig struct {
	Model           string
	MaxOutputTokens int
	BatchSize       int
	BatchDelay      time.Duration
}

// ClassificationStage runs three concurrent completion calls per obligation
// (type, stakeholders, implementation) and merges the results onto the
// persisted row. A failed or unparseable dimension falls back to its safe
// default and never fails the batch.
type ClassificationStage struct {
	obligations ports.ObligationRepository
	completions ports.CompletionClient
	usage       ports.UsageLog
	limiter     *rate.Limiter
	cfg         ClassificationConfig
}

func NewClassificationStage(
	obligations ports.ObligationRepository,
	completions ports.CompletionClient,
	usage ports.UsageLog,
	cfg ClassificationConfig,
) *ClassificationStage {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	var limiter *rate.Limiter
	if cfg.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.BatchDelay), 1)
	}
	return &ClassificationStage{
		obligations: obligations,
		completions: completions,
		usage:       usage,
		limiter:     limiter,
		cfg:         cfg,
	}
}

func (s *ClassificationStage) Run(ctx context.Context, docID string, obligations []domain.Obligation) error {
	for start := 0; start < len(obligations); start += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		end := start + s.cfg.BatchSize
		if end > len(obligations) {
			end = len(obligations)
		}

		var wg sync.WaitGroup
		for _, ob := range obligations[start:end] {
			wg.Add(1)
			go func(ob domain.Obligation) {
				defer wg.Done()
				s.classifyOne(ctx, docID, ob)
			}(ob)
		}
		wg.Wait()
	}
	return nil
}

func (s *ClassificationStage) classifyOne(ctx context.Context, docID string, ob domain.Obligation) {
	var (
		wg   sync.WaitGroup
		cls  domain.ClassificationResult
		st   domain.StakeholderResult
		impl domain.ImplementationResult
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		cls = s.classifyType(ctx, docID, ob)
	}()
	go func() {
		defer wg.Done()
		st = s.classifyStakeholders(ctx, docID, ob)
	}()
	go func() {
		defer wg.Done()
		impl = s.classifyImplementation(ctx, docID, ob)
	}()
	wg.Wait()

	if err := s.obligations.SaveClassification(ctx, ob.ID, cls, st, impl); err != nil {
		slog.Error("save_classification_failed", "obligation_id", ob.ID, "error", err)
	}
}

func (s *ClassificationStage) classifyType(ctx context.Context, docID string, ob domain.Obligation) domain.ClassificationResult {
	var result domain.ClassificationResult
	if err := s.callDimension(ctx, docID, "type", buildClassificationPrompt(ob), &result); err != nil {
		slog.Warn("classification_dimension_defaulted", "obligation_id", ob.ID, "dimension", "type", "error", err)
		return domain.DefaultClassification()
	}
	return result.Normalize()
}

func (s *ClassificationStage) classifyStakeholders(ctx context.Context, docID string, ob domain.Obligation) domain.StakeholderResult {
	var result domain.StakeholderResult
	if err := s.callDimension(ctx, docID, "stakeholders", buildStakeholderPrompt(ob), &result); err != nil {
		slog.Warn("classification_dimension_defaulted", "obligation_id", ob.ID, "dimension", "stakeholders", "error", err)
		return domain.DefaultStakeholders()
	}
	return result.Normalize()
}

func (s *ClassificationStage) classifyImplementation(ctx context.Context, docID string, ob domain.Obligation) domain.ImplementationResult {
	var result domain.ImplementationResult
	if err := s.callDimension(ctx, docID, "implementation", buildImplementationPrompt(ob), &result); err != nil {
		slog.Warn("classification_dimension_defaulted", "obligation_id", ob.ID, "dimension", "implementation", "error", err)
		return domain.DefaultImplementation()
	}
	return result.Normalize()
}

func (s *ClassificationStage) callDimension(ctx context.Context, docID, dimension, prompt string, out any) error {
	started := time.Now()
	res, err := s.completions.Complete(ctx, domain.CompletionRequest{
		Prompt:          prompt,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		Model:           s.cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("%s call: %w", dimension, err)
	}
	recordCompletion(ctx, s.usage, docID, domain.StageClassification, s.cfg.Model, res, started)

	repaired := jsonrepair.RepairObject(res.Text)
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return domain.WrapError(domain.ErrMalformedOutput, dimension+" output", err)
	}
	return nil
}
