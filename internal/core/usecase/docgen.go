package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
	"github.com/oblicore/oblicore/internal/jsonrepair"
)

type DeliverableConfig struct {
	Model           string
	MaxOutputTokens int
}

// DeliverableUseCase builds RTM and functional-spec trees from a document's
// classified obligations and renders them to workbooks. The JSON tree is what
// gets cached; a cache hit regenerates the workbook at zero completion cost.
type DeliverableUseCase struct {
	docs        ports.DocumentRepository
	obligations ports.ObligationRepository
	cache       ports.ProcessingCache
	completions ports.CompletionClient
	usage       ports.UsageLog
	renderer    ports.DeliverableRenderer
	cfg         DeliverableConfig
}

func NewDeliverableUseCase(
	docs ports.DocumentRepository,
	obligations ports.ObligationRepository,
	cache ports.ProcessingCache,
	completions ports.CompletionClient,
	usage ports.UsageLog,
	renderer ports.DeliverableRenderer,
	cfg DeliverableConfig,
) *DeliverableUseCase {
	return &DeliverableUseCase{
		docs:        docs,
		obligations: obligations,
		cache:       cache,
		completions: completions,
		usage:       usage,
		renderer:    renderer,
		cfg:         cfg,
	}
}

func (uc *DeliverableUseCase) GenerateRTM(ctx context.Context, documentID string) ([]byte, error) {
	var rtm domain.RTM
	err := uc.generateTree(ctx, documentID, domain.CacheOpRTM, domain.StageRTM, buildRTMPrompt, &rtm)
	if err != nil {
		return nil, err
	}
	data, err := uc.renderer.RenderRTM(rtm)
	if err != nil {
		return nil, fmt.Errorf("render rtm: %w", err)
	}
	return data, nil
}

func (uc *DeliverableUseCase) GenerateFunctionalSpec(ctx context.Context, documentID string) ([]byte, error) {
	var spec domain.FunctionalSpec
	err := uc.generateTree(ctx, documentID, domain.CacheOpFuncSpec, domain.StageFuncSpec, buildFuncSpecPrompt, &spec)
	if err != nil {
		return nil, err
	}
	data, err := uc.renderer.RenderFunctionalSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("render functional spec: %w", err)
	}
	return data, nil
}

func (uc *DeliverableUseCase) generateTree(
	ctx context.Context,
	documentID, operation, stage string,
	buildPrompt func(*domain.Document, []domain.Obligation) string,
	out any,
) error {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	key := domain.CacheKey(operation, doc.ID)
	if output, ok := cacheLookup(ctx, uc.cache, uc.usage, doc.ID, stage, key); ok {
		if err := json.Unmarshal(output, out); err == nil {
			return nil
		}
		if err := uc.cache.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("invalidate bad deliverable cache: %w", err)
		}
	}

	obligations, err := uc.obligations.ListByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("list obligations: %w", err)
	}
	if len(obligations) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "generate deliverable", fmt.Errorf("document %s has no obligations", doc.ID))
	}

	started := time.Now()
	res, err := uc.completions.Complete(ctx, domain.CompletionRequest{
		Prompt:          buildPrompt(doc, obligations),
		MaxOutputTokens: uc.cfg.MaxOutputTokens,
		Model:           uc.cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("generate deliverable: %w", err)
	}
	recordCompletion(ctx, uc.usage, doc.ID, stage, uc.cfg.Model, res, started)

	repaired := jsonrepair.RepairObject(res.Text)
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return domain.WrapError(domain.ErrMalformedOutput, "parse deliverable output", err)
	}

	cacheStore(ctx, uc.cache, key, operation, uc.cfg.Model, json.RawMessage(repaired), res)
	return nil
}
