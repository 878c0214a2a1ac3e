package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/labels"
	"adstudio/internal/metrics"
	"adstudio/internal/normalize"
	"adstudio/internal/prompt"
)

type AdCopyOptions struct {
	Generator TextGenerator
	Publisher Publisher
	Resolver  TargetResolver
	Logger    *infra.Logger
	Metrics   *metrics.Recorder
}

// AdCopyPipeline turns a vision-analysis result into tagline, font and pitch
// and publishes them. Any stage failure aborts the run.
type AdCopyPipeline struct {
	generator TextGenerator
	publisher Publisher
	resolver  TargetResolver
	logger    zerolog.Logger
	metrics   *metrics.Recorder
}

func NewAdCopyPipeline(opts AdCopyOptions) (*AdCopyPipeline, error) {
	if opts.Generator == nil || opts.Publisher == nil || opts.Resolver == nil {
		return nil, errors.New("pipeline: ad copy requires generator, publisher and resolver")
	}
	p := &AdCopyPipeline{
		generator: opts.Generator,
		publisher: opts.Publisher,
		resolver:  opts.Resolver,
		logger:    zerolog.Nop(),
		metrics:   opts.Metrics,
	}
	if opts.Logger != nil {
		p.logger = *opts.Logger
	}
	return p, nil
}

// Run processes one raw request and returns it unchanged as acknowledgment.
func (p *AdCopyPipeline) Run(ctx context.Context, inv Invocation, raw json.RawMessage) (json.RawMessage, error) {
	_, err := p.run(ctx, inv, raw)
	if err != nil {
		p.metrics.PipelineRun(pipelineAdCopy, metrics.OutcomeFailure)
		return nil, err
	}
	p.metrics.PipelineRun(pipelineAdCopy, metrics.OutcomeSuccess)
	return raw, nil
}

func (p *AdCopyPipeline) run(ctx context.Context, inv Invocation, raw json.RawMessage) (domain.PublishEvent, error) {
	req, err := domain.ParseAdCopyRequest(raw)
	if err != nil {
		return domain.PublishEvent{}, err
	}
	gc := domain.ParseGenerationContext(req.Context, req.RequestorID)

	set, err := labels.Extract(req.RekognitionResults)
	if err != nil {
		return domain.PublishEvent{}, err
	}

	instruction := prompt.BuildTextPrompt(gc.AdContext, set.Names())
	p.logger.Debug().Str("requestor_id", gc.RequestorID).Str("prompt", instruction).Msg("pipeline: generated prompt")

	started := time.Now()
	reply, err := p.generator.GenerateText(ctx, prompt.SystemInstruction, instruction)
	p.metrics.ObserveModel(capabilityText, p.generator.ModelID(), time.Since(started), err)
	if err != nil {
		return domain.PublishEvent{}, err
	}

	answer, err := normalize.ExtractJSONObject(reply)
	if err != nil {
		return domain.PublishEvent{}, err
	}
	answer, err = enrichAnswer(answer, set.DominantColors, instruction)
	if err != nil {
		return domain.PublishEvent{}, err
	}
	p.logger.Debug().Str("requestor_id", gc.RequestorID).RawJSON("answer", answer).Msg("pipeline: structured answer")

	event := domain.PublishEvent{
		ID:         gc.RequestorID,
		Content:    string(answer),
		Entities:   string(set.Entities),
		Domain:     domain.DomainAdCopy,
		Prompt:     gc.PromptTag(),
		SourceType: domain.SourceTypeBedrock,
		SourceID:   p.generator.ModelID(),
	}

	target, err := p.resolver.Target(inv.FunctionARN)
	if err != nil {
		return domain.PublishEvent{}, err
	}
	if err := p.publisher.Publish(ctx, target, event); err != nil {
		return domain.PublishEvent{}, err
	}
	p.logger.Info().Str("requestor_id", gc.RequestorID).Str("target", target).Msg("pipeline: ad copy published")
	return event, nil
}

// enrichAnswer appends domColors and originalPrompt, keeping the model's key order.
func enrichAnswer(answer json.RawMessage, colors []string, instruction string) (json.RawMessage, error) {
	out, err := sjson.SetBytes(answer, "domColors", colors)
	if err != nil {
		return nil, fmt.Errorf("pipeline: attach colors: %w: %w", domain.ErrResponseParse, err)
	}
	out, err = sjson.SetBytes(out, "originalPrompt", instruction)
	if err != nil {
		return nil, fmt.Errorf("pipeline: attach prompt: %w: %w", domain.ErrResponseParse, err)
	}
	return out, nil
}
