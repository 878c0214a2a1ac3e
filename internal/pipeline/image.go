package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"adstudio/internal/artifact"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/metrics"
	"adstudio/internal/normalize"
	"adstudio/internal/prompt"
	"adstudio/internal/storage"
)

const (
	partTypeGoogleImages = "google_images"
	partTypeImagery      = "imagery"
	finishReasonSuccess  = "SUCCESS"
)

type ImageOptions struct {
	Generator ImageGenerator
	Store     ArtifactStore
	Publisher Publisher
	Resolver  TargetResolver
	Bucket    string
	Schema    prompt.Schema
	Logger    *infra.Logger
	Metrics   *metrics.Recorder
}

// ImagePipeline generates one image per term, records it and publishes it.
type ImagePipeline struct {
	generator ImageGenerator
	store     ArtifactStore
	publisher Publisher
	resolver  TargetResolver
	bucket    string
	schema    prompt.Schema
	logger    zerolog.Logger
	metrics   *metrics.Recorder
}

func NewImagePipeline(opts ImageOptions) (*ImagePipeline, error) {
	if opts.Generator == nil || opts.Store == nil || opts.Publisher == nil || opts.Resolver == nil {
		return nil, errors.New("pipeline: image requires generator, store, publisher and resolver")
	}
	p := &ImagePipeline{
		generator: opts.Generator,
		store:     opts.Store,
		publisher: opts.Publisher,
		resolver:  opts.Resolver,
		bucket:    opts.Bucket,
		schema:    opts.Schema,
		logger:    zerolog.Nop(),
		metrics:   opts.Metrics,
	}
	if opts.Logger != nil {
		p.logger = *opts.Logger
	}
	return p, nil
}

// Run processes the terms in order. Generation failures abort with an error.
// The first persistence or publish failure ends the run with a 400 response
// and later terms are not attempted. On success only the last event is echoed.
func (p *ImagePipeline) Run(ctx context.Context, inv Invocation, raw json.RawMessage) (domain.ImageResponse, error) {
	req, err := domain.ParseImageRequest(raw)
	if err != nil {
		p.metrics.PipelineRun(pipelineMoodboard, metrics.OutcomeFailure)
		return domain.ImageResponse{}, err
	}
	resp, err := p.RunRequest(ctx, inv, req)
	if err != nil || resp.StatusCode != http.StatusOK {
		p.metrics.PipelineRun(pipelineMoodboard, metrics.OutcomeFailure)
	} else {
		p.metrics.PipelineRun(pipelineMoodboard, metrics.OutcomeSuccess)
	}
	return resp, err
}

// RunRequest is Run for an already validated request.
func (p *ImagePipeline) RunRequest(ctx context.Context, inv Invocation, req domain.ImageRequest) (domain.ImageResponse, error) {
	target, err := p.resolver.Target(inv.FunctionARN)
	if err != nil {
		return domain.ImageResponse{}, err
	}
	entities, err := json.Marshal(req.Terms)
	if err != nil {
		return domain.ImageResponse{}, fmt.Errorf("pipeline: encode terms: %w", err)
	}

	partType := req.Type
	var last domain.PublishEvent
	for _, term := range req.Terms {
		log := p.logger.With().Str("moodboard_id", req.ID).Str("term", term).Logger()

		body, data, err := p.generate(ctx, req, term)
		if err != nil {
			p.metrics.Term(metrics.OutcomeFailure)
			return domain.ImageResponse{}, err
		}

		key := storage.ObjectKey(term, req.Spec, req.ID)
		url := p.store.UploadAndLink(ctx, data, key, p.bucket, false)
		if url == "" {
			log.Warn().Str("key", key).Msg("pipeline: image stored without link")
		}

		result := domain.ImageResult{
			Thumbnail:    url,
			PartType:     partType,
			Original:     url,
			Prompt:       term,
			FullPrompt:   domain.FullPrompt{TextPrompts: []domain.TextPrompt{{Text: term}}},
			FinishReason: finishReasonSuccess,
		}

		asset, err := p.store.SaveImage(ctx, artifact.SaveImageInput{
			MoodboardID: req.ID,
			Prompt:      term,
			FullPrompt:  string(body),
			Original:    url,
			Thumbnail:   url,
			PartType:    partType,
			Bucket:      p.bucket,
			Key:         key,
			AssetType:   req.AssetType,
			Style:       req.StylePreset,
		})
		if err != nil {
			log.Error().Err(err).Msg("pipeline: failed to generate image")
			p.metrics.Term(metrics.OutcomeFailure)
			return domain.ImageFailed(), nil
		}
		result.AssetPartID = asset.ID
		result.AssetID = req.ID

		// The rewrite sticks for the remaining terms.
		if partType == partTypeGoogleImages {
			partType = partTypeImagery
		}

		content, err := json.Marshal(domain.ImageContent{Type: partType, Results: []domain.ImageResult{result}})
		if err != nil {
			log.Error().Err(err).Msg("pipeline: failed to generate image")
			p.metrics.Term(metrics.OutcomeFailure)
			return domain.ImageFailed(), nil
		}
		event := domain.PublishEvent{
			ID:         req.ID,
			Content:    string(content),
			Entities:   string(entities),
			Domain:     req.AssetType,
			Prompt:     term,
			SourceType: domain.SourceTypeBedrock,
			SourceID:   p.generator.ModelID(),
		}
		if err := p.publisher.Publish(ctx, target, event); err != nil {
			log.Error().Err(err).Msg("pipeline: failed to generate image")
			p.metrics.Term(metrics.OutcomeFailure)
			return domain.ImageFailed(), nil
		}

		p.metrics.Term(metrics.OutcomeSuccess)
		log.Info().Str("asset_part_id", asset.ID).Msg("pipeline: image published")
		last = event
	}
	return domain.ImageSucceeded(last), nil
}

// generate returns the request body sent to the model and the decoded image.
func (p *ImagePipeline) generate(ctx context.Context, req domain.ImageRequest, term string) ([]byte, []byte, error) {
	ip := prompt.BuildImagePrompt(req.AssetType, term, req.StylePreset, req.ColorScheme, p.schema)
	body, err := ip.Body()
	if err != nil {
		return nil, nil, err
	}

	started := time.Now()
	encoded, err := p.generator.GenerateImage(ctx, body)
	p.metrics.ObserveModel(capabilityImage, p.generator.ModelID(), time.Since(started), err)
	if err != nil {
		return nil, nil, err
	}

	data, err := normalize.DecodeImage(encoded)
	if err != nil {
		return nil, nil, err
	}
	return body, data, nil
}
