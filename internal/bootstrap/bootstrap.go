// Package bootstrap assembles the pipelines and their backends from Config.
// The HTTP server and both Lambda entry points share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"adstudio/internal/adapter/repo"
	"adstudio/internal/artifact"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/metrics"
	"adstudio/internal/pipeline"
	"adstudio/internal/providers/bedrock"
	"adstudio/internal/providers/gemini"
	"adstudio/internal/publish"
	"adstudio/internal/storage"
)

// Components is everything an entry point needs. Close releases pooled
// connections.
type Components struct {
	AdCopy  *pipeline.AdCopyPipeline
	Images  *pipeline.ImagePipeline
	History domain.MoodboardRepository
	// Library is nil when no assets bucket is configured.
	Library *storage.Library

	closers []func()
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build wires the configured backends. rec may be nil.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger, rec *metrics.Recorder) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	awsCfg, err := infra.NewAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Components{}
	fail := func(err error) (*Components, error) {
		c.Close()
		return nil, err
	}

	runtime := bedrockruntime.NewFromConfig(awsCfg)
	text, err := newTextGenerator(ctx, cfg, runtime, logger)
	if err != nil {
		return fail(err)
	}
	imageLogger := logger.With().Str("component", "bedrock-image").Logger()
	images, err := bedrock.NewImageClient(bedrock.ImageOptions{Client: runtime, ModelID: cfg.ImageModelID, Logger: &imageLogger})
	if err != nil {
		return fail(err)
	}

	publisher, err := newPublisher(cfg, awsCfg, c)
	if err != nil {
		return fail(err)
	}
	resolver := publish.Resolver{FunctionName: cfg.PublishFunctionName, Region: cfg.AWSRegion}

	history, err := newHistory(ctx, cfg, awsCfg, logger, c)
	if err != nil {
		return fail(err)
	}
	c.History = history

	var s3Store *storage.S3Store
	if cfg.BlobBackend == infra.BlobS3 || cfg.AssetsBucket != "" {
		s3Store = storage.NewS3Store(s3.NewFromConfig(awsCfg))
	}
	var blobs artifact.BlobStore = s3Store
	if cfg.BlobBackend == infra.BlobFilesystem {
		fs, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return fail(err)
		}
		blobs = fs
	}
	if cfg.AssetsBucket != "" {
		c.Library = storage.NewLibrary(s3Store, cfg.AssetsBucket)
	}

	artifactLogger := logger.With().Str("component", "artifact").Logger()
	store, err := artifact.NewStore(artifact.Options{Blobs: blobs, Repository: history, Logger: &artifactLogger})
	if err != nil {
		return fail(err)
	}

	pipelineLogger := logger.With().Str("component", "pipeline").Logger()
	c.AdCopy, err = pipeline.NewAdCopyPipeline(pipeline.AdCopyOptions{
		Generator: text,
		Publisher: publisher,
		Resolver:  resolver,
		Logger:    &pipelineLogger,
		Metrics:   rec,
	})
	if err != nil {
		return fail(err)
	}
	c.Images, err = pipeline.NewImagePipeline(pipeline.ImageOptions{
		Generator: images,
		Store:     store,
		Publisher: publisher,
		Resolver:  resolver,
		Bucket:    cfg.ImageBucket,
		Schema:    cfg.ImageSchema,
		Logger:    &pipelineLogger,
		Metrics:   rec,
	})
	if err != nil {
		return fail(err)
	}
	return c, nil
}

func newTextGenerator(ctx context.Context, cfg *infra.Config, runtime *bedrockruntime.Client, logger infra.Logger) (pipeline.TextGenerator, error) {
	textLogger := logger.With().Str("component", cfg.TextProvider+"-text").Logger()
	switch cfg.TextProvider {
	case infra.TextProviderGemini:
		return gemini.NewTextClient(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Logger:  &textLogger,
		})
	case infra.TextProviderBedrock:
		return bedrock.NewTextClient(bedrock.TextOptions{Client: runtime, ModelID: cfg.TextModelID, Logger: &textLogger})
	default:
		return nil, fmt.Errorf("bootstrap: unknown text provider %q", cfg.TextProvider)
	}
}

func newPublisher(cfg *infra.Config, awsCfg aws.Config, c *Components) (pipeline.Publisher, error) {
	switch cfg.PublishBackend {
	case infra.PublishRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		c.closers = append(c.closers, func() { _ = client.Close() })
		return publish.NewRedisPublisher(client, cfg.RedisChannel)
	case infra.PublishLambda:
		return publish.NewLambdaPublisher(awslambda.NewFromConfig(awsCfg))
	default:
		return nil, fmt.Errorf("bootstrap: unknown publish backend %q", cfg.PublishBackend)
	}
}

func newHistory(ctx context.Context, cfg *infra.Config, awsCfg aws.Config, logger infra.Logger, c *Components) (domain.MoodboardRepository, error) {
	switch cfg.HistoryBackend {
	case infra.HistoryPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		runner := infra.NewSQLRunner(pool, logger.With().Str("component", "sql").Logger())
		pg := repo.NewMoodboardRepositoryPG(runner, cfg.MoodboardTable)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	case infra.HistoryDynamoDB:
		return repo.NewMoodboardRepositoryDynamo(dynamodb.NewFromConfig(awsCfg), cfg.MoodboardTable, cfg.MoodboardIndex), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown history backend %q", cfg.HistoryBackend)
	}
}
