// Command moodboard is the Lambda entry point for moodboard image generation.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"adstudio/internal/bootstrap"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "moodboard")

	components, err := bootstrap.Build(context.Background(), cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipelines")
	}
	defer components.Close()

	lambda.Start(func(ctx context.Context, raw json.RawMessage) (domain.ImageResponse, error) {
		var inv pipeline.Invocation
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			inv.FunctionARN = lc.InvokedFunctionArn
		}
		return components.Images.Run(ctx, inv, raw)
	})
}
