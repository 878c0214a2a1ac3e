// Command adcopy is the Lambda entry point for tagline, font and pitch
// generation.
package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"adstudio/internal/bootstrap"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "adcopy")

	components, err := bootstrap.Build(context.Background(), cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipelines")
	}
	defer components.Close()

	lambda.Start(func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		var inv pipeline.Invocation
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			inv.FunctionARN = lc.InvokedFunctionArn
		}
		return components.AdCopy.Run(ctx, inv, raw)
	})
}

