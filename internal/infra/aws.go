package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// NewAWSConfig resolves credentials through the default chain (environment,
// shared files, IAM role) pinned to the configured region.
func NewAWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	if cfg == nil {
		return aws.Config{}, fmt.Errorf("config is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
