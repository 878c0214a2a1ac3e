package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const contentTypeJSON = "application/json"

// InvokeModelAPI is the slice of the runtime client the image path needs.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type ImageOptions struct {
	Client  InvokeModelAPI
	ModelID string
	Logger  *infra.Logger
}

type ImageClient struct {
	client  InvokeModelAPI
	modelID string
	logger  zerolog.Logger
}

func NewImageClient(opts ImageOptions) (*ImageClient, error) {
	if opts.Client == nil {
		return nil, errors.New("bedrock: invoke client is required")
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		return nil, errors.New("bedrock: image model id is required")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &ImageClient{client: opts.Client, modelID: modelID, logger: logger}, nil
}

func (c *ImageClient) ModelID() string { return c.modelID }

// imageResponse covers both Stable Diffusion (finish_reasons) and Titan
// (error) envelopes.
type imageResponse struct {
	Images        []string  `json:"images"`
	FinishReasons []*string `json:"finish_reasons"`
	Error         *string   `json:"error"`
}

// GenerateImage sends a pre-rendered request body and returns the first image
// as base64.
func (c *ImageClient) GenerateImage(ctx context.Context, body []byte) (string, error) {
	started := time.Now()
	out, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		Accept:      aws.String(contentTypeJSON),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return "", classify("invoke model", err)
	}
	c.logger.Debug().
		Str("model_id", c.modelID).
		Dur("latency", time.Since(started)).
		Int("bytes", len(out.Body)).
		Msg("bedrock: invoke model completed")

	var resp imageResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: decode image response: %w: %w", domain.ErrBackendResponse, err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return "", fmt.Errorf("bedrock: model error %q: %w", *resp.Error, domain.ErrBackendResponse)
	}
	for _, reason := range resp.FinishReasons {
		if reason != nil && *reason != "" {
			return "", fmt.Errorf("bedrock: generation filtered (%s): %w", *reason, domain.ErrBackendResponse)
		}
	}
	if len(resp.Images) == 0 || resp.Images[0] == "" {
		return "", fmt.Errorf("bedrock: response carried no images: %w", domain.ErrBackendResponse)
	}
	return resp.Images[0], nil
}
