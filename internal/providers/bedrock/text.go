// Package bedrock invokes text and image foundation models through the
// Bedrock runtime API.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// DefaultMaxTokens caps ad-copy completions.
const DefaultMaxTokens int32 = 2048

// ConverseAPI is the slice of the runtime client the text path needs.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type TextOptions struct {
	Client    ConverseAPI
	ModelID   string
	MaxTokens int32
	Logger    *infra.Logger
}

// TextClient sends one user turn plus a system instruction and returns the
// first text block of the reply.
type TextClient struct {
	client    ConverseAPI
	modelID   string
	maxTokens int32
	logger    zerolog.Logger
}

func NewTextClient(opts TextOptions) (*TextClient, error) {
	if opts.Client == nil {
		return nil, errors.New("bedrock: converse client is required")
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		return nil, errors.New("bedrock: text model id is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &TextClient{client: opts.Client, modelID: modelID, maxTokens: maxTokens, logger: logger}, nil
}

func (c *TextClient) ModelID() string { return c.modelID }

func (c *TextClient) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{MaxTokens: aws.Int32(c.maxTokens)},
	}
	if system != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
	}

	started := time.Now()
	out, err := c.client.Converse(ctx, input)
	if err != nil {
		return "", classify("converse", err)
	}
	c.logger.Debug().
		Str("model_id", c.modelID).
		Dur("latency", time.Since(started)).
		Str("stop_reason", string(out.StopReason)).
		Msg("bedrock: converse completed")

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock: converse returned no message: %w", domain.ErrBackendResponse)
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", fmt.Errorf("bedrock: converse reply has no text block: %w", domain.ErrBackendResponse)
}
