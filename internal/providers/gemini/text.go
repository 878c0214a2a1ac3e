// Package gemini is an alternative ad-copy backend built on the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const defaultModel = "gemini-2.0-flash"

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int32
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// TextClient satisfies the same contract as the Bedrock text client.
type TextClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	logger    zerolog.Logger
}

func NewTextClient(ctx context.Context, opts Options) (*TextClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &TextClient{client: client, model: model, maxTokens: maxTokens, logger: logger}, nil
}

func (c *TextClient) ModelID() string { return c.model }

func (c *TextClient) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: c.maxTokens}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	started := time.Now()
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", classify(err)
	}
	c.logger.Debug().Str("model_id", c.model).Dur("latency", time.Since(started)).Msg("gemini: generate completed")

	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty completion: %w", domain.ErrBackendResponse)
	}
	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("gemini: generate: %w: %w", domain.ErrBackendUnavailable, err)
		}
		return fmt.Errorf("gemini: generate: %w: %w", domain.ErrBackendResponse, err)
	}
	return fmt.Errorf("gemini: generate: %w: %w", domain.ErrBackendUnavailable, err)
}
