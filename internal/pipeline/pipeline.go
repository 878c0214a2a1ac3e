// Package pipeline sequences label extraction, prompt building, model
// invocation, normalization, persistence and publishing for both generation
// flows.
package pipeline

import (
	"context"

	"adstudio/internal/artifact"
	"adstudio/internal/domain"
)

// TextGenerator produces a completion for a system instruction and one user turn.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
	ModelID() string
}

// ImageGenerator renders a model-specific request body into a base64 image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, body []byte) (string, error)
	ModelID() string
}

// Publisher hands an event to the downstream consumer identified by target.
type Publisher interface {
	Publish(ctx context.Context, target string, event domain.PublishEvent) error
}

// TargetResolver maps the running function onto the downstream target.
type TargetResolver interface {
	Target(invokedARN string) (string, error)
}

// ArtifactStore uploads image bytes and records generated images.
type ArtifactStore interface {
	UploadAndLink(ctx context.Context, data []byte, key, bucket string, exists bool) string
	SaveImage(ctx context.Context, in artifact.SaveImageInput) (domain.GeneratedAsset, error)
}

// Invocation describes the caller of a pipeline run.
type Invocation struct {
	// FunctionARN is the ARN of the running function; empty outside Lambda.
	FunctionARN string
}

const (
	capabilityText  = "text"
	capabilityImage = "image"

	pipelineAdCopy    = "adcopy"
	pipelineMoodboard = "moodboard"
)
