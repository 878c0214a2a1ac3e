package prompt

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
)

// Schema selects which request body the image model receives. It is resolved
// once when configuration loads.
type Schema int

const (
	// SchemaLegacy is the free-form text-to-image body (Stable Diffusion 3).
	SchemaLegacy Schema = iota
	// SchemaStructured is the task-typed TEXT_IMAGE body (Titan Image Generator).
	SchemaStructured
	// SchemaColorGuided is the task-typed COLOR_GUIDED_GENERATION body. It
	// degrades to SchemaStructured for requests without colors.
	SchemaColorGuided
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaStructured:
		return "structured"
	case SchemaColorGuided:
		return "color-guided"
	default:
		return fmt.Sprintf("schema(%d)", int(s))
	}
}

// ResolveSchema maps the model-override setting to a schema variant.
func ResolveSchema(modelOverride string, colorGuided bool) Schema {
	if strings.TrimSpace(modelOverride) == "" {
		return SchemaLegacy
	}
	if colorGuided {
		return SchemaColorGuided
	}
	return SchemaStructured
}

// AssetTypeFeatureImage is the only asset type rendered in portrait.
const AssetTypeFeatureImage = "feature-image"

const (
	legacySeedMax     = 4294967295
	structuredSeedMax = 214783647
	maxGuideColors    = 10
)

// negativeTerms are the visual artefacts the structured schemas steer away from.
var negativeTerms = []string{
	"ugly", "duplicate", "morbid", "mutilated", "out of frame",
	"extra fingers", "mutated hands", "poorly drawn hands", "poorly drawn face",
	"mutation", "deformed", "blurry", "bad anatomy", "bad proportions",
	"extra limbs", "cloned face", "disfigured", "gross proportions",
	"malformed limbs", "missing arms", "missing legs", "extra arms",
	"extra legs", "fused fingers", "too many fingers", "long neck", "nude",
}

// NegativeText is the comma-joined negative vocabulary.
var NegativeText = strings.Join(negativeTerms, ", ")

// Dimensions returns the fixed output size for an asset type.
func Dimensions(assetType string) (width, height int) {
	if assetType == AssetTypeFeatureImage {
		return 768, 1152
	}
	return 768, 768
}

// AspectRatio is the legacy-schema counterpart of Dimensions.
func AspectRatio(assetType string) string {
	if assetType == AssetTypeFeatureImage {
		return "4:5"
	}
	return "1:1"
}

// ImagePrompt is a rendered image generation request.
type ImagePrompt struct {
	Schema      Schema
	Positive    string
	Negative    string
	Width       int
	Height      int
	AspectRatio string
	Seed        int64
	Colors      []string
}

// BuildImagePrompt renders the request for one term. Seeds are drawn
// independently per call.
func BuildImagePrompt(assetType, term, stylePreset string, colors []string, schema Schema) ImagePrompt {
	width, height := Dimensions(assetType)
	if schema == SchemaLegacy {
		return ImagePrompt{
			Schema:      SchemaLegacy,
			Positive:    fmt.Sprintf("%s-style image of %s", stylePreset, term),
			Width:       width,
			Height:      height,
			AspectRatio: AspectRatio(assetType),
			Seed:        int64(rand.Uint32()),
		}
	}

	p := ImagePrompt{
		Schema:   SchemaStructured,
		Positive: term,
		Negative: NegativeText,
		Width:    width,
		Height:   height,
		Seed:     rand.Int64N(structuredSeedMax + 1),
	}
	if schema == SchemaColorGuided && len(colors) > 0 {
		if len(colors) > maxGuideColors {
			colors = colors[:maxGuideColors]
		}
		p.Schema = SchemaColorGuided
		p.Colors = append([]string(nil), colors...)
	}
	return p
}

type legacyBody struct {
	Prompt      string `json:"prompt"`
	Mode        string `json:"mode"`
	AspectRatio string `json:"aspect_ratio"`
	Seed        int64  `json:"seed"`
}

type taskTextParams struct {
	Text         string   `json:"text"`
	NegativeText string   `json:"negativeText"`
	Colors       []string `json:"colors,omitempty"`
}

type taskGenerationConfig struct {
	NumberOfImages int   `json:"numberOfImages"`
	Seed           int64 `json:"seed"`
	Width          int   `json:"width"`
	Height         int   `json:"height"`
}

type taskBody struct {
	TaskType                    string               `json:"taskType"`
	TextToImageParams           *taskTextParams      `json:"textToImageParams,omitempty"`
	ColorGuidedGenerationParams *taskTextParams      `json:"colorGuidedGenerationParams,omitempty"`
	ImageGenerationConfig       taskGenerationConfig `json:"imageGenerationConfig"`
}

// Body encodes the model-specific JSON request.
func (p ImagePrompt) Body() ([]byte, error) {
	switch p.Schema {
	case SchemaLegacy:
		return json.Marshal(legacyBody{
			Prompt:      p.Positive,
			Mode:        "text-to-image",
			AspectRatio: p.AspectRatio,
			Seed:        p.Seed,
		})
	case SchemaStructured, SchemaColorGuided:
		body := taskBody{
			ImageGenerationConfig: taskGenerationConfig{
				NumberOfImages: 1,
				Seed:           p.Seed,
				Width:          p.Width,
				Height:         p.Height,
			},
		}
		params := &taskTextParams{Text: p.Positive, NegativeText: p.Negative}
		if p.Schema == SchemaColorGuided {
			params.Colors = p.Colors
			body.TaskType = "COLOR_GUIDED_GENERATION"
			body.ColorGuidedGenerationParams = params
		} else {
			body.TaskType = "TEXT_IMAGE"
			body.TextToImageParams = params
		}
		return json.Marshal(body)
	default:
		return nil, fmt.Errorf("prompt: unsupported schema %s", p.Schema)
	}
}
