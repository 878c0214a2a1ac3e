package domain

// GeneratedAsset is the moodboard history record written once per generated
// image. ID is minted per write and never derived from the request.
type GeneratedAsset struct {
	ID            string `json:"id" dynamodbav:"id"`
	MoodboardID   string `json:"moodboard_id" dynamodbav:"moodboard_id"`
	FullPrompt    string `json:"fullprompt" dynamodbav:"fullprompt"`
	Prompt        string `json:"prompt" dynamodbav:"prompt"`
	GeneratedDate string `json:"generated_date" dynamodbav:"generated_date"`
	Base64        string `json:"base64" dynamodbav:"base64"`
	Original      string `json:"original" dynamodbav:"original"`
	Thumbnail     string `json:"thumbnail" dynamodbav:"thumbnail"`
	PartType      string `json:"part_type" dynamodbav:"part_type"`
	Bucket        string `json:"bucket" dynamodbav:"bucket"`
	Key           string `json:"key" dynamodbav:"key"`
	AssetType     string `json:"assetType" dynamodbav:"assetType"`
	Style         string `json:"style" dynamodbav:"style"`
}

// ImageResult is the per-term entry of an image event's content.
type ImageResult struct {
	Base64       string     `json:"base64"`
	Thumbnail    string     `json:"thumbnail"`
	PartType     string     `json:"partType"`
	Original     string     `json:"original"`
	Prompt       string     `json:"prompt"`
	FullPrompt   FullPrompt `json:"fullprompt"`
	FinishReason string     `json:"finishReason"`
	AssetPartID  string     `json:"assetPartId,omitempty"`
	AssetID      string     `json:"assetId,omitempty"`
}

// FullPrompt mirrors the text_prompts envelope consumers already parse.
type FullPrompt struct {
	TextPrompts []TextPrompt `json:"text_prompts"`
}

type TextPrompt struct {
	Text string `json:"text"`
}

// ImageContent is JSON-encoded into PublishEvent.Content by the image pipeline.
type ImageContent struct {
	Type    string        `json:"type"`
	Results []ImageResult `json:"results"`
}

// AdCopy is the typed view of a normalized text-model answer. Missing keys
// decode to empty strings.
type AdCopy struct {
	Tagline string `json:"tagline"`
	Font    string `json:"font"`
	Pitch   string `json:"pitch"`
}
