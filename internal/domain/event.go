package domain

// SourceTypeBedrock is stamped on every published event.
const SourceTypeBedrock = "bedrock"

// DomainAdCopy tags events produced by the text-copy pipeline.
const DomainAdCopy = "ad-copy-generation"

// PublishEvent is the uniform payload sent to the downstream publisher.
type PublishEvent struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Entities   string `json:"entities"`
	Domain     string `json:"domain"`
	Prompt     string `json:"prompt"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
}
