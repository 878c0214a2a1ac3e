package domain

import "strings"

// DefaultImageStyle applies when the inbound context carries no style suffix.
const DefaultImageStyle = "photographic"

// GenerationContext is the parsed form of the inbound "context" field.
type GenerationContext struct {
	AdContext   string
	ImageStyle  string
	RequestorID string
}

// ParseGenerationContext splits raw on the first underscore only. Without a
// separator the whole input is the ad context and the style is photographic.
func ParseGenerationContext(raw, requestorID string) GenerationContext {
	adContext, style, found := strings.Cut(raw, "_")
	if !found {
		return GenerationContext{AdContext: raw, ImageStyle: DefaultImageStyle, RequestorID: requestorID}
	}
	return GenerationContext{AdContext: adContext, ImageStyle: style, RequestorID: requestorID}
}

// PromptTag is the "ad;style" form published with ad-copy events.
func (c GenerationContext) PromptTag() string {
	return c.AdContext + ";" + c.ImageStyle
}
