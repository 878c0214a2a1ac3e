package domain

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Defaults for optional image request fields.
const (
	DefaultAssetType   = "advertising-moodboard"
	DefaultStylePreset = "photographic"

	ImageFailureMessage = "Failed to generate image"
)

// AdCopyRequest is the inbound text-copy request.
type AdCopyRequest struct {
	Context            string
	RequestorID        string
	RekognitionResults json.RawMessage
}

// ParseAdCopyRequest validates the shape of a raw text-copy request.
func ParseAdCopyRequest(raw []byte) (AdCopyRequest, error) {
	if !gjson.ValidBytes(raw) {
		return AdCopyRequest{}, fmt.Errorf("ad copy request: invalid json: %w", ErrMalformedInput)
	}
	doc := gjson.ParseBytes(raw)
	contextField := doc.Get("context")
	if contextField.Type != gjson.String {
		return AdCopyRequest{}, fmt.Errorf("ad copy request: context must be a string: %w", ErrMalformedInput)
	}
	requestor := doc.Get("requestorId")
	if requestor.Type != gjson.String {
		return AdCopyRequest{}, fmt.Errorf("ad copy request: requestorId must be a string: %w", ErrMalformedInput)
	}
	results := doc.Get("rekognitionResults")
	if !results.IsObject() {
		return AdCopyRequest{}, fmt.Errorf("ad copy request: rekognitionResults must be an object: %w", ErrMalformedInput)
	}
	return AdCopyRequest{
		Context:            contextField.String(),
		RequestorID:        requestor.String(),
		RekognitionResults: json.RawMessage(results.Raw),
	}, nil
}

// ImageRequest is the inbound moodboard image request.
type ImageRequest struct {
	Type        string
	AssetType   string
	StylePreset string
	ColorScheme []string
	Terms       []string
	Spec        string
	ID          string
}

// ParseImageRequest validates a raw image request and applies defaults.
// color_scheme arrives JSON-encoded inside a string; a bare array is accepted
// as well.
func ParseImageRequest(raw []byte) (ImageRequest, error) {
	if !gjson.ValidBytes(raw) {
		return ImageRequest{}, fmt.Errorf("image request: invalid json: %w", ErrMalformedInput)
	}
	doc := gjson.ParseBytes(raw)

	req := ImageRequest{
		AssetType:   DefaultAssetType,
		StylePreset: DefaultStylePreset,
		ColorScheme: []string{},
	}
	for field, dst := range map[string]*string{"type": &req.Type, "spec": &req.Spec, "id": &req.ID} {
		v := doc.Get(field)
		if v.Type != gjson.String {
			return ImageRequest{}, fmt.Errorf("image request: %s must be a string: %w", field, ErrMalformedInput)
		}
		*dst = v.String()
	}
	if v := doc.Get("assetType"); v.Exists() {
		req.AssetType = v.String()
	}
	if v := doc.Get("style_preset"); v.Exists() {
		req.StylePreset = v.String()
	}

	colors, err := parseColorScheme(doc.Get("color_scheme"))
	if err != nil {
		return ImageRequest{}, err
	}
	req.ColorScheme = colors

	terms := doc.Get("terms")
	if !terms.IsArray() {
		return ImageRequest{}, fmt.Errorf("image request: terms must be an array: %w", ErrMalformedInput)
	}
	for _, t := range terms.Array() {
		if t.Type != gjson.String {
			return ImageRequest{}, fmt.Errorf("image request: terms must contain strings: %w", ErrMalformedInput)
		}
		req.Terms = append(req.Terms, t.String())
	}
	if len(req.Terms) == 0 {
		return ImageRequest{}, fmt.Errorf("image request: terms is empty: %w", ErrMalformedInput)
	}
	return req, nil
}

func parseColorScheme(v gjson.Result) ([]string, error) {
	if !v.Exists() {
		return []string{}, nil
	}
	list := v
	if v.Type == gjson.String {
		if !gjson.Valid(v.String()) {
			return nil, fmt.Errorf("image request: color_scheme is not valid json: %w", ErrMalformedInput)
		}
		list = gjson.Parse(v.String())
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("image request: color_scheme must be an array: %w", ErrMalformedInput)
	}
	colors := []string{}
	for _, c := range list.Array() {
		colors = append(colors, c.String())
	}
	return colors, nil
}

// ImageResponse is the terminal status of an image pipeline invocation.
type ImageResponse struct {
	StatusCode int           `json:"statusCode"`
	Body       *PublishEvent `json:"body,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// ImageSucceeded echoes the last event built by the invocation.
func ImageSucceeded(last PublishEvent) ImageResponse {
	return ImageResponse{StatusCode: http.StatusOK, Body: &last}
}

// ImageFailed is returned on the first persistence or publish failure.
func ImageFailed() ImageResponse {
	return ImageResponse{StatusCode: http.StatusBadRequest, Message: ImageFailureMessage}
}
