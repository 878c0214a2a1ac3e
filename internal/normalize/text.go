// Package normalize turns raw model output into values the pipelines can use.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"adstudio/internal/domain"
)

// ExtractJSONObject returns the first complete JSON object embedded in raw.
// Leading and trailing prose, markdown fences included, is skipped.
// Candidates are tried at every opening brace with a streaming decoder so
// braces inside string values never end an object early.
func ExtractJSONObject(raw string) (json.RawMessage, error) {
	if !strings.Contains(raw, "{") {
		return nil, fmt.Errorf("normalize: no JSON object in response: %w", domain.ErrResponseParse)
	}

	for offset := 0; offset < len(raw); {
		idx := strings.IndexByte(raw[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		if obj, ok := decodeObjectAt(raw[start:]); ok {
			return obj, nil
		}
		offset = start + 1
	}
	return nil, fmt.Errorf("normalize: response has no decodable JSON object: %w", domain.ErrResponseParse)
}

func decodeObjectAt(text string) (json.RawMessage, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	var obj json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	obj = bytes.TrimSpace(obj)
	if len(obj) == 0 || obj[0] != '{' {
		return nil, false
	}
	return obj, true
}

