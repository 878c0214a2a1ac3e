package normalize

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"adstudio/internal/domain"
)

// DecodeImage decodes a standard base64 image payload. Embedded line breaks
// are ignored.
func DecodeImage(payload string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)
	if cleaned == "" {
		return nil, fmt.Errorf("normalize: empty image payload: %w", domain.ErrDecode)
	}

	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("normalize: decode image: %w: %w", domain.ErrDecode, err)
	}
	return data, nil
}
