// Package labels normalizes a vision-analysis result into a LabelSet.
package labels

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"adstudio/internal/domain"
)

// Extract reads the Labels array and ImageProperties.DominantColors[].HexCode
// from a DetectLabels-shaped document. Label order is preserved.
func Extract(raw json.RawMessage) (domain.LabelSet, error) {
	if !gjson.ValidBytes(raw) {
		return domain.LabelSet{}, fmt.Errorf("labels: invalid json: %w", domain.ErrMalformedInput)
	}
	doc := gjson.ParseBytes(raw)

	labelsField := doc.Get("Labels")
	if !labelsField.IsArray() {
		return domain.LabelSet{}, fmt.Errorf("labels: Labels array missing: %w", domain.ErrMalformedInput)
	}
	set := domain.LabelSet{
		Labels:         []domain.Label{},
		DominantColors: []string{},
		Entities:       json.RawMessage(labelsField.Raw),
	}
	for i, l := range labelsField.Array() {
		name := l.Get("Name")
		if !name.Exists() {
			return domain.LabelSet{}, fmt.Errorf("labels: label %d has no Name: %w", i, domain.ErrMalformedInput)
		}
		set.Labels = append(set.Labels, domain.Label{Name: name.String(), Raw: json.RawMessage(l.Raw)})
	}

	colors := doc.Get("ImageProperties.DominantColors")
	if !colors.IsArray() {
		return domain.LabelSet{}, fmt.Errorf("labels: ImageProperties.DominantColors missing: %w", domain.ErrMalformedInput)
	}
	for i, c := range colors.Array() {
		hex := c.Get("HexCode")
		if !hex.Exists() {
			return domain.LabelSet{}, fmt.Errorf("labels: dominant color %d has no HexCode: %w", i, domain.ErrMalformedInput)
		}
		set.DominantColors = append(set.DominantColors, hex.String())
	}
	return set, nil
}
