package domain

import "encoding/json"

// Label is a single detected object. Raw keeps the source record untouched so
// it can be re-published verbatim.
type Label struct {
	Name string
	Raw  json.RawMessage
}

// LabelSet is the normalized vision-analysis result for one request.
type LabelSet struct {
	Labels         []Label
	DominantColors []string
	// Entities is the source Labels array as received.
	Entities json.RawMessage
}

// Names returns the label names in source order.
func (s LabelSet) Names() []string {
	names := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		names[i] = l.Name
	}
	return names
}
