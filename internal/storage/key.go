package storage

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ObjectKey names the blob for one generated term:
// <term without commas, spaces as underscores>__<spec, spaces as underscores><id>.png
func ObjectKey(term, spec, id string) string {
	t := strings.ReplaceAll(strings.ReplaceAll(term, ",", ""), " ", "_")
	s := strings.ReplaceAll(spec, " ", "_")
	return norm.NFC.String(t + "__" + s + id + ".png")
}
