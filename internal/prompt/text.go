// Package prompt renders model instructions and image request bodies.
package prompt

import (
	"fmt"
	"strings"
)

// SystemInstruction is the single system turn sent with every ad-copy request.
const SystemInstruction = "You are a marketing and advertising expert. You are great at creating advertising assets, selecting the right words and colors for ads."

// RenderLabelText joins label names with newlines, keeping their order.
func RenderLabelText(names []string) string {
	return strings.Join(names, "\n")
}

// BuildTextPrompt renders the ad-copy instruction. The response contract
// (a lone JSON object with tagline, font and pitch) is relied upon by the
// normalizer, which still re-extracts the object defensively.
func BuildTextPrompt(adContext string, labelNames []string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "The following objects are present in an image for an advertisement for %s:\n", adContext)
	fmt.Fprintf(sb, "<objects>\n%s\n</objects>\n", RenderLabelText(labelNames))
	sb.WriteString("Based on the objects listed above, generate a pitch, a Google display font, and a tagline ")
	sb.WriteString("to go with the image in an advertisement. Your response should be in JSON format, following ")
	sb.WriteString(`this schema: {"tagline":"string", "font":"string", "pitch":"string"}. Keep the pitch under `)
	sb.WriteString("50 words. Do not include any text in the response outside of the JSON object. Use double ")
	sb.WriteString("quotes for property names.")
	return sb.String()
}
