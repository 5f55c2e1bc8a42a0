package narrative

import (
	"regexp"
	"strings"
)

var (
	boldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe   = regexp.MustCompile(`\*([^*]+)\*`)
	headerRe   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletRe   = regexp.MustCompile(`(?m)^[ \t]*[-*]\s+`)
	numberedRe = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.\s+`)
	spacesRe   = regexp.MustCompile(`  +`)
	blanksRe   = regexp.MustCompile(`\n{3,}`)
)

// FormatResponse normalizes generated text for display: markdown emphasis and
// headers are stripped, bullet markers are unified to one glyph, runs of
// blank lines collapse, and surrounding whitespace is trimmed. Applying it to
// already-formatted text changes nothing.
func FormatResponse(text string) string {
	formatted := text

	formatted = boldRe.ReplaceAllString(formatted, "$1")
	formatted = italicRe.ReplaceAllString(formatted, "$1")
	formatted = headerRe.ReplaceAllString(formatted, "")
	formatted = bulletRe.ReplaceAllString(formatted, "• ")
	formatted = numberedRe.ReplaceAllString(formatted, "$1. ")
	formatted = spacesRe.ReplaceAllString(formatted, " ")
	formatted = blanksRe.ReplaceAllString(formatted, "\n\n")

	return strings.TrimSpace(formatted)
}
