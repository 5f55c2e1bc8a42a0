package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
)

// ConvertToHTML renders an answer to HTML for history storage. Answers use
// the "• " bullet glyph, which markdown does not recognize as a list marker,
// so bullets are rewritten to dashes first.
func ConvertToHTML(answer string) string {
	normalized := normalizeLists(answer)
	return string(markdown.ToHTML([]byte(normalized), nil, nil))
}

// normalizeLists rewrites bullet glyphs to markdown list markers and inserts
// the blank line markdown requires before a list starts.
func normalizeLists(text string) string {
	lines := strings.Split(text, "\n")
	var result []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "• ") {
			line = strings.Replace(line, "• ", "- ", 1)
			if i > 0 {
				prev := strings.TrimSpace(lines[i-1])
				if prev != "" && !strings.HasPrefix(prev, "• ") && !strings.HasPrefix(prev, "- ") {
					result = append(result, "")
				}
			}
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
