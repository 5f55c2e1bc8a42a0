package chatbot

import (
	"regexp"
	"sort"
)

// sortedByLength returns the lexicon entries longest-first so a short name
// never matches inside a longer one that also occurs in the question.
func sortedByLength(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// matchWholeWord tests candidate as a whole word/phrase inside the question,
// case-insensitively. Regex metacharacters in the candidate are escaped.
func matchWholeWord(question, candidate string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(candidate) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(question)
}

// FindProject locates the best-matching known project name in the question.
// An empty result is a normal outcome, not an error.
func FindProject(question string, lex Lexicon) string {
	for _, name := range sortedByLength(lex.Projects) {
		if matchWholeWord(question, name) {
			return name
		}
	}
	return ""
}

// FindItem locates the best-matching known item name in the question.
func FindItem(question string, lex Lexicon) string {
	for _, name := range sortedByLength(lex.Items) {
		if matchWholeWord(question, name) {
			return name
		}
	}
	return ""
}
