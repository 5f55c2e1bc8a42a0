package chatbot

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// Intent is the category of question driving which response path runs.
type Intent int

const (
	IntentGreeting Intent = iota
	IntentHelp
	IntentForecast
	IntentUnreturned
	IntentInventoryStatus
	IntentRequirementsList
	IntentSummary
	IntentItemLookup
	IntentUnknown
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentHelp:
		return "help"
	case IntentForecast:
		return "forecast"
	case IntentUnreturned:
		return "unreturned"
	case IntentInventoryStatus:
		return "inventory_status"
	case IntentRequirementsList:
		return "requirements_list"
	case IntentSummary:
		return "summary"
	case IntentItemLookup:
		return "item_lookup"
	default:
		return "unknown"
	}
}

var (
	greetingWords   = []string{"hi", "hello", "hey", "greetings", "thanks"}
	greetingPhrases = []string{"good morning", "good afternoon", "good evening", "how are you"}
	helpPhrases     = []string{"what can you do", "what do you do", "how do i", "how can you help", "capabilities"}
	forecastPhrases = []string{"next week", "next month", "forecast", "predict"}
	unreturnedWords = []string{"unreturned", "unconsumed", "outstanding"}
	unreturnedPhr   = []string{"not returned", "not yet returned", "still held", "still holding", "not consumed"}
	stockPhrases    = []string{"low stock", "stock status", "out of stock", "stock level", "critical"}
	requireWords    = []string{"requirement", "requirements", "need", "needs", "required"}
	summaryWords    = []string{"summary", "summarize", "summarise", "trend", "trends", "analysis", "analyze", "overview", "top", "usage", "insight", "insights"}
)

// longQuestionTokens is the length at which an otherwise unclassified
// free-form question is treated as a summary request.
const longQuestionTokens = 8

// tokenize splits the question into lowercased word tokens. Falls back to
// whitespace splitting if the tokenizer rejects the input.
func tokenize(question string) map[string]bool {
	set := make(map[string]bool)
	doc, err := prose.NewDocument(question,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		for _, w := range strings.Fields(question) {
			set[Normalize(w)] = true
		}
		return set
	}
	for _, tok := range doc.Tokens() {
		set[Normalize(tok.Text)] = true
	}
	return set
}

func containsAnyPhrase(q string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

func containsAnyWord(tokens map[string]bool, words []string) bool {
	for _, w := range words {
		if tokens[w] {
			return true
		}
	}
	return false
}

// Classify assigns the question one intent. Rules run in a fixed precedence
// order, first match wins, so a question matching several phrase sets (e.g.
// "top" and "critical") resolves deterministically.
func Classify(question string, hasProject, hasItem bool) Intent {
	q := Normalize(question)
	tokens := tokenize(q)

	isUnreturned := containsAnyWord(tokens, unreturnedWords) || containsAnyPhrase(q, unreturnedPhr)
	isForecast := containsAnyPhrase(q, forecastPhrases)
	isSummary := containsAnyWord(tokens, summaryWords)

	switch {
	case containsAnyWord(tokens, greetingWords) || containsAnyPhrase(q, greetingPhrases):
		return IntentGreeting
	case tokens["help"] || containsAnyPhrase(q, helpPhrases):
		return IntentHelp
	case isForecast:
		return IntentForecast
	case isUnreturned:
		return IntentUnreturned
	case containsAnyPhrase(q, stockPhrases) && !isSummary && !isForecast && !isUnreturned:
		return IntentInventoryStatus
	case (containsAnyWord(tokens, requireWords) || tokens["list"]) && hasProject:
		return IntentRequirementsList
	case isSummary || len(tokens) >= longQuestionTokens:
		return IntentSummary
	case hasItem:
		return IntentItemLookup
	default:
		return IntentUnknown
	}
}
