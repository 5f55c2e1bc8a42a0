package chatbot

import "testing"

func testLexicon() Lexicon {
	ds := &Dataset{
		Requests: []RequestRecord{
			{Project: "Alpha", ItemName: "Steel"},
			{Project: "Alpha Tower", ItemName: "Steel Rod"},
			{Project: "Beta", ItemName: "C++ Compiler (v2)"},
		},
	}
	return BuildLexicon(ds)
}

func TestFindProject(t *testing.T) {
	lex := testLexicon()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"exact_match", "show usage for alpha", "alpha"},
		{"case_insensitive", "show usage for ALPHA", "alpha"},
		{"longest_match_wins", "requests for alpha tower this month", "alpha tower"},
		{"no_substring_match", "show alphabet soup stats", ""},
		{"absent", "show usage for gamma", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindProject(tt.question, lex); got != tt.want {
				t.Errorf("FindProject(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestFindItem(t *testing.T) {
	lex := testLexicon()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"single_word", "how much steel do we have", "steel"},
		{"phrase_over_word", "how many steel rod were requested", "steel rod"},
		{"regex_metacharacters_escaped", "do we stock c++ compiler (v2) anywhere", "c++ compiler (v2)"},
		{"absent", "how much cement do we have", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindItem(tt.question, lex); got != tt.want {
				t.Errorf("FindItem(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestBuildLexiconExcludesEmptyNames(t *testing.T) {
	ds := &Dataset{
		Requests:  []RequestRecord{{Project: "  ", ItemName: ""}},
		Inventory: []InventoryRecord{{ItemName: "Paint"}},
	}
	lex := BuildLexicon(ds)
	if len(lex.Projects) != 0 {
		t.Errorf("Projects has %d entries, want 0", len(lex.Projects))
	}
	if _, ok := lex.Items["paint"]; !ok || len(lex.Items) != 1 {
		t.Errorf("Items = %v, want exactly normalized paint", lex.Items)
	}
}
