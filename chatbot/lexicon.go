package chatbot

// Lexicon is the data-derived vocabulary of known project and item names,
// normalized and deduplicated. It has no lifecycle of its own: rebuild it
// whenever the dataset snapshot is replaced and pass it explicitly into
// extraction calls.
type Lexicon struct {
	Projects map[string]struct{}
	Items    map[string]struct{}
}

// BuildLexicon scans the snapshot for project and item names. Empty names are
// excluded. No iteration order is guaranteed; consumers needing determinism
// must sort.
func BuildLexicon(ds *Dataset) Lexicon {
	lex := Lexicon{
		Projects: make(map[string]struct{}),
		Items:    make(map[string]struct{}),
	}
	if ds == nil {
		return lex
	}
	for _, r := range ds.Requests {
		if p := Normalize(r.Project); p != "" {
			lex.Projects[p] = struct{}{}
		}
		if it := Normalize(r.ItemName); it != "" {
			lex.Items[it] = struct{}{}
		}
	}
	for _, inv := range ds.Inventory {
		if it := Normalize(inv.ItemName); it != "" {
			lex.Items[it] = struct{}{}
		}
	}
	return lex
}
