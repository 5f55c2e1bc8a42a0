package narrative

import "testing"

func TestFormatResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips_bold_and_italic",
			input: "**Cement** was the *top* item.",
			want:  "Cement was the top item.",
		},
		{
			name:  "strips_headers",
			input: "## Summary\nDemand rose.",
			want:  "Summary\nDemand rose.",
		},
		{
			name:  "unifies_bullet_markers",
			input: "- first\n* second\n  - indented",
			want:  "• first\n• second\n• indented",
		},
		{
			name:  "keeps_numbered_lists",
			input: "1. check stock\n2. reorder",
			want:  "1. check stock\n2. reorder",
		},
		{
			name:  "collapses_blank_runs_and_spaces",
			input: "line one\n\n\n\nline  two",
			want:  "line one\n\nline two",
		},
		{
			name:  "trims_surrounding_whitespace",
			input: "\n\n  analysis done  \n",
			want:  "analysis done",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatResponse(tt.input)
			if got != tt.want {
				t.Errorf("FormatResponse() = %q, want %q", got, tt.want)
			}
			// Formatting is idempotent: a second pass changes nothing.
			if again := FormatResponse(got); again != got {
				t.Errorf("FormatResponse() not idempotent: %q became %q", got, again)
			}
		})
	}
}
