package chatbot

import (
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	// Saturday 2025-02-01.
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		question  string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "last_week_is_previous_monday_to_monday",
			question:  "top items last week",
			wantStart: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "this_week_runs_to_now",
			question:  "usage this week",
			wantStart: time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "last_month_is_previous_calendar_month",
			question:  "top items last month",
			wantStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "this_month_runs_to_now",
			question:  "requests this month",
			wantStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   now,
		},
		{
			name:      "last_year",
			question:  "summary for last year",
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "last_n_months",
			question:  "trends over the last 6 months",
			wantStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -180),
			wantEnd:   now,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, ok := ResolveWindow(tt.question, now)
			if !ok {
				t.Fatalf("ResolveWindow(%q) found no window", tt.question)
			}
			if !window.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", window.Start, tt.wantStart)
			}
			if !window.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", window.End, tt.wantEnd)
			}
		})
	}
}

func TestResolveWindowNoPhrase(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, ok := ResolveWindow("top requested items", now); ok {
		t.Error("ResolveWindow() matched a question with no time phrase")
	}
}

func TestWindowContainsIsHalfOpen(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if !w.Contains(w.Start) {
		t.Error("Contains(Start) = false, want true")
	}
	if w.Contains(w.End) {
		t.Error("Contains(End) = true, want false (half-open)")
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	w := DefaultWindow(now)
	wantStart := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -90)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if w.Label != "last 3 months" {
		t.Errorf("Label = %q, want last 3 months", w.Label)
	}
}
