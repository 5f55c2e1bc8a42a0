package chatbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Window is a half-open [Start, End) date range with a human-readable label.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Convention used throughout: "this X" means the current calendar period from
// its start through now; "last X" means the immediately preceding complete
// period. Weeks start on Monday.

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	// Monday = 0
	offset := (int(t.Weekday()) + 6) % 7
	return dateOnly(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

var lastNMonthsRe = regexp.MustCompile(`last\s+(\d+)\s+months?`)

// ResolveWindow maps a relative time phrase in the question to a concrete
// window anchored at now. Returns false when the question names no period.
func ResolveWindow(question string, now time.Time) (Window, bool) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "last week"):
		start := startOfWeek(now).AddDate(0, 0, -7)
		end := start.AddDate(0, 0, 7)
		return Window{Start: start, End: end, Label: rangeLabel(start, end)}, true
	case strings.Contains(q, "this week"):
		start := startOfWeek(now)
		return Window{Start: start, End: now, Label: "this week to date"}, true
	case strings.Contains(q, "last month"):
		start := startOfMonth(now).AddDate(0, -1, 0)
		end := startOfMonth(now)
		return Window{Start: start, End: end, Label: rangeLabel(start, end)}, true
	case strings.Contains(q, "this month"):
		start := startOfMonth(now)
		return Window{Start: start, End: now, Label: "this month to date"}, true
	case strings.Contains(q, "last year"):
		start := startOfYear(now).AddDate(-1, 0, 0)
		end := startOfYear(now)
		return Window{Start: start, End: end, Label: rangeLabel(start, end)}, true
	case strings.Contains(q, "this year"):
		start := startOfYear(now)
		return Window{Start: start, End: now, Label: "this year to date"}, true
	}

	if m := lastNMonthsRe.FindStringSubmatch(q); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			start := dateOnly(now).AddDate(0, 0, -30*n)
			return Window{Start: start, End: now, Label: fmt.Sprintf("last %d months", n)}, true
		}
	}

	return Window{}, false
}

// DefaultWindow is the trailing 90 days, used when a generic trend question
// names no period of its own.
func DefaultWindow(now time.Time) Window {
	start := dateOnly(now).AddDate(0, 0, -90)
	return Window{Start: start, End: now, Label: "last 3 months"}
}

func rangeLabel(start, end time.Time) string {
	last := end.AddDate(0, 0, -1)
	return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), last.Format("2006-01-02"))
}
