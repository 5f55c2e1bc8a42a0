package chatbot

import (
	"fmt"
	"strings"
	"time"
)

// maxPromptBullets caps the answer length we ask the generator for.
const maxPromptBullets = 6

// BuildPrompt assembles the bounded analyst prompt: role preamble, current
// date, the raw question, the capped aggregate summary as structured text,
// and strict output-format instructions. Raw records never go in whole; the
// summary caps bound the prompt size.
func BuildPrompt(now time.Time, question string, s *Summary) string {
	var b strings.Builder

	b.WriteString("You are an expert Supply Chain Analyst AI assistant. Your role is to provide insightful, conversational analysis of inventory and supply chain data.\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", now.Format("2006-01-02"))

	b.WriteString("--- USER QUESTION ---\n")
	b.WriteString(question)
	b.WriteString("\n\n--- DATA SUMMARY ---\n\n")
	b.WriteString(renderSummaryBlock(s))

	b.WriteString("\nRESPONSE GUIDELINES:\n")
	b.WriteString("- Start with a brief 1-2 sentence summary paragraph\n")
	b.WriteString("- Then use bullet points (-) to break down key insights\n")
	b.WriteString("- Include specific numbers and item names in bullets\n")
	b.WriteString("- Use natural, conversational language within bullets\n")
	b.WriteString("- NO asterisks, bold, or other markdown except bullets\n")
	fmt.Fprintf(&b, "- Keep total response length to %d bullet points maximum\n", maxPromptBullets)
	b.WriteString("- End with 1-2 recommendations when relevant\n\n")
	b.WriteString("Now provide your analysis in this clear, bullet-point format:\n")

	return b.String()
}

func renderSummaryBlock(s *Summary) string {
	var b strings.Builder

	b.WriteString("REQUEST STATISTICS:\n")
	fmt.Fprintf(&b, "- Total Requests: %d\n", s.TotalRequests)
	fmt.Fprintf(&b, "- Total Quantity: %s\n", formatQty(s.TotalQuantity))
	fmt.Fprintf(&b, "- Unique Items: %d\n", s.UniqueItems)
	fmt.Fprintf(&b, "- Unique Projects: %d\n", s.UniqueProjects)
	fmt.Fprintf(&b, "- Date Range: %s to %s\n", formatDate(s.DateMin), formatDate(s.DateMax))
	if s.Window != nil {
		fmt.Fprintf(&b, "- Analysis Window: %s\n", s.Window.Label)
	}

	b.WriteString("\nTOP ITEMS BY QUANTITY:\n")
	for _, entry := range s.TopItems {
		fmt.Fprintf(&b, "- %s: %s\n", entry.Item, formatQty(entry.Quantity))
	}

	b.WriteString("\nTOP PROJECTS BY REQUEST COUNT:\n")
	for _, entry := range s.TopProjects {
		fmt.Fprintf(&b, "- %s: %d requests\n", entry.Project, entry.Count)
	}

	fmt.Fprintf(&b, "\nRECENT REQUESTS (last %d):\n", len(s.Recent))
	for _, r := range s.Recent {
		fmt.Fprintf(&b, "- %s x%s for %s on %s by %s\n",
			r.ItemName, formatQty(r.Quantity), r.Project, formatDate(r.RequestedAt), orUnknown(r.Requester))
	}

	b.WriteString("\nINVENTORY STATUS:\n")
	fmt.Fprintf(&b, "- Total Items in Inventory: %d\n", s.InventoryCount)
	fmt.Fprintf(&b, "- Critical: %d, Low Stock: %d, Sufficient: %d\n",
		s.Stock.Critical, s.Stock.Low, s.Stock.Sufficient)
	for _, inv := range s.Inventory {
		fmt.Fprintf(&b, "- %s: %s available at %s\n", inv.ItemName, formatQty(inv.Quantity), orUnknown(inv.Store))
	}

	return b.String()
}

func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
