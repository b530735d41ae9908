package window

import (
	"strings"

	"github.com/lumenchat/chatkit/chat"
)

// truncateMessage shortens a message's text so its estimated cost fits
// budget. Image parts are never dropped: their placeholder cost is
// reserved first and only the remaining text budget is truncated.
// Returns false when not even an image-only remnant fits (cannot happen
// with the builder's 1024-token floor, kept for safety).
func truncateMessage(m chat.Message, budget int, imagePlaceholder string) (chat.Message, bool) {
	textBudget := budget - PerMessageOverhead
	for _, p := range m.Parts {
		if p.IsImage() {
			textBudget -= EstimateTextTokens(imagePlaceholder)
		}
	}
	if textBudget < 0 {
		return chat.Message{}, false
	}

	out := chat.Message{Role: m.Role, TurnID: m.TurnID}
	remaining := textBudget
	for _, p := range m.Parts {
		if p.IsImage() {
			out.Parts = append(out.Parts, p)
			continue
		}
		if !p.IsNonEmptyText() {
			continue
		}
		if remaining <= 0 {
			continue
		}
		cost := EstimateTextTokens(p.Text)
		if cost <= remaining {
			out.Parts = append(out.Parts, p)
			remaining -= cost
			continue
		}
		if cut := longestFittingPrefix(p.Text, remaining); cut != "" {
			out.Parts = append(out.Parts, chat.TextPart(cut))
		}
		remaining = 0
	}

	if len(out.Parts) == 0 {
		return chat.Message{}, false
	}
	return out, true
}

// longestFittingPrefix binary-searches rune-prefix lengths for the longest
// prefix whose estimated cost fits budget. The estimate is monotonic in
// prefix length, so the search is exact. The result is whitespace-trimmed.
func longestFittingPrefix(text string, budget int) string {
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if EstimateTextTokens(string(runes[:mid])) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimSpace(string(runes[:lo]))
}
