package window

import "github.com/lumenchat/chatkit/chat"

const (
	// DefaultMaxTokens applies when the caller passes no total budget.
	DefaultMaxTokens = 8192

	// DefaultImagePlaceholder stands in for image parts in token
	// estimates and text flattening.
	DefaultImagePlaceholder = "[image]"

	outputReserveDivisor = 5 // reserve 20% of the total budget for output
	minOutputReserve     = 1024
	minInputBudget       = 1024
)

type Options struct {
	// MaxTokens is the total context budget; 20% (floor 1024 tokens) is
	// reserved for model output, the remainder is the input budget.
	MaxTokens int

	// MaxMessages caps history length before token budgeting; 0 means
	// uncapped.
	MaxMessages int

	ImagePlaceholder string
}

// Window is the trimmed, token-budgeted subset of history actually sent.
// It is derived state, rebuilt per request.
type Window struct {
	Messages  []chat.Message
	IsTrimmed bool

	TokenCount        int
	InputBudgetTokens int

	MaxContextMessages int
}

// Build bounds raw history by message count and token budget.
//
// Rows that do not normalize to user/assistant messages with content are
// skipped. Selection walks newest to oldest; the single newest message is
// force-kept (truncated if needed) so the window is never empty when the
// history has at least one usable row. Never returns an error: empty
// input yields an empty, untrimmed window.
func Build(history []chat.RawMessage, opts Options) Window {
	placeholder := opts.ImagePlaceholder
	if placeholder == "" {
		placeholder = DefaultImagePlaceholder
	}
	total := opts.MaxTokens
	if total <= 0 {
		total = DefaultMaxTokens
	}

	reserve := total / outputReserveDivisor
	if reserve < minOutputReserve {
		reserve = minOutputReserve
	}
	inputBudget := total - reserve
	if inputBudget < minInputBudget {
		inputBudget = minInputBudget
	}

	out := Window{
		InputBudgetTokens:  inputBudget,
		MaxContextMessages: opts.MaxMessages,
	}

	msgs := make([]chat.Message, 0, len(history))
	for _, raw := range history {
		if m, ok := chat.NormalizeMessage(raw); ok {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return out
	}

	if opts.MaxMessages > 0 && len(msgs) > opts.MaxMessages {
		msgs = msgs[len(msgs)-opts.MaxMessages:]
		out.IsTrimmed = true
	}

	// Newest to oldest, stop once the budget would overflow.
	selected := make([]chat.Message, 0, len(msgs))
	used := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := MessageCost(msgs[i], placeholder)
		if used+cost > inputBudget {
			if len(selected) == 0 {
				// Even the newest message alone exceeds the budget:
				// force-keep a truncated copy.
				if t, ok := truncateMessage(msgs[i], inputBudget, placeholder); ok {
					selected = append(selected, t)
					used += MessageCost(t, placeholder)
				}
			}
			out.IsTrimmed = true
			break
		}
		selected = append(selected, msgs[i])
		used += cost
	}

	// Back to chronological order.
	for l, r := 0, len(selected)-1; l < r; l, r = l+1, r-1 {
		selected[l], selected[r] = selected[r], selected[l]
	}

	out.Messages = selected
	out.TokenCount = used
	return out
}
