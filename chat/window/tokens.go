package window

import (
	"math"
	"unicode"

	"github.com/lumenchat/chatkit/chat"
)

// PerMessageOverhead approximates role/framing tokens added per message.
const PerMessageOverhead = 4

// EstimateTextTokens is a cheap heuristic: wide (CJK/full-width)
// characters cost 1/1.5 token, everything else 1/4, ceiling-rounded over
// the sum. It deliberately overestimates CJK-heavy text so the budget
// errs on the safe side.
func EstimateTextTokens(text string) int {
	if text == "" {
		return 0
	}
	var wide, narrow int
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			narrow++
		}
	}
	return int(math.Ceil(float64(wide)/1.5 + float64(narrow)/4))
}

// MessageCost estimates one message including the fixed per-message
// overhead. Image parts are priced as the placeholder text.
func MessageCost(m chat.Message, imagePlaceholder string) int {
	cost := PerMessageOverhead
	for _, p := range m.Parts {
		switch {
		case p.IsNonEmptyText():
			cost += EstimateTextTokens(p.Text)
		case p.IsImage():
			cost += EstimateTextTokens(imagePlaceholder)
		}
	}
	return cost
}

func isWide(r rune) bool {
	switch {
	case unicode.Is(unicode.Han, r),
		unicode.Is(unicode.Hangul, r),
		unicode.Is(unicode.Hiragana, r),
		unicode.Is(unicode.Katakana, r):
		return true
	case r >= 0x3000 && r <= 0x303f: // CJK symbols and punctuation
		return true
	case r >= 0xff00 && r <= 0xffef: // full-width and half-width forms
		return true
	}
	return false
}
