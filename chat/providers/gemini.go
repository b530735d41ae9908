package providers

import (
	"encoding/json"
	"strings"
)

// geminiBatchText concatenates candidate content parts of a
// generateContent response.
func geminiBatchText(raw []byte) string {
	var resp geminiPayload
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ""
	}
	return resp.text()
}

type geminiPayload struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p geminiPayload) text() string {
	var b strings.Builder
	for _, cand := range p.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// geminiExtractor handles cumulative snapshots: streamGenerateContent
// records may carry the full text assembled so far rather than an
// increment, so the delta is computed by diffing against the previously
// assembled text.
//
// The diff is best-effort: a snapshot extending the assembled text yields
// its suffix; a snapshot we have already seen (prefix or suffix of the
// assembled text) yields nothing; anything else is treated as an
// independent increment and appended as-is.
type geminiExtractor struct {
	assembled string
}

func (g *geminiExtractor) Extract(payload []byte) (string, bool) {
	var resp geminiPayload
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", false
	}
	return g.delta(resp.text()), false
}

func (g *geminiExtractor) delta(snapshot string) string {
	switch {
	case snapshot == "":
		return ""
	case strings.HasPrefix(snapshot, g.assembled):
		d := snapshot[len(g.assembled):]
		g.assembled = snapshot
		return d
	case strings.HasPrefix(g.assembled, snapshot), strings.HasSuffix(g.assembled, snapshot):
		return ""
	default:
		g.assembled += snapshot
		return snapshot
	}
}
