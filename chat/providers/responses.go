package providers

import (
	"encoding/json"
	"strings"
)

// responsesBatchText concatenates output_text items across the response's
// output messages.
func responsesBatchText(raw []byte) string {
	var resp struct {
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ""
	}
	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				b.WriteString(c.Text)
			}
		}
	}
	return b.String()
}

// responsesExtractor reads responses-style stream events: typed records
// with a delta field, terminated by response.completed.
type responsesExtractor struct{}

func (*responsesExtractor) Extract(payload []byte) (string, bool) {
	var ev struct {
		Type  string `json:"type"`
		Delta string `json:"delta"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", false
	}
	switch ev.Type {
	case "response.output_text.delta":
		return ev.Delta, false
	case "response.completed":
		return "", true
	default:
		return "", false
	}
}
