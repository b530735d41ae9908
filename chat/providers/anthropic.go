package providers

import (
	"encoding/json"
	"strings"
)

// anthropicBatchText concatenates the text content blocks of a messages
// response.
func anthropicBatchText(raw []byte) string {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ""
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// anthropicExtractor reads messages stream events; text arrives in
// content_block_delta records and message_stop terminates the stream.
type anthropicExtractor struct{}

func (*anthropicExtractor) Extract(payload []byte) (string, bool) {
	var ev struct {
		Type  string `json:"type"`
		Delta struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", false
	}
	switch ev.Type {
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" {
			return ev.Delta.Text, false
		}
		return "", false
	case "message_stop":
		return "", true
	default:
		return "", false
	}
}
