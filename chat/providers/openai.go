package providers

import (
	"encoding/json"
	"strings"
)

// openAIBatchText concatenates message content across all returned
// choices.
func openAIBatchText(raw []byte) string {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ""
	}
	var b strings.Builder
	for _, c := range resp.Choices {
		b.WriteString(c.Message.Content)
	}
	return b.String()
}

// openAIExtractor reads chat-completions stream chunks; payloads are
// already delta-shaped.
type openAIExtractor struct{}

func (*openAIExtractor) Extract(payload []byte) (string, bool) {
	var chunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", false
	}
	var b strings.Builder
	for _, c := range chunk.Choices {
		b.WriteString(c.Delta.Content)
	}
	return b.String(), false
}
