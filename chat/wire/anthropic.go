package wire

import "github.com/lumenchat/chatkit/chat"

const (
	anthropicVersion = "2023-06-01"

	anthropicDefaultMaxTokens = 4096

	// anthropicThinkingHeadroom is the output allowance kept above the
	// thinking budget when auto-raising max_tokens.
	anthropicThinkingHeadroom = 1024

	// anthropicMinThinkingBudget is the API's lower bound for
	// budget_tokens; smaller configured budgets disable thinking.
	anthropicMinThinkingBudget = 1024
)

// buildAnthropic targets the messages protocol. The system instruction is
// the top-level `system` field, never injected into message content.
func buildAnthropic(in Input) (Request, error) {
	apiURL, model, err := requireBase(in.Config)
	if err != nil {
		return Request{}, err
	}

	messages := make([]map[string]any, 0, len(in.Envelope.Messages))
	for _, m := range in.Envelope.Messages {
		blocks := make([]map[string]any, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.IsNonEmptyText():
				blocks = append(blocks, map[string]any{"type": "text", "text": p.Text})
			case p.IsImage():
				ref := *p.Image
				switch ref.SourceType {
				case chat.ImageSourceBase64, chat.ImageSourceDataURL:
					mime, data, ok := inlineBase64(ref)
					if !ok {
						return Request{}, unsupportedImage(in.Config.Provider, ref.SourceType)
					}
					blocks = append(blocks, map[string]any{
						"type": "image",
						"source": map[string]any{
							"type":       "base64",
							"media_type": mime,
							"data":       data,
						},
					})
				case chat.ImageSourceURL:
					blocks = append(blocks, map[string]any{
						"type": "image",
						"source": map[string]any{
							"type": "url",
							"url":  ref.Value,
						},
					})
				default:
					return Request{}, unsupportedImage(in.Config.Provider, ref.SourceType)
				}
			}
		}
		messages = append(messages, map[string]any{
			"role":    string(m.Role),
			"content": blocks,
		})
	}

	maxTokens := anthropicDefaultMaxTokens
	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if in.Envelope.SystemInstruction != "" {
		body["system"] = in.Envelope.SystemInstruction
	}
	if budget, ok := in.Config.ThinkingTokens(); ok && budget >= anthropicMinThinkingBudget {
		body["thinking"] = map[string]any{
			"type":          "enabled",
			"budget_tokens": budget,
		}
		if maxTokens < budget+anthropicThinkingHeadroom {
			maxTokens = budget + anthropicThinkingHeadroom
		}
	}
	body["max_tokens"] = maxTokens
	if in.Stream {
		body["stream"] = true
	}
	if in.Config.SearchMode == "anthropic_web_search" {
		body["tools"] = []map[string]any{{
			"type": "web_search_20250305",
			"name": "web_search",
		}}
	}

	h := jsonHeaders(in.Stream)
	h.Set("x-api-key", in.APIKey)
	h.Set("anthropic-version", anthropicVersion)

	return Request{
		Endpoint: joinPath(apiURL, "/v1/messages"),
		Headers:  h,
		Body:     body,
	}, nil
}
