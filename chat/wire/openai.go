package wire

import "github.com/lumenchat/chatkit/chat"

// buildOpenAI targets the chat-completions protocol.
//
// Text-only message content collapses to a plain string; any image part
// forces the structured content array. A leading system entry carries the
// system instruction.
func buildOpenAI(in Input) (Request, error) {
	apiURL, model, err := requireBase(in.Config)
	if err != nil {
		return Request{}, err
	}

	messages := make([]map[string]any, 0, len(in.Envelope.Messages)+1)
	if in.Envelope.SystemInstruction != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": in.Envelope.SystemInstruction,
		})
	}

	for _, m := range in.Envelope.Messages {
		content, err := openAIContent(in.Config.Provider, m)
		if err != nil {
			return Request{}, err
		}
		messages = append(messages, map[string]any{
			"role":    string(m.Role),
			"content": content,
		})
	}

	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if in.Stream {
		body["stream"] = true
	}
	if level, ok := in.Config.ThinkingLevel(); ok {
		body["reasoning_effort"] = level
	}
	if size, ok := searchContextSize(in.Config.SearchMode); ok {
		body["web_search_options"] = map[string]any{"search_context_size": size}
	}

	h := jsonHeaders(in.Stream)
	h.Set("Authorization", "Bearer "+in.APIKey)

	return Request{
		Endpoint: joinPath(apiURL, "/chat/completions"),
		Headers:  h,
		Body:     body,
	}, nil
}

func openAIContent(provider chat.Provider, m chat.Message) (any, error) {
	if !hasImage(m) {
		return flattenText(m), nil
	}

	items := make([]map[string]any, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch {
		case p.IsNonEmptyText():
			items = append(items, map[string]any{"type": "text", "text": p.Text})
		case p.IsImage():
			ref := *p.Image
			switch ref.SourceType {
			case chat.ImageSourceURL, chat.ImageSourceDataURL, chat.ImageSourceBase64:
			default:
				return nil, unsupportedImage(provider, ref.SourceType)
			}
			img := map[string]any{"url": imageURL(ref)}
			if ref.Detail != "" {
				img["detail"] = ref.Detail
			}
			items = append(items, map[string]any{"type": "image_url", "image_url": img})
		}
	}
	return items, nil
}
