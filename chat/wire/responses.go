package wire

import "github.com/lumenchat/chatkit/chat"

// buildOpenAIResponses targets the responses-style protocol: messages
// become an `input` array of typed message items, the system instruction
// moves to top-level `instructions`.
func buildOpenAIResponses(in Input) (Request, error) {
	apiURL, model, err := requireBase(in.Config)
	if err != nil {
		return Request{}, err
	}

	input := make([]map[string]any, 0, len(in.Envelope.Messages))
	for _, m := range in.Envelope.Messages {
		content := make([]map[string]any, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.IsNonEmptyText():
				content = append(content, map[string]any{"type": "input_text", "text": p.Text})
			case p.IsImage():
				ref := *p.Image
				switch ref.SourceType {
				case chat.ImageSourceFileID:
					content = append(content, map[string]any{"type": "input_image", "file_id": ref.Value})
				case chat.ImageSourceURL, chat.ImageSourceDataURL, chat.ImageSourceBase64:
					content = append(content, map[string]any{"type": "input_image", "image_url": imageURL(ref)})
				default:
					return Request{}, unsupportedImage(in.Config.Provider, ref.SourceType)
				}
			}
		}
		input = append(input, map[string]any{
			"type":    "message",
			"role":    string(m.Role),
			"content": content,
		})
	}

	body := map[string]any{
		"model": model,
		"input": input,
	}
	if in.Envelope.SystemInstruction != "" {
		body["instructions"] = in.Envelope.SystemInstruction
	}
	if in.Stream {
		body["stream"] = true
	}
	if level, ok := in.Config.ThinkingLevel(); ok {
		body["reasoning"] = map[string]any{"effort": level}
	}
	if size, ok := searchContextSize(in.Config.SearchMode); ok {
		body["tools"] = []map[string]any{{
			"type":                "web_search_preview",
			"search_context_size": size,
		}}
	}

	h := jsonHeaders(in.Stream)
	h.Set("Authorization", "Bearer "+in.APIKey)

	return Request{
		Endpoint: joinPath(apiURL, "/responses"),
		Headers:  h,
		Body:     body,
	}, nil
}
