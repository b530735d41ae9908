package wire

import "github.com/lumenchat/chatkit/chat"

// buildGemini targets generateContent/streamGenerateContent. Assistant
// turns map to the "model" role; streaming appends `:streamGenerateContent
// ?alt=sse`, batch uses `:generateContent`.
func buildGemini(in Input) (Request, error) {
	apiURL, model, err := requireBase(in.Config)
	if err != nil {
		return Request{}, err
	}

	contents := make([]map[string]any, 0, len(in.Envelope.Messages))
	for _, m := range in.Envelope.Messages {
		role := "user"
		if m.Role == chat.RoleAssistant {
			role = "model"
		}
		parts := make([]map[string]any, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.IsNonEmptyText():
				parts = append(parts, map[string]any{"text": p.Text})
			case p.IsImage():
				ref := *p.Image
				switch ref.SourceType {
				case chat.ImageSourceBase64, chat.ImageSourceDataURL:
					mime, data, ok := inlineBase64(ref)
					if !ok {
						return Request{}, unsupportedImage(in.Config.Provider, ref.SourceType)
					}
					parts = append(parts, map[string]any{
						"inline_data": map[string]any{
							"mime_type": mime,
							"data":      data,
						},
					})
				case chat.ImageSourceFileURI:
					fd := map[string]any{"file_uri": ref.Value}
					if ref.MIMEType != "" {
						fd["mime_type"] = ref.MIMEType
					}
					parts = append(parts, map[string]any{"file_data": fd})
				default:
					return Request{}, unsupportedImage(in.Config.Provider, ref.SourceType)
				}
			}
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": parts,
		})
	}

	body := map[string]any{"contents": contents}
	if in.Envelope.SystemInstruction != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": in.Envelope.SystemInstruction}},
		}
	}
	if in.Config.SearchMode == "gemini_google_search" {
		body["tools"] = []map[string]any{{"google_search": map[string]any{}}}
	}
	if budget, ok := in.Config.ThinkingTokens(); ok {
		body["generationConfig"] = map[string]any{
			"thinkingConfig": map[string]any{"thinkingBudget": budget},
		}
	}

	action := ":generateContent"
	if in.Stream {
		action = ":streamGenerateContent?alt=sse"
	}

	h := jsonHeaders(in.Stream)
	h.Set("x-goog-api-key", in.APIKey)

	return Request{
		Endpoint: joinPath(apiURL, "/models/"+model) + action,
		Headers:  h,
		Body:     body,
	}, nil
}
