package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenchat/chatkit/chat"
)

func baseConfig(p chat.Provider) chat.Config {
	return chat.Config{
		Provider: p,
		APIURL:   "https://api.example.com",
		Model:    "test-model",
	}
}

func TestBuild_UnknownProvider(t *testing.T) {
	_, err := Build(Input{Config: chat.Config{Provider: "mystery", APIURL: "x", Model: "y"}})
	ce, ok := chat.AsConfigError(err)
	require.True(t, ok, "want ConfigError, got %v", err)
	require.Contains(t, ce.Message, "mystery")
}

func TestBuild_CaseInsensitiveProviderID(t *testing.T) {
	cfg := baseConfig("OpenAI")
	req, err := Build(Input{Config: cfg, Envelope: chat.Envelope{Messages: []chat.Message{chat.User("hi")}}, APIKey: "k"})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(req.Endpoint, "/chat/completions"))
}

func TestBuild_MissingBaseConfig(t *testing.T) {
	for _, cfg := range []chat.Config{
		{Provider: chat.ProviderOpenAI, Model: "m"},
		{Provider: chat.ProviderOpenAI, APIURL: "https://x"},
	} {
		_, err := Build(Input{Config: cfg})
		_, ok := chat.AsConfigError(err)
		require.True(t, ok, "cfg=%+v err=%v", cfg, err)
	}
}

func TestOpenAI_TextImageThinkingSearch(t *testing.T) {
	cfg := baseConfig(chat.ProviderOpenAI)
	cfg.ThinkingBudget = "high"
	cfg.SearchMode = "openai_web_search_medium"

	env := chat.Envelope{
		SystemInstruction: "be helpful",
		Messages: []chat.Message{{
			Role: chat.RoleUser,
			Parts: []chat.Part{
				chat.TextPart("what is this?"),
				{Type: chat.PartImage, Image: &chat.ImageRef{
					SourceType: chat.ImageSourceURL,
					Value:      "https://img.example.com/a.png",
					Detail:     "low",
				}},
			},
		}},
	}

	req, err := Build(Input{Config: cfg, Envelope: env, APIKey: "sk-test"})
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(req.Endpoint, "/chat/completions"), req.Endpoint)
	require.Equal(t, "Bearer sk-test", req.Headers.Get("Authorization"))
	require.Equal(t, "high", req.Body["reasoning_effort"])
	require.Equal(t,
		map[string]any{"search_context_size": "medium"},
		req.Body["web_search_options"])

	messages := req.Body["messages"].([]map[string]any)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0]["role"])
	require.Equal(t, "be helpful", messages[0]["content"])

	content := messages[1]["content"].([]map[string]any)
	require.Equal(t, []map[string]any{
		{"type": "text", "text": "what is this?"},
		{"type": "image_url", "image_url": map[string]any{
			"url":    "https://img.example.com/a.png",
			"detail": "low",
		}},
	}, content)
}

func TestOpenAI_TextOnlyCollapsesToString(t *testing.T) {
	req, err := Build(Input{
		Config:   baseConfig(chat.ProviderOpenAI),
		Envelope: chat.Envelope{Messages: []chat.Message{chat.User("plain")}},
		APIKey:   "k",
	})
	require.NoError(t, err)
	messages := req.Body["messages"].([]map[string]any)
	require.Equal(t, "plain", messages[0]["content"])
	_, hasStream := req.Body["stream"]
	require.False(t, hasStream)
}

func TestOpenAI_Base64BecomesDataURL(t *testing.T) {
	env := chat.Envelope{Messages: []chat.Message{{
		Role: chat.RoleUser,
		Parts: []chat.Part{{Type: chat.PartImage, Image: &chat.ImageRef{
			SourceType: chat.ImageSourceBase64,
			Value:      "aGVsbG8=",
			MIMEType:   "image/jpeg",
		}}},
	}}}
	req, err := Build(Input{Config: baseConfig(chat.ProviderOpenAI), Envelope: env, APIKey: "k"})
	require.NoError(t, err)

	messages := req.Body["messages"].([]map[string]any)
	content := messages[0]["content"].([]map[string]any)
	require.Equal(t,
		map[string]any{"url": "data:image/jpeg;base64,aGVsbG8="},
		content[0]["image_url"])
}

func TestOpenAI_FileURIUnsupported(t *testing.T) {
	env := chat.Envelope{Messages: []chat.Message{{
		Role: chat.RoleUser,
		Parts: []chat.Part{{Type: chat.PartImage, Image: &chat.ImageRef{
			SourceType: chat.ImageSourceFileURI,
			Value:      "gs://bucket/img",
		}}},
	}}}
	_, err := Build(Input{Config: baseConfig(chat.ProviderOpenAI), Envelope: env, APIKey: "k"})
	_, ok := chat.AsConfigError(err)
	require.True(t, ok, "err=%v", err)
}

func TestResponses_Shape(t *testing.T) {
	cfg := baseConfig(chat.ProviderOpenAIResponses)
	cfg.ThinkingBudget = "medium"
	cfg.SearchMode = "openai_web_search_low"

	env := chat.Envelope{
		SystemInstruction: "sys",
		Messages: []chat.Message{{
			Role: chat.RoleUser,
			Parts: []chat.Part{
				chat.TextPart("hello"),
				{Type: chat.PartImage, Image: &chat.ImageRef{SourceType: chat.ImageSourceFileID, Value: "file-123"}},
			},
		}},
	}

	req, err := Build(Input{Config: cfg, Envelope: env, Stream: true, APIKey: "k"})
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(req.Endpoint, "/responses"))
	require.Equal(t, "sys", req.Body["instructions"])
	require.Equal(t, true, req.Body["stream"])
	require.Equal(t, map[string]any{"effort": "medium"}, req.Body["reasoning"])
	require.Equal(t, []map[string]any{{
		"type":                "web_search_preview",
		"search_context_size": "low",
	}}, req.Body["tools"])

	input := req.Body["input"].([]map[string]any)
	require.Len(t, input, 1)
	require.Equal(t, "message", input[0]["type"])
	content := input[0]["content"].([]map[string]any)
	require.Equal(t, []map[string]any{
		{"type": "input_text", "text": "hello"},
		{"type": "input_image", "file_id": "file-123"},
	}, content)
}

func TestAnthropic_SystemAndThinking(t *testing.T) {
	cfg := baseConfig(chat.ProviderAnthropic)
	cfg.ThinkingBudget = "8000"
	cfg.SearchMode = "anthropic_web_search"

	env := chat.Envelope{
		SystemInstruction: "stay in character",
		Messages:          []chat.Message{chat.User("hi")},
	}

	req, err := Build(Input{Config: cfg, Envelope: env, APIKey: "ak"})
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(req.Endpoint, "/v1/messages"))
	require.Equal(t, "ak", req.Headers.Get("x-api-key"))
	require.Equal(t, "2023-06-01", req.Headers.Get("anthropic-version"))

	// System prompt is top-level, never a message.
	require.Equal(t, "stay in character", req.Body["system"])
	for _, m := range req.Body["messages"].([]map[string]any) {
		require.NotEqual(t, "system", m["role"])
	}

	require.Equal(t, map[string]any{
		"type":          "enabled",
		"budget_tokens": 8000,
	}, req.Body["thinking"])
	// max_tokens auto-raised to budget + headroom.
	require.Equal(t, 9024, req.Body["max_tokens"])

	require.Equal(t, []map[string]any{{
		"type": "web_search_20250305",
		"name": "web_search",
	}}, req.Body["tools"])
}

func TestAnthropic_DefaultMaxTokensAndSmallBudget(t *testing.T) {
	cfg := baseConfig(chat.ProviderAnthropic)
	req, err := Build(Input{Config: cfg, Envelope: chat.Envelope{Messages: []chat.Message{chat.User("x")}}, APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, 4096, req.Body["max_tokens"])
	_, hasThinking := req.Body["thinking"]
	require.False(t, hasThinking)

	// Budgets under the API minimum keep thinking disabled.
	cfg.ThinkingBudget = "512"
	req, err = Build(Input{Config: cfg, Envelope: chat.Envelope{Messages: []chat.Message{chat.User("x")}}, APIKey: "k"})
	require.NoError(t, err)
	_, hasThinking = req.Body["thinking"]
	require.False(t, hasThinking)
}

func TestAnthropic_DataURLImage(t *testing.T) {
	env := chat.Envelope{Messages: []chat.Message{{
		Role: chat.RoleUser,
		Parts: []chat.Part{{Type: chat.PartImage, Image: &chat.ImageRef{
			SourceType: chat.ImageSourceDataURL,
			Value:      "data:image/png;base64,aGVsbG8=",
			MIMEType:   "image/png",
		}}},
	}}}
	req, err := Build(Input{Config: baseConfig(chat.ProviderAnthropic), Envelope: env, APIKey: "k"})
	require.NoError(t, err)

	messages := req.Body["messages"].([]map[string]any)
	blocks := messages[0]["content"].([]map[string]any)
	require.Equal(t, map[string]any{
		"type": "image",
		"source": map[string]any{
			"type":       "base64",
			"media_type": "image/png",
			"data":       "aGVsbG8=",
		},
	}, blocks[0])
}

func TestGemini_PartsAndEndpoints(t *testing.T) {
	cfg := baseConfig(chat.ProviderGemini)
	cfg.SearchMode = "gemini_google_search"
	cfg.ThinkingBudget = "2048"

	env := chat.Envelope{
		SystemInstruction: "sys",
		Messages: []chat.Message{
			{
				Role: chat.RoleUser,
				Parts: []chat.Part{
					{Type: chat.PartImage, Image: &chat.ImageRef{
						SourceType: chat.ImageSourceBase64,
						Value:      "QUJD",
						MIMEType:   "image/jpeg",
					}},
					{Type: chat.PartImage, Image: &chat.ImageRef{
						SourceType: chat.ImageSourceFileURI,
						Value:      "gs://bucket/a.png",
						MIMEType:   "image/png",
					}},
				},
			},
			chat.Assistant("noted"),
		},
	}

	req, err := Build(Input{Config: cfg, Envelope: env, APIKey: "gk"})
	require.NoError(t, err)

	require.True(t, strings.HasSuffix(req.Endpoint, "/models/test-model:generateContent"), req.Endpoint)
	require.Equal(t, "gk", req.Headers.Get("x-goog-api-key"))

	contents := req.Body["contents"].([]map[string]any)
	require.Len(t, contents, 2)
	require.Equal(t, "user", contents[0]["role"])
	require.Equal(t, "model", contents[1]["role"])

	parts := contents[0]["parts"].([]map[string]any)
	require.Equal(t, []map[string]any{
		{"inline_data": map[string]any{"mime_type": "image/jpeg", "data": "QUJD"}},
		{"file_data": map[string]any{"file_uri": "gs://bucket/a.png", "mime_type": "image/png"}},
	}, parts)

	require.Equal(t, map[string]any{
		"parts": []map[string]any{{"text": "sys"}},
	}, req.Body["systemInstruction"])
	require.Equal(t, []map[string]any{{"google_search": map[string]any{}}}, req.Body["tools"])
	require.Equal(t, map[string]any{
		"thinkingConfig": map[string]any{"thinkingBudget": 2048},
	}, req.Body["generationConfig"])

	streamReq, err := Build(Input{Config: cfg, Envelope: env, Stream: true, APIKey: "gk"})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(streamReq.Endpoint, ":streamGenerateContent?alt=sse"), streamReq.Endpoint)
}

func TestGemini_URLImageUnsupported(t *testing.T) {
	env := chat.Envelope{Messages: []chat.Message{{
		Role: chat.RoleUser,
		Parts: []chat.Part{{Type: chat.PartImage, Image: &chat.ImageRef{
			SourceType: chat.ImageSourceURL,
			Value:      "https://x/a.png",
		}}},
	}}}
	_, err := Build(Input{Config: baseConfig(chat.ProviderGemini), Envelope: env, APIKey: "k"})
	_, ok := chat.AsConfigError(err)
	require.True(t, ok, "err=%v", err)
}
