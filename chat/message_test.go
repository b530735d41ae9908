package chat

import "testing"

func TestNormalizeMessage_RoleMatching(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"user", RoleUser, true},
		{"USER", RoleUser, true},
		{" Assistant ", RoleAssistant, true},
		{"system", "", false},
		{"tool", "", false},
		{"", "", false},
	} {
		m, ok := NormalizeMessage(RawMessage{Role: tc.raw, Content: "hi"})
		if ok != tc.ok {
			t.Fatalf("role %q: ok=%v, want %v", tc.raw, ok, tc.ok)
		}
		if ok && m.Role != tc.want {
			t.Fatalf("role %q: got %q", tc.raw, m.Role)
		}
	}
}

func TestNormalizeMessage_PartsPrecedence(t *testing.T) {
	m, ok := NormalizeMessage(RawMessage{
		Role:    "user",
		Content: "legacy text",
		Parts:   []RawPart{{Text: "structured text"}},
	})
	if !ok {
		t.Fatal("message rejected")
	}
	if len(m.Parts) != 1 || m.Parts[0].Text != "structured text" {
		t.Fatalf("parts=%+v", m.Parts)
	}
}

func TestNormalizeMessage_DropsUnusableParts(t *testing.T) {
	m, ok := NormalizeMessage(RawMessage{
		Role: "assistant",
		Parts: []RawPart{
			{Text: "   \n\t"},
			{Image: &RawImage{SourceType: "base64", Value: "aGVsbG8="}}, // no mime
			{Text: "kept"},
		},
	})
	if !ok {
		t.Fatal("message rejected")
	}
	if len(m.Parts) != 1 || m.Parts[0].Text != "kept" {
		t.Fatalf("parts=%+v", m.Parts)
	}

	if _, ok := NormalizeMessage(RawMessage{Role: "user", Parts: []RawPart{{Text: "  "}}}); ok {
		t.Fatal("message with zero surviving parts should be rejected")
	}
}

func TestNormalizeImage_Base64RequiresMIME(t *testing.T) {
	if _, ok := NormalizeImage(RawImage{SourceType: "base64", Value: "aGVsbG8="}); ok {
		t.Fatal("base64 without mimeType should be rejected")
	}
	ref, ok := NormalizeImage(RawImage{SourceType: "base64", Value: "aGVsbG8=", MIMEType: "image/png"})
	if !ok || ref.MIMEType != "image/png" {
		t.Fatalf("ref=%+v ok=%v", ref, ok)
	}
}

func TestParseDataURL(t *testing.T) {
	mime, data, ok := ParseDataURL("data:image/png;base64,aGVsbG8=")
	if !ok {
		t.Fatal("valid data URL rejected")
	}
	if mime != "image/png" || data != "aGVsbG8=" {
		t.Fatalf("mime=%q data=%q", mime, data)
	}

	for _, bad := range []string{
		"http://example.com/a.png",
		"data:image/png,aGVsbG8=",          // not base64
		"data:;base64,aGVsbG8=",            // no mime
		"data:image/png;base64,",           // no payload
		"data:image/png;base64,!!invalid!", // bad payload
	} {
		if _, _, ok := ParseDataURL(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestNormalizeImage_DataURLCarriesMIME(t *testing.T) {
	ref, ok := NormalizeImage(RawImage{SourceType: "data_url", Value: "data:image/png;base64,aGVsbG8="})
	if !ok {
		t.Fatal("data URL image rejected")
	}
	if ref.MIMEType != "image/png" {
		t.Fatalf("mime=%q", ref.MIMEType)
	}
}

func TestNormalizeImage_DetailNormalized(t *testing.T) {
	ref, ok := NormalizeImage(RawImage{SourceType: "url", Value: "https://x/img", Detail: "LOW"})
	if !ok || ref.Detail != "low" {
		t.Fatalf("ref=%+v", ref)
	}
	ref, ok = NormalizeImage(RawImage{SourceType: "url", Value: "https://x/img", Detail: "medium"})
	if !ok || ref.Detail != "" {
		t.Fatalf("unknown detail should be dropped, got %q", ref.Detail)
	}
}

func TestMessageText(t *testing.T) {
	img := Part{Type: PartImage, Image: &ImageRef{SourceType: ImageSourceURL, Value: "https://x/img"}}

	m := Message{Role: RoleUser, Parts: []Part{TextPart("a"), img, TextPart("b")}}
	if got := MessageText(m, "[image]"); got != "a\n\nb" {
		t.Fatalf("got %q", got)
	}

	m = Message{Role: RoleUser, Parts: []Part{img}}
	if got := MessageText(m, "[image]"); got != "[image]" {
		t.Fatalf("got %q", got)
	}

	m = Message{Role: RoleUser}
	if got := MessageText(m, "[image]"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeEnvelope(t *testing.T) {
	env := NormalizeEnvelope(RawEnvelope{
		Messages: []RawMessage{
			{Role: "user", Content: "hello"},
			{Role: "narrator", Content: "skipped"},
			{Role: "assistant", Content: "hi there"},
		},
	}, EnvelopeOptions{FallbackSystemInstruction: "  be kind  "})

	if env.SystemInstruction != "be kind" {
		t.Fatalf("system=%q", env.SystemInstruction)
	}
	if len(env.Messages) != 2 {
		t.Fatalf("messages=%d", len(env.Messages))
	}

	env = NormalizeEnvelope(RawEnvelope{SystemInstruction: "explicit"}, EnvelopeOptions{FallbackSystemInstruction: "fallback"})
	if env.SystemInstruction != "explicit" {
		t.Fatalf("system=%q", env.SystemInstruction)
	}
}
