// Package wire translates a canonical Envelope plus per-call Config into
// one provider's HTTP request shape. Adapters are pure: they never touch
// the network and fail only on configuration problems (missing
// apiUrl/model, image sources the protocol cannot express).
package wire

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lumenchat/chatkit/chat"
)

// Input is the shared adapter contract.
type Input struct {
	Config   chat.Config
	Envelope chat.Envelope

	// Stream selects the streaming variant of the endpoint/body.
	Stream bool

	// APIKey is the key for this attempt; the provider client swaps in
	// the backup key here on fallback.
	APIKey string
}

// Request is the provider wire request, consumed only by the transport.
type Request struct {
	Endpoint string
	Headers  http.Header
	Body     map[string]any
}

// Build dispatches to the adapter for the configured provider id.
// Unknown ids are a fatal configuration error, never retried.
func Build(in Input) (Request, error) {
	p, ok := chat.ParseProvider(string(in.Config.Provider))
	if !ok {
		return Request{}, &chat.ConfigError{
			Provider: in.Config.Provider,
			Message:  fmt.Sprintf("unknown provider id %q", string(in.Config.Provider)),
		}
	}
	switch p {
	case chat.ProviderOpenAI:
		return buildOpenAI(in)
	case chat.ProviderOpenAIResponses:
		return buildOpenAIResponses(in)
	case chat.ProviderAnthropic:
		return buildAnthropic(in)
	default:
		return buildGemini(in)
	}
}

func requireBase(cfg chat.Config) (apiURL, model string, err error) {
	apiURL = strings.TrimSpace(cfg.APIURL)
	model = strings.TrimSpace(cfg.Model)
	if apiURL == "" {
		return "", "", &chat.ConfigError{Provider: cfg.Provider, Message: "apiUrl is required"}
	}
	if model == "" {
		return "", "", &chat.ConfigError{Provider: cfg.Provider, Message: "model is required"}
	}
	return apiURL, model, nil
}

func unsupportedImage(p chat.Provider, st chat.ImageSourceType) error {
	return &chat.ConfigError{
		Provider: p,
		Message:  "image source type " + string(st) + " is not supported by this provider",
	}
}

// joinPath concatenates a base URL and path without collapsing either.
func joinPath(base, path string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, path) {
		return base
	}
	return base + path
}

func jsonHeaders(stream bool) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	if stream {
		h.Set("Accept", "text/event-stream")
	} else {
		h.Set("Accept", "application/json")
	}
	return h
}

// flattenText joins a message's text parts with blank lines.
func flattenText(m chat.Message) string {
	var texts []string
	for _, p := range m.Parts {
		if p.IsNonEmptyText() {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

func hasImage(m chat.Message) bool {
	for _, p := range m.Parts {
		if p.IsImage() {
			return true
		}
	}
	return false
}

// imageURL renders an ImageRef as a URL-shaped value for the OpenAI-style
// adapters, constructing a data URL for raw base64 sources.
func imageURL(ref chat.ImageRef) string {
	if ref.SourceType == chat.ImageSourceBase64 {
		return "data:" + ref.MIMEType + ";base64," + ref.Value
	}
	return ref.Value
}

// inlineBase64 extracts MIME type and raw base64 payload from a base64 or
// data_url source for the Anthropic and Gemini adapters.
func inlineBase64(ref chat.ImageRef) (mime, data string, ok bool) {
	switch ref.SourceType {
	case chat.ImageSourceBase64:
		return ref.MIMEType, ref.Value, true
	case chat.ImageSourceDataURL:
		mime, data, ok = chat.ParseDataURL(ref.Value)
		return mime, data, ok
	default:
		return "", "", false
	}
}

// searchContextSize extracts <size> from "openai_web_search_<size>".
func searchContextSize(mode string) (string, bool) {
	rest, found := strings.CutPrefix(strings.ToLower(strings.TrimSpace(mode)), "openai_web_search_")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}
