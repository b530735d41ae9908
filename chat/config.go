package chat

import (
	"strconv"
	"strings"
)

// Provider is the canonical identifier of a wire protocol family.
type Provider string

const (
	ProviderOpenAI          Provider = "openai"
	ProviderOpenAIResponses Provider = "openai_responses"
	ProviderAnthropic       Provider = "anthropic"
	ProviderGemini          Provider = "gemini"
)

// ParseProvider matches a configured provider id case-insensitively
// against the closed provider set.
func ParseProvider(raw string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderOpenAIResponses:
		return ProviderOpenAIResponses, true
	case ProviderAnthropic:
		return ProviderAnthropic, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// Config is the per-call configuration consumed by the wire adapters and
// provider clients. It is supplied by the surrounding application (see
// the config package for the file/env-backed loader).
type Config struct {
	Provider Provider

	// APIURL is the provider base endpoint, without the chat path for
	// OpenAI-style providers and without the model segment for Gemini.
	APIURL string
	Model  string

	APIKey       string
	BackupAPIKey string

	SystemPrompt string

	// ThinkingBudget is either a reasoning-effort level ("low", "medium",
	// "high") for the OpenAI adapters or a decimal token budget for the
	// Anthropic and Gemini adapters.
	ThinkingBudget string

	// SearchMode enables provider web search: "openai_web_search_<size>",
	// "anthropic_web_search", or "gemini_google_search".
	SearchMode string

	// MaxContextTokens is the total context budget split between input
	// and reserved output by the window builder.
	MaxContextTokens int

	// MaxContextMessages caps history length; 0 means uncapped.
	MaxContextMessages int

	EnablePseudoStream bool
}

// ThinkingLevel returns the reasoning-effort level when ThinkingBudget is
// a level string.
func (c Config) ThinkingLevel() (string, bool) {
	switch strings.ToLower(strings.TrimSpace(c.ThinkingBudget)) {
	case "low":
		return "low", true
	case "medium":
		return "medium", true
	case "high":
		return "high", true
	default:
		return "", false
	}
}

// ThinkingTokens returns the token budget when ThinkingBudget is a
// positive decimal integer.
func (c Config) ThinkingTokens() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.ThinkingBudget))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
