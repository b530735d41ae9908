package chat

import "strings"

// Envelope is the assembled outbound request payload: one system
// instruction plus the ordered canonical messages. It is built fresh for
// each call and never persisted.
type Envelope struct {
	SystemInstruction string
	Messages          []Message
}

// RawEnvelope accepts either an envelope shape or a bare message list.
type RawEnvelope struct {
	SystemInstruction string       `json:"systemInstruction"`
	Messages          []RawMessage `json:"messages"`
}

type EnvelopeOptions struct {
	// FallbackSystemInstruction is used (trimmed) when the raw envelope
	// carries no system instruction of its own.
	FallbackSystemInstruction string
}

// NormalizeEnvelope builds an Envelope from raw history, skipping rows
// that do not normalize.
func NormalizeEnvelope(raw RawEnvelope, opts EnvelopeOptions) Envelope {
	sys := strings.TrimSpace(raw.SystemInstruction)
	if sys == "" {
		sys = strings.TrimSpace(opts.FallbackSystemInstruction)
	}

	out := Envelope{SystemInstruction: sys}
	for _, rm := range raw.Messages {
		if msg, ok := NormalizeMessage(rm); ok {
			out.Messages = append(out.Messages, msg)
		}
	}
	return out
}

// EnvelopeFromMessages wraps a bare message list.
func EnvelopeFromMessages(messages []RawMessage, opts EnvelopeOptions) Envelope {
	return NormalizeEnvelope(RawEnvelope{Messages: messages}, opts)
}
