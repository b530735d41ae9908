// Package chat is the provider-agnostic core of the chatkit pipeline.
//
// It defines the canonical message model (multi-part text/image messages),
// the outbound Envelope, the stream event union, and the error taxonomy
// shared by the context window builder, the wire adapters, and the
// provider clients.
//
// All normalization helpers are pure and total: malformed input degrades
// to a rejected row or an empty value, never a panic, so callers can skip
// unusable history rows.
package chat
