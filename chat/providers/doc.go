// Package providers owns the network lifecycle of a generation call: it
// builds the wire request through chat/wire, issues it with retry and
// backoff, falls back to the backup API key when the primary fails, and
// parses batch or SSE-streamed responses into text.
//
// The per-provider differences (batch text extraction, stream delta
// extraction) are small strategy values; everything else is shared.
package providers
