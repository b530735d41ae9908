package chat

import "errors"

type StreamEventKind string

const (
	// StreamEventTextDelta carries one increment of assistant text.
	StreamEventTextDelta StreamEventKind = "text_delta"

	// StreamEventFallbackKey signals that the backup API key took over
	// after the primary key failed before emitting any text.
	StreamEventFallbackKey StreamEventKind = "fallback_key"

	// StreamEventDone closes a normally finished stream.
	StreamEventDone StreamEventKind = "done"
)

type StreamEvent struct {
	Kind StreamEventKind
	Text string
}

func (e StreamEvent) Done() bool { return e.Kind == StreamEventDone }

// Stream yields StreamEvent values until io.EOF.
//
// A Stream is lazy, finite, and non-restartable; Close releases the
// underlying connection and is safe to call more than once.
type Stream interface {
	Recv() (StreamEvent, error)
	Close() error
}

var ErrStreamClosed = errors.New("chat: stream closed")

// Result is the outcome of a batch generation call: the full reply text
// cut into ordered segments at the configured markers (a single segment
// when splitting is disabled).
type Result struct {
	Segments []string
}

func (r Result) Empty() bool { return len(r.Segments) == 0 }
