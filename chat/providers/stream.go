package providers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/lumenchat/chatkit/chat"
	"github.com/lumenchat/chatkit/chat/internal/transport"
	"github.com/lumenchat/chatkit/chat/wire"
)

var doneSentinel = []byte("[DONE]")

// GenerateStream opens a streaming call and returns a lazy, finite,
// non-restartable event sequence.
//
// Key fallback applies while zero text deltas have been emitted: a failed
// issuance or an early stream fault switches to the backup key once,
// surfacing a fallback_key event before the backup's deltas. Once text
// has flowed, any fault is terminal.
func (c *Client) GenerateStream(ctx context.Context, env chat.Envelope) (chat.Stream, error) {
	keys := c.keys()

	s := &providerStream{c: c, ctx: ctx, env: env, keys: keys}
	resp, err := c.openStream(ctx, env, keys[0])
	if err != nil {
		if chat.IsCancellation(err) {
			return nil, err
		}
		if _, ok := chat.AsConfigError(err); ok {
			return nil, err
		}
		if len(keys) < 2 {
			return nil, c.wrapErr(err)
		}
		c.noticeFallback()
		resp, err = c.openStream(ctx, env, keys[1])
		if err != nil {
			if chat.IsCancellation(err) {
				return nil, err
			}
			return nil, c.wrapErr(err)
		}
		s.keyIndex = 1
		s.pending = append(s.pending, chat.StreamEvent{Kind: chat.StreamEventFallbackKey})
	}

	s.attach(resp)
	return s, nil
}

func (c *Client) openStream(ctx context.Context, env chat.Envelope, key string) (*http.Response, error) {
	req, err := wire.Build(wire.Input{Config: c.cfg, Envelope: env, Stream: true, APIKey: key})
	if err != nil {
		return nil, err
	}
	return c.tr.PostStream(ctx, req.Endpoint, req.Headers, req.Body, c.onRetry)
}

type providerStream struct {
	c   *Client
	ctx context.Context
	env chat.Envelope

	keys     []string
	keyIndex int

	resp    *http.Response
	dec     *transport.SSEDecoder
	extract deltaExtractor

	pending []chat.StreamEvent

	emittedText bool
	closed      bool
	done        bool
}

func (s *providerStream) attach(resp *http.Response) {
	s.resp = resp
	s.dec = transport.NewSSEDecoder(resp.Body)
	s.extract = s.c.strat.newExtractor()
}

func (s *providerStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}

func (s *providerStream) Recv() (chat.StreamEvent, error) {
	if s.closed {
		return chat.StreamEvent{}, chat.ErrStreamClosed
	}
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		if ev.Kind == chat.StreamEventTextDelta {
			s.emittedText = true
		}
		return ev, nil
	}
	if s.done {
		return chat.StreamEvent{}, io.EOF
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return chat.StreamEvent{}, err
		}

		data, err := s.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Some providers close the connection without [DONE].
				s.done = true
				return chat.StreamEvent{Kind: chat.StreamEventDone}, nil
			}
			if chat.IsCancellation(err) || s.ctx.Err() != nil {
				return chat.StreamEvent{}, s.ctx.Err()
			}
			ev, backupErr, switched := s.failover(err)
			if switched {
				return ev, nil
			}
			if backupErr != nil {
				// Both keys exhausted; the backup's error wins.
				err = backupErr
			}
			return chat.StreamEvent{}, s.c.wrapErr(err)
		}

		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, doneSentinel) {
			s.done = true
			return chat.StreamEvent{Kind: chat.StreamEventDone}, nil
		}

		// Unparseable records are skipped, not fatal.
		delta, finished := s.extract.Extract(data)
		if finished {
			s.done = true
			return chat.StreamEvent{Kind: chat.StreamEventDone}, nil
		}
		if delta != "" {
			s.emittedText = true
			return chat.StreamEvent{Kind: chat.StreamEventTextDelta, Text: delta}, nil
		}
	}
}

// failover retries the whole request on the backup key when the primary
// stream failed before any text was emitted. It fires the fallback notice
// once and surfaces a fallback_key event; the fresh extractor state means
// the backup's reply streams from the beginning.
func (s *providerStream) failover(cause error) (chat.StreamEvent, error, bool) {
	if s.emittedText || s.keyIndex+1 >= len(s.keys) {
		return chat.StreamEvent{}, nil, false
	}
	s.keyIndex++
	if s.resp != nil && s.resp.Body != nil {
		s.resp.Body.Close()
	}

	s.c.noticeFallback()
	s.c.tr.Logger.Debug("chat stream failover", "cause", cause)

	resp, err := s.c.openStream(s.ctx, s.env, s.keys[s.keyIndex])
	if err != nil {
		return chat.StreamEvent{}, err, false
	}
	s.attach(resp)
	return chat.StreamEvent{Kind: chat.StreamEventFallbackKey}, nil, true
}
