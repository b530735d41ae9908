// Package pace replays an already-complete text progressively at a
// readable, human-like speed, simulating streaming for batch responses.
package pace

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultBaseDelay is the inter-chunk wait before punctuation bonuses.
	DefaultBaseDelay = 20 * time.Millisecond

	// DefaultLookahead is how far past the raw cut point the chunker
	// searches for a punctuation boundary, in characters.
	DefaultLookahead = 8

	sentencePauseBonus = 35 * time.Millisecond
	clausePauseBonus   = 20 * time.Millisecond
)

type Options struct {
	BaseDelay time.Duration
	Lookahead int
}

// Result reports a replay. RenderedText is always a prefix of the input
// and is reproducible when the replay runs uninterrupted.
type Result struct {
	RenderedText string
	Interrupted  bool
	ChunkCount   int
}

// Replay emits text chunk by chunk with pacing delays. Cancellation is
// cooperative: ctx is checked before each chunk emission and during each
// wait, and chunk emission is atomic, so on cancellation the result holds
// exactly the chunks already emitted.
func Replay(ctx context.Context, text string, emit func(chunk string), opts Options) Result {
	base := opts.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	lookahead := opts.Lookahead
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}

	var rendered strings.Builder
	runes := []rune(text)
	count := 0
	for len(runes) > 0 {
		if ctx.Err() != nil {
			return Result{RenderedText: rendered.String(), Interrupted: true, ChunkCount: count}
		}

		chunk, rest := NextChunk(runes, lookahead)
		if emit != nil {
			emit(chunk)
		}
		rendered.WriteString(chunk)
		count++
		runes = rest

		if len(runes) == 0 {
			break
		}
		if err := sleep(ctx, DelayFor(chunk, base)); err != nil {
			return Result{RenderedText: rendered.String(), Interrupted: true, ChunkCount: count}
		}
	}
	return Result{RenderedText: rendered.String(), ChunkCount: count}
}

// NextChunk cuts the next chunk off runes. The raw size scales inversely
// with the remaining length; the cut point then searches forward within
// the lookahead window for punctuation or a newline, else backward for
// whitespace, else stays put. Concatenating all chunks reproduces the
// input exactly.
func NextChunk(runes []rune, lookahead int) (chunk string, rest []rune) {
	n := rawChunkSize(len(runes))
	if n >= len(runes) {
		return string(runes), nil
	}

	cut := n
	limit := n + lookahead
	if limit > len(runes) {
		limit = len(runes)
	}
	found := false
	for j := n; j <= limit; j++ {
		if isSentencePunct(runes[j-1]) || isClausePunct(runes[j-1]) || runes[j-1] == '\n' {
			cut = j
			found = true
			break
		}
	}
	if !found {
		for j := n; j >= 2; j-- {
			if isSpace(runes[j-1]) {
				cut = j
				found = true
				break
			}
		}
	}
	if !found {
		cut = n
	}
	return string(runes[:cut]), runes[cut:]
}

// DelayFor is the pause after a chunk: base, plus a sentence or clause
// bonus depending on the chunk's final character.
func DelayFor(chunk string, base time.Duration) time.Duration {
	runes := []rune(chunk)
	if len(runes) == 0 {
		return base
	}
	last := runes[len(runes)-1]
	switch {
	case isSentencePunct(last):
		return base + sentencePauseBonus
	case isClausePunct(last) || last == '\n':
		return base + clausePauseBonus
	default:
		return base
	}
}

func rawChunkSize(remaining int) int {
	switch {
	case remaining <= 24:
		return 1
	case remaining <= 80:
		return 2
	case remaining <= 200:
		return 4
	case remaining <= 500:
		return 6
	case remaining <= 1000:
		return 8
	default:
		return 12
	}
}

func isSentencePunct(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

func isClausePunct(r rune) bool {
	switch r {
	case ',', ';', ':', '，', '、', '；', '：':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
