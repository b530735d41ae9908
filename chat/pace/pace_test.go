package pace

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ChunksReproduceInput(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("concatenated chunks equal the input", prop.ForAll(
		func(text string) bool {
			runes := []rune(text)
			var b strings.Builder
			for len(runes) > 0 {
				chunk, rest := NextChunk(runes, DefaultLookahead)
				if chunk == "" {
					return false // no progress
				}
				b.WriteString(chunk)
				runes = rest
			}
			return b.String() == text
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestNextChunk_Sizes(t *testing.T) {
	for _, tc := range []struct {
		remaining int
		want      int
	}{
		{10, 1}, {24, 1}, {25, 2}, {80, 2}, {81, 4}, {200, 4},
		{201, 6}, {500, 6}, {501, 8}, {1000, 8}, {1001, 12},
	} {
		if got := rawChunkSize(tc.remaining); got != tc.want {
			t.Fatalf("rawChunkSize(%d)=%d, want %d", tc.remaining, got, tc.want)
		}
	}
}

func TestNextChunk_PrefersPunctuationWithinLookahead(t *testing.T) {
	// 30 chars remaining -> raw size 2; the period at offset 4 is inside
	// the lookahead window.
	text := []rune("abc. " + strings.Repeat("x", 25))
	chunk, _ := NextChunk(text, DefaultLookahead)
	if chunk != "abc." {
		t.Fatalf("chunk=%q", chunk)
	}
}

func TestNextChunk_FallsBackToWhitespace(t *testing.T) {
	// No punctuation in the window; the cut backs up to the space.
	text := []rune("ab " + strings.Repeat("x", 300))
	chunk, _ := NextChunk(text, 2)
	if chunk != "ab " {
		t.Fatalf("chunk=%q", chunk)
	}
}

func TestDelayFor(t *testing.T) {
	base := 20 * time.Millisecond
	if d := DelayFor("done.", base); d != base+sentencePauseBonus {
		t.Fatalf("sentence delay=%v", d)
	}
	if d := DelayFor("pause,", base); d != base+clausePauseBonus {
		t.Fatalf("clause delay=%v", d)
	}
	if d := DelayFor("line\n", base); d != base+clausePauseBonus {
		t.Fatalf("newline delay=%v", d)
	}
	if d := DelayFor("word", base); d != base {
		t.Fatalf("plain delay=%v", d)
	}
}

func TestReplay_Uninterrupted(t *testing.T) {
	text := "Hello there. This is a longer reply, with clauses; and an end."
	var got strings.Builder
	res := Replay(context.Background(), text, func(chunk string) {
		got.WriteString(chunk)
	}, Options{BaseDelay: time.Microsecond})

	if res.Interrupted {
		t.Fatal("unexpected interruption")
	}
	if got.String() != text || res.RenderedText != text {
		t.Fatalf("rendered=%q", res.RenderedText)
	}
	if res.ChunkCount == 0 {
		t.Fatal("chunk count is zero")
	}
}

func TestReplay_CancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	text := strings.Repeat("some words to replay. ", 50)
	var rendered strings.Builder
	chunks := 0
	res := Replay(ctx, text, func(chunk string) {
		rendered.WriteString(chunk)
		chunks++
		if chunks == 3 {
			cancel()
		}
	}, Options{BaseDelay: time.Millisecond})

	if !res.Interrupted {
		t.Fatal("expected interruption")
	}
	if res.RenderedText != rendered.String() {
		t.Fatalf("result text diverges from emitted chunks")
	}
	if res.RenderedText == "" || res.RenderedText == text {
		t.Fatalf("rendered=%q must be a strict, non-empty prefix", res.RenderedText)
	}
	if !strings.HasPrefix(text, res.RenderedText) {
		t.Fatal("rendered text is not a prefix of the input")
	}
	if res.ChunkCount != chunks {
		t.Fatalf("chunkCount=%d emitted=%d", res.ChunkCount, chunks)
	}
}

func TestReplay_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Replay(ctx, "never rendered", func(string) {
		t.Fatal("emit must not fire after cancellation")
	}, Options{})
	if !res.Interrupted || res.RenderedText != "" || res.ChunkCount != 0 {
		t.Fatalf("res=%+v", res)
	}
}

func TestReplay_EmptyInput(t *testing.T) {
	res := Replay(context.Background(), "", nil, Options{})
	if res.Interrupted || res.ChunkCount != 0 || res.RenderedText != "" {
		t.Fatalf("res=%+v", res)
	}
}
