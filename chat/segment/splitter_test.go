package segment

import (
	"reflect"
	"testing"
)

func TestPush_TwoMarkersOneDelta(t *testing.T) {
	sp := NewSplitter()
	segs := sp.Push("first bubble||second sentence| and more")
	if !reflect.DeepEqual(segs, []string{"first bubble", "second sentence"}) {
		t.Fatalf("segs=%q", segs)
	}
	if rest := sp.Flush(); !reflect.DeepEqual(rest, []string{"and more"}) {
		t.Fatalf("rest=%q", rest)
	}
}

func TestPush_MarkerSplitAcrossDeltas(t *testing.T) {
	sp := NewSplitter()
	if segs := sp.Push("hello|"); len(segs) != 0 {
		// The trailing "|" may still grow into "||"; nothing may be
		// emitted yet.
		t.Fatalf("segs=%q", segs)
	}
	segs := sp.Push("|world")
	if !reflect.DeepEqual(segs, []string{"hello"}) {
		t.Fatalf("segs=%q", segs)
	}
	if rest := sp.Flush(); !reflect.DeepEqual(rest, []string{"world"}) {
		t.Fatalf("rest=%q", rest)
	}
}

func TestPush_SoftBreakResolvedByNonMarkerInput(t *testing.T) {
	sp := NewSplitter()
	sp.Push("one|")
	segs := sp.Push("two")
	if !reflect.DeepEqual(segs, []string{"one"}) {
		t.Fatalf("segs=%q", segs)
	}
}

func TestPush_DropsWhitespaceSegments(t *testing.T) {
	sp := NewSplitter()
	segs := sp.Push("a||   ||b||")
	segs = append(segs, sp.Flush()...)
	if !reflect.DeepEqual(segs, []string{"a", "b"}) {
		t.Fatalf("segs=%q", segs)
	}
}

func TestFlush_ReturnsTrimmedRemainder(t *testing.T) {
	sp := NewSplitter()
	sp.Push("  unterminated tail  ")
	if rest := sp.Flush(); !reflect.DeepEqual(rest, []string{"unterminated tail"}) {
		t.Fatalf("rest=%q", rest)
	}
	if rest := sp.Flush(); len(rest) != 0 {
		t.Fatalf("second flush=%q", rest)
	}
}

func TestFlush_ResolvesDeferredMarker(t *testing.T) {
	sp := NewSplitter()
	sp.Push("done|")
	if rest := sp.Flush(); !reflect.DeepEqual(rest, []string{"done"}) {
		t.Fatalf("rest=%q", rest)
	}
}

func TestDiscardRemainder(t *testing.T) {
	sp := NewSplitter()
	sp.Push("partial text that will be dropped")
	sp.DiscardRemainder()
	if rest := sp.Flush(); len(rest) != 0 {
		t.Fatalf("rest=%q", rest)
	}
}

func TestCustomMarkers_LeftmostLongestWins(t *testing.T) {
	sp := NewSplitter("<<<", "<<")
	segs := sp.Push("a<<<b<<c")
	segs = append(segs, sp.Flush()...)
	if !reflect.DeepEqual(segs, []string{"a", "b", "c"}) {
		t.Fatalf("segs=%q", segs)
	}
}

func TestSplit_OnePass(t *testing.T) {
	segs := Split("intro||body|outro")
	if !reflect.DeepEqual(segs, []string{"intro", "body", "outro"}) {
		t.Fatalf("segs=%q", segs)
	}
	if segs := Split("   "); len(segs) != 0 {
		t.Fatalf("segs=%q", segs)
	}
}
