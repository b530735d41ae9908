// Package segment cuts a live text-delta stream into ordered segments at
// configured marker tokens, used for "new bubble" and "sentence complete"
// signaling during generation.
package segment

import "strings"

// Default markers: "||" breaks a segment (new bubble), the single "|" is
// a soft sentence break. The overlap is intentional; matching is
// leftmost-first with ties broken by the longer marker.
var DefaultMarkers = []string{"||", "|"}

// Splitter is a stateful buffer over one stream. It is not safe for
// concurrent use; every generation call allocates its own.
type Splitter struct {
	markers []string
	buf     string
}

// NewSplitter configures the boundary tokens, defaulting to
// DefaultMarkers when none are given.
func NewSplitter(markers ...string) *Splitter {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Splitter{markers: markers}
}

// Push appends delta to the buffer and returns all segments completed by
// it, trimmed, in source order. All-whitespace segments between two
// markers are never emitted.
func (s *Splitter) Push(delta string) []string {
	s.buf += delta
	return s.drain(false)
}

// Flush cuts any marker-terminated segments still pending, then returns
// and clears the trimmed unterminated remainder.
func (s *Splitter) Flush() []string {
	out := s.drain(true)
	rest := strings.TrimSpace(s.buf)
	s.buf = ""
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

// DiscardRemainder clears the buffer without returning it, for forcibly
// interrupted streams.
func (s *Splitter) DiscardRemainder() {
	s.buf = ""
}

func (s *Splitter) drain(final bool) []string {
	var out []string
	for {
		idx, mlen, ok := s.match(final)
		if !ok {
			return out
		}
		if seg := strings.TrimSpace(s.buf[:idx]); seg != "" {
			out = append(out, seg)
		}
		s.buf = s.buf[idx+mlen:]
	}
}

// match finds the leftmost marker occurrence, preferring the longest
// marker at the same position. Unless final, a match that touches the end
// of the buffer is deferred when a longer marker could still complete it
// with more input.
func (s *Splitter) match(final bool) (idx, mlen int, ok bool) {
	best, bestLen := -1, 0
	for _, m := range s.markers {
		if m == "" {
			continue
		}
		i := strings.Index(s.buf, m)
		if i < 0 {
			continue
		}
		if best == -1 || i < best || (i == best && len(m) > bestLen) {
			best, bestLen = i, len(m)
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	if !final && best+bestLen == len(s.buf) && s.extendable(best, bestLen) {
		return 0, 0, false
	}
	return best, bestLen, true
}

func (s *Splitter) extendable(idx, mlen int) bool {
	matched := s.buf[idx : idx+mlen]
	for _, m := range s.markers {
		if len(m) > mlen && strings.HasPrefix(m, matched) {
			return true
		}
	}
	return false
}

// Split cuts an already-complete text in one pass.
func Split(text string, markers ...string) []string {
	sp := NewSplitter(markers...)
	out := sp.Push(text)
	return append(out, sp.Flush()...)
}
