package redact

// Sequence is a deterministic, unbounded generator over a fixed alphabet,
// used to derive stable per-player censored names. It behaves like an
// odometer of counters, one per "digit" of output produced so far, but
// grows a new digit lazily instead of being bound to a fixed width -- the
// same alphabet and call sequence always produce the same output.
//
// Grounded directly on original_source/src/packet_filter.rs's
// InfiniteSequence.
type Sequence struct {
	source   []byte
	pointers []int
	pos      int
}

// NewSequence builds a Sequence over source, which must be non-empty.
func NewSequence(source []byte) *Sequence {
	if len(source) == 0 {
		panic("redact: NewSequence requires a non-empty alphabet")
	}
	cp := make([]byte, len(source))
	copy(cp, source)
	return &Sequence{source: cp, pointers: []int{0}, pos: 0}
}

// Next produces the next byte in the sequence.
func (s *Sequence) Next() byte {
	if s.pos > 0 {
		s.pos--
	} else {
		s.pos = len(s.pointers) - 1
	}

	if s.pointers[s.pos] >= len(s.source) {
		if s.pos == len(s.pointers)-1 {
			s.pointers = append(s.pointers, 0)
		}
		s.pointers[s.pos] = 0
	}

	r := s.source[s.pointers[s.pos]]

	if s.pos == 0 {
		i := 0
		for {
			if i >= len(s.pointers) {
				s.pointers = append(s.pointers, 0)
				break
			}
			s.pointers[i]++
			if s.pointers[i] >= len(s.source) {
				s.pointers[i] = 0
			} else {
				break
			}
			i++
		}
	}

	return r
}

// Take collects the next n bytes from the sequence.
func (s *Sequence) Take(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}
