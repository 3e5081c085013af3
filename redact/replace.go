// Package redact implements the content-redaction filter (C8): a
// length-preserving, streaming raw-byte replace primitive, a deterministic
// infinite pseudo-sequence generator used to derive censored names, and the
// name-redaction pass that ties the two together over a replay record's
// FromServer packets and its recorded CommonValue.
//
// Grounded directly on original_source/src/packet_filter.rs.
package redact

import (
	"github.com/Douile/gqreplay/internal/qerrors"
)

// replacePtr tracks one partial match of the needle in progress, mirroring
// packet_filter.rs's ReplacePtr.
type replacePtr struct {
	startPos int
	len      int
}

// RawReplace locates every non-overlapping occurrence of needle in buffer
// and overwrites it in place with replacement, returning the occurrence
// count. needle and replacement must be non-empty and the same length.
//
// The algorithm is a streaming, online matcher that tracks every currently
// partial match: for each byte at position i, every partial match the byte
// continues advances, every partial match it breaks is dropped, and a new
// partial match starts if the byte equals needle's first byte. Matches that
// reach full length are harvested and applied after the scan completes.
// Overlapping needle starts (e.g. "aa" inside "aaaa") are each tracked as
// their own match during the scan, but only the leftmost disjoint matches
// are applied and counted, so "aa" in "aaaa" counts 2.
func RawReplace(buffer, needle, replacement []byte) (int, error) {
	if len(needle) == 0 {
		return 0, &qerrors.FilterError{Err: qerrors.ErrEmptyReplace}
	}
	if len(needle) != len(replacement) {
		return 0, &qerrors.FilterError{Err: qerrors.ErrMismatchReplaceLen}
	}

	var (
		state   []replacePtr
		matches []replacePtr
	)

	for i, b := range buffer {
		for j := len(state) - 1; j >= 0; j-- {
			if needle[state[j].len] == b {
				state[j].len++
				if state[j].len >= len(needle) {
					matches = append(matches, state[j])
					state = swapRemove(state, j)
				}
			} else {
				state = swapRemove(state, j)
			}
		}

		if needle[0] == b {
			state = append(state, replacePtr{startPos: i, len: 1})
		}
	}

	// matches are in increasing startPos order; skip any that overlap one
	// already applied.
	count, next := 0, 0
	for _, m := range matches {
		if m.startPos < next {
			continue
		}
		copy(buffer[m.startPos:m.startPos+m.len], replacement)
		next = m.startPos + m.len
		count++
	}

	return count, nil
}

// StringReplace is a convenience wrapper around RawReplace for string
// needles/replacements.
func StringReplace(buffer []byte, needle, replacement string) (int, error) {
	return RawReplace(buffer, []byte(needle), []byte(replacement))
}

// swapRemove removes the element at index i by swapping it with the last
// element and truncating, the Go equivalent of Rust's Vec::swap_remove
// (order-preserving removal is not required here since state is an
// unordered working set of in-progress matches).
func swapRemove(s []replacePtr, i int) []replacePtr {
	last := len(s) - 1
	s[i] = s[last]
	return s[:last]
}
