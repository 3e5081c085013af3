package redact

import (
	"github.com/pkg/errors"

	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/types"
)

// censorAlphabet is the source alphabet used to generate censored names,
// grounded on packet_filter.rs's packet_name_replace.
const censorAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RedactNames assigns every recorded player name a same-length censored
// replacement, rewrites the FromServer packet payloads in place, and
// replaces the recorded PlayerNames with the censored set. Replacements are
// derived from a single shared Sequence, so the mapping is deterministic for
// a given set of names and iteration order.
//
// A name not found in any FromServer packet payload is not an error: a
// backend may report a name the captured traffic never echoed back
// verbatim (e.g. truncated in a server list packet).
func RedactNames(qr *record.QueryReplay) error {
	source := []byte(censorAlphabet)
	generator := NewSequence(source)

	replacements := make(map[string][]byte, len(qr.Value.PlayerNames))
	for name := range qr.Value.PlayerNames {
		replacements[name] = generator.Take(len(name))
	}

	for i := range qr.Packets {
		p := &qr.Packets[i]
		if p.Direction != types.FromServer {
			continue
		}
		for name, replacement := range replacements {
			if _, err := RawReplace(p.Data, []byte(name), replacement); err != nil {
				return errors.Wrapf(err, "redacting name %q in packet %d", name, i)
			}
		}
	}

	censored := make(map[string]struct{}, len(replacements))
	for _, replacement := range replacements {
		censored[string(replacement)] = struct{}{}
	}
	qr.Value.PlayerNames = censored

	return nil
}
