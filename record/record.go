// Package record implements the replay record (C9): the serialized bundle
// of query parameters, derived server options, captured packets and the
// expected response, gated by a schema version.
//
// Grounded on original_source/src/options.rs (QueryReplay) and lib.rs
// (REPLAY_VERSION, the version check inside replay()).
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

// Version is the current replay schema version. Loading a record written
// with a different value fails with qerrors.WrongReplayVersionError.
const Version uint32 = 1

// QueryReplay bundles everything the replay pipeline needs: the original
// query parameters, the inferred server options, the ordered packet list,
// and the normalized response recorded at capture time.
//
// A QueryReplay is constructed once by the capture pipeline, serialized,
// and thereafter treated as immutable input by the replay pipeline except
// that the redaction filter (package redact) may mutate packet payloads and
// Value.PlayerNames as a preprocessing step before replay starts.
type QueryReplay struct {
	ReplayVersion uint32              `json:"replay_version"`
	Query         types.QueryOptions  `json:"query"`
	Server        types.ServerOptions `json:"server"`
	Packets       []types.Packet      `json:"packets"`
	Value         value.CommonValue   `json:"value"`
}

// Save writes the replay record as self-describing JSON.
func Save(w io.Writer, r *QueryReplay) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encoding replay record")
	}
	return nil
}

// Load reads and validates a replay record, rejecting schema versions other
// than Version.
func Load(r io.Reader) (*QueryReplay, error) {
	var qr QueryReplay
	if err := json.NewDecoder(r).Decode(&qr); err != nil {
		return nil, errors.Wrap(err, "decoding replay record")
	}

	if qr.ReplayVersion != Version {
		return nil, &qerrors.WrongReplayVersionError{Found: qr.ReplayVersion, Required: Version}
	}

	for i, p := range qr.Packets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
	}

	return &qr, nil
}

// FileName builds the capture-path replay filename convention:
// replay-<ISO8601-seconds-UTC>-<game>-<address>.json, grounded on
// original_source/src/options.rs's QueryOptions::as_file_name.
func FileName(opts types.QueryOptions, now time.Time) string {
	date := now.UTC().Format("2006-01-02T15:04:05Z")
	return fmt.Sprintf("replay-%s-%s-%s.json", date, opts.Game, opts.Address)
}
