package queryimpl

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

// LibraryTimeout and LibraryRetries bound every query issued through
// Library, per the read/write timeout and retry budget the contract names.
const (
	LibraryTimeout = 5 * time.Second
	LibraryRetries = 1
)

// LowLevelQuerier is the seam a real native game-query library would fill in
// underneath Library: a single raw query returning a loosely-typed response
// shaped like the library's own native result type.
type LowLevelQuerier interface {
	QueryRaw(ctx context.Context, options types.QueryOptions) (RawResponse, error)
}

// RawResponse mirrors the fields a native query library typically exposes
// directly (as opposed to the nested JSON object a subprocess backend must
// be parsed out of) -- grounded on
// gamedig::protocols::types::CommonResponseJson in
// original_source/src/value.rs.
type RawResponse struct {
	Name           *string
	Map            *string
	HasPassword    *bool
	PlayersOnline  *uint64
	PlayersMaximum *uint64
	PlayerNames    []string
}

// Library is the "links a native query library" backend. It wraps a
// LowLevelQuerier with a bounded retry loop and maps the raw response into
// the common shape.
type Library struct {
	Querier LowLevelQuerier
	Timeout time.Duration
	Retries int
}

// NewLibrary builds a Library backend with the default timeout and retry
// budget.
func NewLibrary(querier LowLevelQuerier) *Library {
	return &Library{Querier: querier, Timeout: LibraryTimeout, Retries: LibraryRetries}
}

// Query issues the raw query, retrying up to Retries times on failure, and
// maps the result into a CommonValue.
func (l *Library) Query(ctx context.Context, options types.QueryOptions) (value.CommonValue, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = LibraryTimeout
	}
	retries := l.Retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		raw, err := l.queryOnce(ctx, options, timeout)
		if err == nil {
			return mapRawResponse(raw), nil
		}
		lastErr = err
	}

	return value.CommonValue{}, errors.Wrap(lastErr, "library backend query failed")
}

func (l *Library) queryOnce(ctx context.Context, options types.QueryOptions, timeout time.Duration) (RawResponse, error) {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return l.Querier.QueryRaw(qctx, options)
}

// mapRawResponse mirrors value.rs's
// From<gamedig::protocols::types::CommonResponseJson> impl.
func mapRawResponse(raw RawResponse) value.CommonValue {
	return value.CommonValue{
		Name:           raw.Name,
		Map:            raw.Map,
		HasPassword:    raw.HasPassword,
		PlayersOnline:  raw.PlayersOnline,
		PlayersMaximum: raw.PlayersMaximum,
		PlayerNames:    value.NewPlayerNames(raw.PlayerNames...),
	}
}
