// Package queryimpl implements the query-backend contract (C6): the
// capability a game-query client exposes to both the capture and replay
// pipelines, plus two concrete backends exercising the two mapping shapes
// the original design distinguishes (a native-library-style backend and a
// subprocess/JSON-style backend).
package queryimpl

import (
	"context"

	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

// Backend is the query capability: given QueryOptions, produce the
// normalized response or fail. Dispatch between concrete backends is by
// which Backend value the caller holds, not by inheritance -- new backends
// plug in by implementing this one method.
type Backend interface {
	Query(ctx context.Context, options types.QueryOptions) (value.CommonValue, error)
}
