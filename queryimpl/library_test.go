package queryimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Douile/gqreplay/types"
)

type stubQuerier struct {
	calls    int
	failN    int
	response RawResponse
}

func (s *stubQuerier) QueryRaw(ctx context.Context, options types.QueryOptions) (RawResponse, error) {
	s.calls++
	if s.calls <= s.failN {
		return RawResponse{}, errors.New("transient failure")
	}
	return s.response, nil
}

func strp(s string) *string { return &s }
func u64p(v uint64) *uint64 { return &v }

func TestLibrary_MapsRawResponse(t *testing.T) {
	q := &stubQuerier{response: RawResponse{
		Name:           strp("My Server"),
		PlayersOnline:  u64p(2),
		PlayersMaximum: u64p(10),
		PlayerNames:    []string{"Alice", "Bob"},
	}}

	backend := NewLibrary(q)
	v, err := backend.Query(context.Background(), types.QueryOptions{Game: "valve", Address: "example.com"})
	require.NoError(t, err)

	assert.Equal(t, "My Server", *v.Name)
	assert.Len(t, v.PlayerNames, 2)
}

func TestLibrary_RetriesOnce(t *testing.T) {
	q := &stubQuerier{failN: 1, response: RawResponse{Name: strp("ok")}}

	backend := NewLibrary(q)
	_, err := backend.Query(context.Background(), types.QueryOptions{Game: "valve", Address: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, q.calls)
}

func TestLibrary_FailsAfterExhaustingRetries(t *testing.T) {
	q := &stubQuerier{failN: 100}

	backend := NewLibrary(q)
	_, err := backend.Query(context.Background(), types.QueryOptions{Game: "valve", Address: "example.com"})
	require.Error(t, err)
	assert.Equal(t, LibraryRetries+1, q.calls)
}
