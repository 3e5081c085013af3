package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

func TestRedactNames_RewritesFromServerPacketsOnly(t *testing.T) {
	qr := &record.QueryReplay{
		ReplayVersion: record.Version,
		Packets: []types.Packet{
			{Direction: types.ToServer, Protocol: types.Udp, Data: []byte("request for Alice")},
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("welcome Alice and Bob")},
		},
		Value: value.CommonValue{
			PlayerNames: value.NewPlayerNames("Alice", "Bob"),
		},
	}

	originalToServer := string(qr.Packets[0].Data)

	require.NoError(t, RedactNames(qr))

	assert.Equal(t, originalToServer, string(qr.Packets[0].Data))
	assert.NotContains(t, string(qr.Packets[1].Data), "Alice")
	assert.NotContains(t, string(qr.Packets[1].Data), "Bob")

	assert.Len(t, qr.Value.PlayerNames, 2)
	for name := range qr.Value.PlayerNames {
		assert.NotContains(t, []string{"Alice", "Bob"}, name)
	}
}

func TestRedactNames_DeterministicMapping(t *testing.T) {
	build := func() *record.QueryReplay {
		return &record.QueryReplay{
			Packets: []types.Packet{
				{Direction: types.FromServer, Data: []byte("Alice joined")},
			},
			Value: value.CommonValue{PlayerNames: value.NewPlayerNames("Alice")},
		}
	}

	a := build()
	b := build()

	require.NoError(t, RedactNames(a))
	require.NoError(t, RedactNames(b))

	assert.Equal(t, a.Packets[0].Data, b.Packets[0].Data)
	assert.Equal(t, a.Value.PlayerNames, b.Value.PlayerNames)
}

func TestRedactNames_NameNotInAnyPacketIsNotAnError(t *testing.T) {
	qr := &record.QueryReplay{
		Packets: []types.Packet{
			{Direction: types.FromServer, Data: []byte("empty server list")},
		},
		Value: value.CommonValue{PlayerNames: value.NewPlayerNames("Ghost")},
	}

	require.NoError(t, RedactNames(qr))
	assert.Len(t, qr.Value.PlayerNames, 1)
}
