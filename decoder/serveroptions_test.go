package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/types"
)

// S2 -- server-options ambiguity.
func TestDeriveServerOptions_S2_Ambiguous(t *testing.T) {
	packets := []types.Packet{
		{Direction: types.ToServer, Protocol: types.Udp, DstPort: 27015, Data: []byte{1}},
		{Direction: types.ToServer, Protocol: types.Udp, DstPort: 27016, Data: []byte{1}},
	}

	_, err := DeriveServerOptions(packets)
	require.Error(t, err)

	var ambiguous *qerrors.AmbiguousPortError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "udp", ambiguous.Transport)
	assert.ElementsMatch(t, []uint16{27015, 27016}, ambiguous.Ports)
}

// S3 -- happy path, mixed transport, same port.
func TestDeriveServerOptions_S3_MixedTransport(t *testing.T) {
	mk := func(dir types.PacketDirection, proto types.PacketProtocol, port uint16, size int) types.Packet {
		p := types.Packet{Direction: dir, Protocol: proto, Data: make([]byte, size)}
		if dir == types.ToServer {
			p.DstPort = port
		} else {
			p.SrcPort = port
		}
		return p
	}

	packets := []types.Packet{
		mk(types.ToServer, types.Udp, 27015, 100),
		mk(types.FromServer, types.Udp, 27015, 1200),
		mk(types.ToServer, types.Udp, 27015, 50),
		mk(types.ToServer, types.Tcp, 27015, 10),
		mk(types.FromServer, types.Tcp, 27015, 20),
	}

	opts, err := DeriveServerOptions(packets)
	require.NoError(t, err)

	require.NotNil(t, opts.TCPPort)
	require.NotNil(t, opts.UDPPort)
	assert.EqualValues(t, 27015, *opts.TCPPort)
	assert.EqualValues(t, 27015, *opts.UDPPort)
	assert.Equal(t, 1200, opts.PacketSize)
}

func TestDeriveServerOptions_NoPort(t *testing.T) {
	_, err := DeriveServerOptions(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, qerrors.ErrNoPort)
}

// Invariant 3: if the result is Ok, every TCP packet's server-side port
// equals tcp_port, every UDP packet's equals udp_port, and packet_size is
// at least the max observed payload length.
func TestDeriveServerOptions_Invariant3(t *testing.T) {
	packets := []types.Packet{
		{Direction: types.ToServer, Protocol: types.Tcp, DstPort: 9000, Data: make([]byte, 5)},
		{Direction: types.FromServer, Protocol: types.Tcp, SrcPort: 9000, Data: make([]byte, 9)},
	}

	opts, err := DeriveServerOptions(packets)
	require.NoError(t, err)

	for _, p := range packets {
		if p.Protocol == types.Tcp {
			assert.EqualValues(t, *opts.TCPPort, p.ServerSidePort())
		}
	}
	assert.GreaterOrEqual(t, opts.PacketSize, 9)
}
