package replay

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Douile/gqreplay/internal/rendezvous"
	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

// S7 -- end-to-end replay: a 6-packet UDP exchange whose FromServer packets
// carry the names recorded in value.PlayerNames; a trivial test backend
// that just echoes what it reads back into a CommonValue must match.
func TestServer_S7_EndToEnd(t *testing.T) {
	port := uint16(0) // ephemeral, not the recorded-traffic default of 60000
	replay := &record.QueryReplay{
		ReplayVersion: record.Version,
		Server:        types.ServerOptions{UDPPort: &port, PacketSize: 64},
		Packets: []types.Packet{
			{Direction: types.ToServer, Protocol: types.Udp, Data: []byte("ping1")},
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("Alice")},
			{Direction: types.ToServer, Protocol: types.Udp, Data: []byte("ping2")},
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("Bob")},
			{Direction: types.ToServer, Protocol: types.Udp, Data: []byte("ping3")},
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("done")},
		},
		Value: value.CommonValue{
			PlayerNames: value.NewPlayerNames("Alice", "Bob"),
		},
	}

	ready := rendezvous.New()
	srv := New(net.ParseIP("127.0.0.1"), replay, ready)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	ready.Wait()

	addr := srv.UDPAddr().(*net.UDPAddr)
	client, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer client.Close()
	client.SetDeadline(time.Now().Add(2 * time.Second))

	got := value.NewPlayerNames()
	buf := make([]byte, 64)

	for _, want := range []string{"ping1", "ping2", "ping3"} {
		_, err := client.Write([]byte(want))
		require.NoError(t, err)

		n, err := client.Read(buf)
		require.NoError(t, err)
		reply := string(buf[:n])
		if reply == "Alice" || reply == "Bob" {
			got[reply] = struct{}{}
		}
	}

	require.NoError(t, <-done)

	gotValue := value.CommonValue{PlayerNames: got}
	assert.True(t, gotValue.Equal(replay.Value), gotValue.Diff(replay.Value))
}

// A UDP-only replay must not bind a TCP listener at all.
func TestServer_UDPOnly_NoTCPListenerBound(t *testing.T) {
	port := uint16(0)
	replay := &record.QueryReplay{
		ReplayVersion: record.Version,
		Server:        types.ServerOptions{UDPPort: &port, PacketSize: 16},
		Packets: []types.Packet{
			{Direction: types.ToServer, Protocol: types.Udp, Data: []byte("ping")},
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("pong")},
		},
	}

	ready := rendezvous.New()
	srv := New(net.ParseIP("127.0.0.1"), replay, ready)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	ready.Wait()

	assert.Nil(t, srv.TCPAddr())

	addr := srv.UDPAddr().(*net.UDPAddr)
	client, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer client.Close()
	client.SetDeadline(time.Now().Add(2 * time.Second))

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 16)
	_, err = client.Read(buf)
	require.NoError(t, err)

	require.NoError(t, <-done)
}

func TestServer_S9_SendBeforeRecv(t *testing.T) {
	port := uint16(0)
	replay := &record.QueryReplay{
		ReplayVersion: record.Version,
		Server:        types.ServerOptions{UDPPort: &port, PacketSize: 16},
		Packets: []types.Packet{
			{Direction: types.FromServer, Protocol: types.Udp, Data: []byte("oops")},
		},
	}

	srv := New(net.ParseIP("127.0.0.1"), replay, nil)
	err := srv.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send before recv")
}
