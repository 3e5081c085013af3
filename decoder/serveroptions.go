package decoder

import (
	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/types"
)

// DeriveServerOptions infers the transport(s), port(s) and scratch-buffer
// size needed to re-serve a capture (C4), directly grounded on
// original_source/src/options.rs's TryFrom<&[Packet]> for ServerOptions.
// Go has no stdlib HashSet, so the per-transport port sets are
// map[uint16]struct{} -- the idiomatic Go substitute.
func DeriveServerOptions(packets []types.Packet) (*types.ServerOptions, error) {
	tcpPorts := make(map[uint16]struct{})
	udpPorts := make(map[uint16]struct{})
	maxPacketSize := 0

	for _, p := range packets {
		port := p.ServerSidePort()

		switch p.Protocol {
		case types.Tcp:
			tcpPorts[port] = struct{}{}
		case types.Udp:
			udpPorts[port] = struct{}{}
		}

		if len(p.Data) > maxPacketSize {
			maxPacketSize = len(p.Data)
		}
	}

	if len(tcpPorts) > 1 {
		return nil, &qerrors.AmbiguousPortError{Transport: "tcp", Ports: portSlice(tcpPorts)}
	}
	if len(udpPorts) > 1 {
		return nil, &qerrors.AmbiguousPortError{Transport: "udp", Ports: portSlice(udpPorts)}
	}

	tcpPort := onlyPort(tcpPorts)
	udpPort := onlyPort(udpPorts)

	if tcpPort == nil && udpPort == nil {
		return nil, qerrors.ErrNoPort
	}

	return &types.ServerOptions{
		TCPPort:    tcpPort,
		UDPPort:    udpPort,
		PacketSize: maxPacketSize,
	}, nil
}

func portSlice(ports map[uint16]struct{}) []uint16 {
	out := make([]uint16, 0, len(ports))
	for p := range ports {
		out = append(out, p)
	}
	return out
}

func onlyPort(ports map[uint16]struct{}) *uint16 {
	for p := range ports {
		port := p
		return &port
	}
	return nil
}
