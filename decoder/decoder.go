// Package decoder turns raw network-layer bytes captured off the wire into
// a types.Packet (C2), and derives the minimum server-side configuration
// needed to re-serve a capture from the resulting packet list (C4).
//
// The parser is stateless and per-frame: it decodes exactly one IPv4 or
// IPv6 header, reads the next-protocol field, decodes exactly one TCP or
// UDP header, and copies the remaining bytes as payload. It does not
// reassemble fragments or TCP streams, and it does not verify checksums --
// grounded on original_source/src/packet.rs's Packet::try_parse, adapted
// from pnet_packet's typed header views to gopacket's per-layer
// DecodeFromBytes (the teacher's own decode idiom; see
// decoder/gopacketDecoder.go in the reference pack for the equivalent
// layer-by-layer dispatch on gopacket.LayerType).
package decoder

import (
	"net"

	"github.com/dreadl0ck/gopacket/layers"

	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/types"
)

// Parse decodes the network- and transport-layer headers out of data (which
// must begin at the network layer, i.e. no link-layer/Ethernet header) and
// returns the resulting Packet. localAddrs is the set of IP addresses bound
// to the interface the capture ran on; it is used to classify direction.
func Parse(data []byte, localAddrs []net.IP) (*types.Packet, error) {
	srcIP, nextProto, transportPayload, err := decodeNetworkLayer(data)
	if err != nil {
		return nil, err
	}

	protocol, srcPort, dstPort, payload, err := decodeTransportLayer(nextProto, transportPayload)
	if err != nil {
		return nil, err
	}

	direction := types.FromServer
	if isLocal(srcIP, localAddrs) {
		direction = types.ToServer
	}

	// Copy the payload: gopacket layer payloads alias the input buffer, and
	// the caller may reuse or discard data after this call returns.
	out := make([]byte, len(payload))
	copy(out, payload)

	return &types.Packet{
		Direction: direction,
		Protocol:  protocol,
		SrcPort:   srcPort,
		DstPort:   dstPort,
		Data:      out,
	}, nil
}

// decodeNetworkLayer tries IPv4 first, then IPv6, matching
// original_source/src/packet.rs's try-ipv4-else-ipv6-else-fail structure.
func decodeNetworkLayer(data []byte) (srcIP net.IP, nextProto layers.IPProtocol, payload []byte, err error) {
	var ip4 layers.IPv4
	if decErr := ip4.DecodeFromBytes(data, emptyDecodeFeedback{}); decErr == nil {
		return ip4.SrcIP, ip4.Protocol, ip4.Payload, nil
	}

	var ip6 layers.IPv6
	if decErr := ip6.DecodeFromBytes(data, emptyDecodeFeedback{}); decErr == nil {
		return ip6.SrcIP, ip6.NextHeader, ip6.Payload, nil
	}

	return nil, 0, nil, &qerrors.PacketParseError{Err: qerrors.ErrNoNetworkHeader}
}

// decodeTransportLayer decodes a TCP or UDP header from payload, per proto.
func decodeTransportLayer(proto layers.IPProtocol, payload []byte) (types.PacketProtocol, uint16, uint16, []byte, error) {
	switch proto {
	case layers.IPProtocolTCP:
		var tcp layers.TCP
		if err := tcp.DecodeFromBytes(payload, emptyDecodeFeedback{}); err != nil {
			return "", 0, 0, nil, &qerrors.PacketParseError{Err: qerrors.ErrNoTransportHeader}
		}
		return types.Tcp, uint16(tcp.SrcPort), uint16(tcp.DstPort), tcp.Payload, nil
	case layers.IPProtocolUDP:
		var udp layers.UDP
		if err := udp.DecodeFromBytes(payload, emptyDecodeFeedback{}); err != nil {
			return "", 0, 0, nil, &qerrors.PacketParseError{Err: qerrors.ErrNoTransportHeader}
		}
		return types.Udp, uint16(udp.SrcPort), uint16(udp.DstPort), udp.Payload, nil
	default:
		return "", 0, 0, nil, &qerrors.PacketParseError{Err: qerrors.ErrUnsupportedTransport}
	}
}

func isLocal(addr net.IP, localAddrs []net.IP) bool {
	for _, local := range localAddrs {
		if local.Equal(addr) {
			return true
		}
	}
	return false
}

// emptyDecodeFeedback satisfies gopacket.DecodeFeedback without recording
// truncation -- DecodeFromBytes already returns an error on truncation,
// which is all the parser needs.
type emptyDecodeFeedback struct{}

func (emptyDecodeFeedback) SetTruncated() {}
