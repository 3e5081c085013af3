// Package types holds the wire-level record shapes shared by the capture
// and replay pipelines: the per-frame Packet record (C1), the derived
// ServerOptions (C4 output) and the QueryOptions a backend is given. These
// are deliberately plain data — no behavior beyond validation and JSON
// (de)serialization — mirroring the teacher's separation of record shapes
// (its protobuf-generated types package) from the decoders that build them.
package types

import (
	"encoding/json"
	"fmt"
)

// PacketDirection labels which side of the capture originated a frame,
// relative to the host that ran the capture.
type PacketDirection string

const (
	// ToServer frames originated from a local interface address.
	ToServer PacketDirection = "ToServer"
	// FromServer frames originated from the remote peer.
	FromServer PacketDirection = "FromServer"
)

func (d PacketDirection) valid() bool {
	return d == ToServer || d == FromServer
}

// PacketProtocol is the transport a frame used.
type PacketProtocol string

const (
	Tcp PacketProtocol = "Tcp"
	Udp PacketProtocol = "Udp"
)

func (p PacketProtocol) valid() bool {
	return p == Tcp || p == Udp
}

// Packet is the canonical in-memory form of one captured frame, after the
// network and transport headers have been stripped. Packets are immutable
// after parsing except that the redaction filter (C8) may rewrite Data in
// place for FromServer frames.
type Packet struct {
	Direction PacketDirection `json:"direction"`
	Protocol  PacketProtocol  `json:"protocol"`
	SrcPort   uint16          `json:"src_port"`
	DstPort   uint16          `json:"dst_port"`
	Data      []byte          `json:"data"`
}

// packetJSON mirrors Packet but represents Data as a plain JSON array of
// byte values rather than base64, matching the original implementation's
// serde Vec<u8> rendering and keeping captures diffable by eye.
type packetJSON struct {
	Direction PacketDirection `json:"direction"`
	Protocol  PacketProtocol  `json:"protocol"`
	SrcPort   uint16          `json:"src_port"`
	DstPort   uint16          `json:"dst_port"`
	Data      []int           `json:"data"`
}

// MarshalJSON renders Data as an array of integers instead of base64.
func (p Packet) MarshalJSON() ([]byte, error) {
	data := make([]int, len(p.Data))
	for i, b := range p.Data {
		data[i] = int(b)
	}

	return json.Marshal(packetJSON{
		Direction: p.Direction,
		Protocol:  p.Protocol,
		SrcPort:   p.SrcPort,
		DstPort:   p.DstPort,
		Data:      data,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Packet) UnmarshalJSON(raw []byte) error {
	var pj packetJSON
	if err := json.Unmarshal(raw, &pj); err != nil {
		return err
	}

	data := make([]byte, len(pj.Data))
	for i, v := range pj.Data {
		if v < 0 || v > 0xff {
			return fmt.Errorf("packet data byte %d out of range: %d", i, v)
		}
		data[i] = byte(v)
	}

	p.Direction = pj.Direction
	p.Protocol = pj.Protocol
	p.SrcPort = pj.SrcPort
	p.DstPort = pj.DstPort
	p.Data = data

	return nil
}

// Validate reports whether the enum-typed fields hold one of their known
// values. Called after UnmarshalJSON so a corrupt replay file fails fast
// instead of silently carrying an empty PacketDirection/PacketProtocol.
func (p Packet) Validate() error {
	if !p.Direction.valid() {
		return fmt.Errorf("packet: invalid direction %q", p.Direction)
	}
	if !p.Protocol.valid() {
		return fmt.Errorf("packet: invalid protocol %q", p.Protocol)
	}
	return nil
}

// ServerSidePort returns the port number that belongs to the server for
// this packet: the destination port for ToServer frames, the source port
// for FromServer frames.
func (p Packet) ServerSidePort() uint16 {
	if p.Direction == ToServer {
		return p.DstPort
	}
	return p.SrcPort
}
