// Package replay implements the deterministic single-client replay server
// (C5): given a recorded QueryReplay, it binds the inferred ports and
// replays each packet in capture order, receiving on ToServer entries and
// sending on FromServer entries, to a single TCP stream and/or a single UDP
// peer.
//
// Grounded directly on original_source/src/server.rs. The Rust original uses
// std::sync::Barrier and std::cell::OnceCell for its two write-once latches
// (the accepted TCP stream, the learned UDP peer address); Go has neither in
// the standard library, so the latches are a small mutex-guarded struct
// (writeOnce) and the barrier is internal/rendezvous.Barrier.
package replay

import (
	"fmt"
	"net"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Douile/gqreplay/internal/logctx"
	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/internal/rendezvous"
	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/types"
)

// writeOnce is a nil-checked, mutex-guarded single-assignment slot, the Go
// stand-in for std::cell::OnceCell in this single-writer, multi-reader use.
type writeOnce[T any] struct {
	mu  sync.Mutex
	val *T
}

func (w *writeOnce[T]) get() (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.val == nil {
		var zero T
		return zero, false
	}
	return *w.val, true
}

// setIfEmpty stores v only if the slot is still unset, mirroring OnceCell's
// set-or-ignore semantics (the original discards the error from a second
// set since it only ever calls set once per slot).
func (w *writeOnce[T]) setIfEmpty(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.val == nil {
		w.val = &v
	}
}

// Server replays one recorded QueryReplay against a single client,
// dispatching captured packets in order over freshly bound TCP/UDP sockets.
type Server struct {
	Address net.IP
	Replay  *record.QueryReplay

	// Ready is released once both sockets are bound and the server is about
	// to start waiting for the first packet, letting a caller hold off
	// dialing the replay address until the listener actually exists.
	Ready *rendezvous.Barrier

	log *zap.Logger

	tcpListener *net.TCPListener
	tcpStream   writeOnce[net.Conn]

	udpConn       *net.UDPConn
	udpClientAddr writeOnce[*net.UDPAddr]
}

// New builds a Server for the given recorded replay. If ready is nil a
// Barrier is created internally and is a no-op to wait on from the outside.
func New(address net.IP, r *record.QueryReplay, ready *rendezvous.Barrier) *Server {
	if ready == nil {
		ready = rendezvous.New()
	}
	return &Server{
		Address: address,
		Replay:  r,
		Ready:   ready,
		log:     logctx.Named("replay"),
	}
}

// Run binds the sockets the recorded packets need and replays them in
// order. It returns once every packet has been dispatched.
func (s *Server) Run() error {
	if s.Replay.ReplayVersion != record.Version {
		return &qerrors.WrongReplayVersionError{Found: s.Replay.ReplayVersion, Required: record.Version}
	}

	if p := s.Replay.Server.TCPPort; p != nil {
		tcpListener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: s.Address, Port: int(*p)})
		if err != nil {
			return errors.Wrap(err, "binding tcp listener")
		}
		defer tcpListener.Close()
		s.tcpListener = tcpListener
	}

	if p := s.Replay.Server.UDPPort; p != nil {
		udpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: s.Address, Port: int(*p)})
		if err != nil {
			return errors.Wrap(err, "binding udp listener")
		}
		defer udpConn.Close()
		s.udpConn = udpConn
	}

	buf := make([]byte, s.Replay.Server.PacketSize)

	s.Ready.Release()

	for pos := 0; pos < len(s.Replay.Packets); {
		p := s.Replay.Packets[pos]

		s.log.Debug("dispatching packet",
			zap.Int("step_index", pos),
			zap.String("direction", string(p.Direction)),
			zap.String("protocol", string(p.Protocol)))

		complete, err := s.dispatch(p, buf)
		if err != nil {
			return err
		}
		if complete {
			pos++
		}
	}

	return nil
}

// TCPAddr returns the bound TCP listener address, or nil before Run has
// bound it.
func (s *Server) TCPAddr() net.Addr {
	if s.tcpListener == nil {
		return nil
	}
	return s.tcpListener.Addr()
}

// UDPAddr returns the bound UDP socket address, or nil before Run has
// bound it.
func (s *Server) UDPAddr() net.Addr {
	if s.udpConn == nil {
		return nil
	}
	return s.udpConn.LocalAddr()
}

// dispatch handles a single recorded packet, returning whether it has been
// fully satisfied (always true today -- partial TCP reads/writes are not
// retried, matching the original's unfinished TODOs around short I/O).
func (s *Server) dispatch(p types.Packet, buf []byte) (bool, error) {
	switch {
	case p.Direction == types.ToServer && p.Protocol == types.Tcp:
		return s.recvTCP(buf)
	case p.Direction == types.ToServer && p.Protocol == types.Udp:
		return s.recvUDP(buf)
	case p.Direction == types.FromServer && p.Protocol == types.Tcp:
		return s.sendTCP(p)
	case p.Direction == types.FromServer && p.Protocol == types.Udp:
		return s.sendUDP(p)
	default:
		return false, fmt.Errorf("replay: packet has invalid direction/protocol combination")
	}
}

func (s *Server) recvTCP(buf []byte) (bool, error) {
	if s.tcpListener == nil {
		return false, fmt.Errorf("replay: received tcp packet but no tcp port was derived")
	}

	if stream, ok := s.tcpStream.get(); ok {
		if _, err := stream.Read(buf); err != nil {
			return false, errors.Wrap(err, "reading tcp stream")
		}
		// TODO: Compare data
		return true, nil
	}

	conn, err := s.tcpListener.Accept()
	if err != nil {
		return false, errors.Wrap(err, "accepting tcp connection")
	}

	if _, err := conn.Read(buf); err != nil {
		return false, errors.Wrap(err, "reading tcp stream")
	}
	// TODO: Compare data

	s.tcpStream.setIfEmpty(conn)

	return true, nil
}

func (s *Server) recvUDP(buf []byte) (bool, error) {
	if s.udpConn == nil {
		return false, fmt.Errorf("replay: received udp packet but no udp port was derived")
	}

	_, clientAddr, err := s.udpConn.ReadFromUDP(buf)
	if err != nil {
		return false, errors.Wrap(err, "reading udp packet")
	}

	s.udpClientAddr.setIfEmpty(clientAddr)

	// TODO: Compare data

	return true, nil
}

func (s *Server) sendTCP(p types.Packet) (bool, error) {
	stream, ok := s.tcpStream.get()
	if !ok {
		return false, &qerrors.SendBeforeRecvError{Protocol: string(p.Protocol)}
	}

	if _, err := stream.Write(p.Data); err != nil {
		return false, errors.Wrap(err, "writing tcp stream")
	}
	// TODO: Check all sent

	return true, nil
}

func (s *Server) sendUDP(p types.Packet) (bool, error) {
	clientAddr, ok := s.udpClientAddr.get()
	if !ok {
		return false, &qerrors.SendBeforeRecvError{Protocol: string(p.Protocol)}
	}

	if _, err := s.udpConn.WriteToUDP(p.Data, clientAddr); err != nil {
		return false, errors.Wrap(err, "writing udp packet")
	}
	// TODO: Check all sent

	return true, nil
}
