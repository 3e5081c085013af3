// Package qerrors defines the error kinds shared across the capture and
// replay pipelines. Each kind is a distinct sentinel or typed error so
// callers can distinguish them with errors.Is/errors.As instead of string
// matching.
package qerrors

import (
	"fmt"
)

// Packet parsing failures (C2).
var (
	ErrNoNetworkHeader    = fmt.Errorf("no recognizable network layer header")
	ErrUnsupportedTransport = fmt.Errorf("unsupported transport protocol")
	ErrNoTransportHeader  = fmt.Errorf("transport header did not fit remaining payload")
)

// PacketParseError wraps one of the sentinels above. It does not retain the
// frame that failed to parse (the raw bytes may be large and are already
// available to the caller).
type PacketParseError struct {
	Err error
}

func (e *PacketParseError) Error() string {
	return fmt.Sprintf("packet parse: %s", e.Err)
}

func (e *PacketParseError) Unwrap() error {
	return e.Err
}

// Server-options inference failures (C4).
var ErrNoPort = fmt.Errorf("no server-side port observed for any transport")

// AmbiguousPortError reports that more than one server-side port was
// observed for a single transport, meaning the capture is not a single
// conversation.
type AmbiguousPortError struct {
	Transport string
	Ports     []uint16
}

func (e *AmbiguousPortError) Error() string {
	return fmt.Sprintf("ambiguous %s server port, observed %v", e.Transport, e.Ports)
}

// Capture driver failures (C3).
var ErrNoCaptureDevice = fmt.Errorf("no capture device available")

// Replay record version failures (C9).
type WrongReplayVersionError struct {
	Found, Required uint32
}

func (e *WrongReplayVersionError) Error() string {
	return fmt.Sprintf("wrong replay version: found %d, required %d", e.Found, e.Required)
}

// Replay server failures (C5).
type SendBeforeRecvError struct {
	Protocol string
}

func (e *SendBeforeRecvError) Error() string {
	return fmt.Sprintf("send before recv: %s peer never connected", e.Protocol)
}

// Redaction failures (C8).
var (
	ErrEmptyReplace        = fmt.Errorf("redact: needle must not be empty")
	ErrMismatchReplaceLen  = fmt.Errorf("redact: replacement length must equal needle length")
	ErrReplacementNotFound = fmt.Errorf("redact: name never appeared in any packet")
)

// FilterError wraps one of the redaction sentinels above.
type FilterError struct {
	Err error
}

func (e *FilterError) Error() string {
	return e.Err.Error()
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// Query-backend failures (C6) are surfaced as-is from the backend; callers
// wrap them with context using github.com/pkg/errors.Wrap at package
// boundaries rather than a dedicated type here, since the backend is a
// capability the core does not otherwise interpret.
