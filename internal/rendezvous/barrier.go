// Package rendezvous implements the two-party ready barrier used to
// synchronize the replay server goroutine with the backend's query
// goroutine: the backend must not issue its query until the server has
// bound both its TCP listener and its UDP socket.
//
// Go's standard library has no equivalent of Rust's std::sync::Barrier, so
// this is a minimal two-party version built on a single closed channel.
package rendezvous

// Barrier is a single-use rendezvous point for exactly two parties.
type Barrier struct {
	ready chan struct{}
}

// New returns a Barrier for two parties.
func New() *Barrier {
	return &Barrier{ready: make(chan struct{})}
}

// Release signals that this party has reached the barrier. Must be called
// exactly once, by the server side, after all listening sockets are bound.
func (b *Barrier) Release() {
	close(b.ready)
}

// Wait blocks until Release has been called. Must be called by the client
// side exactly once.
func (b *Barrier) Wait() {
	<-b.ready
}
