package types

// QueryOptions are the parameters a query backend is given: which game
// protocol to speak, the address to contact, and an optional port. The
// replay pipeline substitutes Address with the replay server's loopback
// endpoint before issuing the query; nothing else about QueryOptions
// changes after capture.
type QueryOptions struct {
	Game    string `json:"game"`
	Address string `json:"address"`
	Port    *uint16 `json:"port,omitempty"`
}

// ServerOptions is the minimum server-side configuration required to
// re-serve a capture: which transport(s) were observed, on which port(s),
// and the largest payload seen (used to size the replay server's receive
// buffer). DeriveServerOptions in package decoder always sets at least one
// of TCPPort/UDPPort; see it for how this is computed and which invariants
// it enforces. A replay record that capture returns after a failed backend
// query carries a zero ServerOptions.
type ServerOptions struct {
	TCPPort    *uint16 `json:"tcp_port,omitempty"`
	UDPPort    *uint16 `json:"udp_port,omitempty"`
	PacketSize int     `json:"packet_size"`
}
