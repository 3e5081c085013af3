// Package config holds the small set of defaults the CLI needs to resolve
// flags against: the fixed replay loopback endpoint, the default subprocess
// backend paths, and the fallback server port.
//
// Grounded on original_source/src/lib.rs's replay() (the hardcoded
// 127.0.0.50 loopback address and 60000 fallback port) and
// implementations.rs's NodeImpl::default (the "node" / gamedig.js path
// defaults).
package config

import "net"

// ReplayAddress is the fixed loopback address the replay server binds to
// and the address a replaying client is redirected to query instead of the
// original capture target.
var ReplayAddress = net.IPv4(127, 0, 0, 50)

// DefaultServerPort is the fallback port number for a transport with no
// recorded server-side port. The replay server does not read it: it binds
// only the transports whose port was recorded.
const DefaultServerPort = 60000

// DefaultNodePath and DefaultGamedigPath are the Subprocess backend's
// defaults when the CLI is not given explicit overrides.
const (
	DefaultNodePath    = "node"
	DefaultGamedigPath = "./node-gamedig/bin/gamedig.js"
)
