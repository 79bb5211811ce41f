// Package facade implements the public API (§8): TCPServer, TCPClient and
// UDPPeer, each wiring a reactor, an ioctx/sockctx pool pair and one or more
// netrt.Workers behind an Init/Start/Send/CloseSocket/Stop/DeInit surface,
// grounded on network/iocp_tcpserver.h, iocp_tcpclient.h, iocp_udppeer.h and
// server/hioload.go's Config/DefaultConfig tunable-struct pattern.
package facade

import (
	"time"

	"github.com/momentics/netkit/reactor"
	"github.com/momentics/netkit/sockctx"
)

// Config holds the tunables shared by all three façades. Not every field
// applies to every façade (e.g. LivenessProbe only affects TCP workers);
// ReadTimeout, WriteTimeout and ByteOrder are carried but no façade reads
// them.
type Config struct {
	ListenAddr string // server/UDP bind address, or dial target for the client
	Workers    int    // worker threads polling the reactor; 0 means one

	IoPoolCapacity    int
	SockIdlePoolCapacity int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// LivenessProbe enables the TCP idle-timeout zero-byte probe
	// (IOCP_TCPWorkThread::_HandleError's WAIT_TIMEOUT branch).
	LivenessProbe bool

	ByteOrder int // byteorder.Order; Network by convention for wire codecs built on top
}

// dropActiveSocket unregisters sockID from rx while its fd is still valid,
// then removes it from socks, which drains its outstanding I/Os and shuts
// down/closes the underlying socket (SocketContext.Reset). Used by every
// façade's CloseSocket and by the Connect/Create cleanup that runs when the
// first receive post fails, so a registered socket never leaves the
// reactor's interest set behind when it stops being active. A failed
// RegisterConn is cleaned up with DelActiveContext alone, since that
// socket never joined the interest set.
func dropActiveSocket(rx reactor.Reactor, socks *sockctx.Pool, sockID uint32) {
	if sc, ok := socks.GetActiveContext(sockID); ok {
		_ = rx.Unregister(sockID, sc)
		sc.Release()
	}
	socks.DelActiveContext(sockID)
}

// DefaultConfig returns a baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:              1,
		IoPoolCapacity:       1000,
		SockIdlePoolCapacity: 0, // 0 => sockctx.NewPool defaults to 2x IoPoolCapacity
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LivenessProbe:        true,
	}
}
