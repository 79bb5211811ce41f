// Package netrt implements the worker-thread loop common to every façade
// (§4.7): dequeue one reactor completion, recover its SocketContext and
// IoContext, and dispatch to Accept/Recv/Send handling, grounded on
// network/iocp_tcpworkthread.h (TCP) and network/iocp_udpworkthread.h (UDP).
package netrt

import (
	"time"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

// Callbacks are the façade-supplied hooks a Worker invokes as completions
// are dispatched. Each must return quickly; long work belongs on a
// workqueue.Queue, not inline here.
type Callbacks struct {
	// OnConnected fires once a newly accepted (TCP) socket has been
	// admitted to the active map and registered with the reactor, just
	// before its first receive is posted. TCPClient.Connect also fires it,
	// on the caller's goroutine, for each socket it dials.
	OnConnected func(sc *sockctx.SocketContext)
	// OnReceived fires with the bytes read into sc.Recv's buffer.
	OnReceived func(sc *sockctx.SocketContext, data []byte)
	// OnDisconnected fires at most once per socket lifetime.
	OnDisconnected func(sc *sockctx.SocketContext)
	// OnSent fires once an outstanding send IoContext's completion is observed.
	OnSent func(sc *sockctx.SocketContext, io *ioctx.IoContext)
}

// Role distinguishes the two worker flavors this spec's original source
// gives meaningfully different dispatch rules: TCP has a listener,
// zero-byte-means-close semantics, and an idle liveness probe; UDP has
// neither (there is no "connection" to probe or disconnect).
type Role int

const (
	RoleTCP Role = iota
	RoleUDP
)

// timeout returns the per-role Wait poll interval: 500ms for TCP (matching
// IOCP_TCPWorkThread's GetQueuedCompletionStatus timeout) and 50ms for UDP
// (matching IOCP_UDPWorkThread's).
func (r Role) timeout() time.Duration {
	if r == RoleUDP {
		return 50 * time.Millisecond
	}
	return 500 * time.Millisecond
}
