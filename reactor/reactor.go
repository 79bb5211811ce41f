// Package reactor implements the completion port / readiness multiplexer
// §3 describes: one per façade instance, associating a socket with a
// per-socket key (sock_id) and yielding completions carrying a byte count,
// the key, and enough to recover the originating IoContext. Linux is
// backed by epoll (readiness-based; this package performs the actual
// recv/send/accept syscall once a socket is readable, emulating a
// completion); Windows is backed by IOCP (genuinely completion-based).
package reactor

import (
	"time"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

// Key is the per-socket completion key, equal to sock_id.
type Key = uint32

// Completion is one dequeued event: either a real I/O completion (Op,
// Bytes, IO set) or a recoverable condition (TimedOut or HardReset set).
type Completion struct {
	Key       Key
	Op        ioctx.Op
	Bytes     int
	IO        *ioctx.IoContext
	TimedOut  bool
	HardReset bool // NetnameDeleted-equivalent: immediate disconnect, no probe
	Err       error
}

// Reactor is the platform completion backend a façade's workers poll against.
type Reactor interface {
	// RegisterListener associates a freshly created listening socket with
	// the reactor under key.
	RegisterListener(key Key, sc *sockctx.SocketContext) error
	// RegisterConn associates a connected (accepted or dialed) socket.
	RegisterConn(key Key, sc *sockctx.SocketContext) error
	// Unregister drops a socket from the reactor ahead of closing it.
	Unregister(key Key, sc *sockctx.SocketContext) error

	// PostRecv arms sc's inline recv context for the next incoming stream data.
	PostRecv(sc *sockctx.SocketContext) error
	// PostSend arms io (already carrying payload) for transmission on sc.
	PostSend(sc *sockctx.SocketContext, io *ioctx.IoContext) error
	// PostAccept arms io to receive the next inbound connection on the
	// listening socket sc.
	PostAccept(sc *sockctx.SocketContext, io *ioctx.IoContext) error
	// PostRecvFrom arms sc's inline recv context for the next datagram.
	PostRecvFrom(sc *sockctx.SocketContext) error
	// PostSendTo arms io (payload + destination already set) for
	// transmission on sc.
	PostSendTo(sc *sockctx.SocketContext, io *ioctx.IoContext) error

	// Wait dequeues one completion, blocking up to timeout.
	Wait(timeout time.Duration) (Completion, error)

	Close() error
}

// Lookup resolves a completion key back to its owning SocketContext, for
// backends (Linux) that need it to figure out which operation fired.
type Lookup func(key Key) (*sockctx.SocketContext, bool)
