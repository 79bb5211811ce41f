// Package sockctx implements SocketContext, the per-socket shell tracked by
// a façade, and its pool (idle list + active map), grounded on
// network/iocp_base.h.
package sockctx

import (
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/momentics/netkit/ioctx"
)

// Handle abstracts the OS socket handle (fd on Linux, windows.Handle on
// Windows) as a plain integer, which both platforms' raw handles fit into.
type Handle int

// SocketContext is the per-socket shell: the handle, its stable id, the
// inline receive IoContext, and the outstanding (send/accept) IoContexts.
type SocketContext struct {
	Sock     Handle
	SockID   uint32
	Local    netip.AddrPort
	IsListen bool

	// Recv is the dedicated inline receive context, present for the
	// socket's whole active life; it never moves into Outstanding.
	Recv ioctx.IoContext

	ioMu        sync.Mutex
	outstanding []*ioctx.IoContext

	pool *ioctx.Pool

	refs   atomic.Int32
	closed atomic.Bool
}

func newSocketContext(pool *ioctx.Pool) *SocketContext {
	return &SocketContext{pool: pool}
}

// AddOutstanding records io as in-flight for this socket (a send or an
// accept issued through it).
func (s *SocketContext) AddOutstanding(io *ioctx.IoContext) {
	s.ioMu.Lock()
	s.outstanding = append(s.outstanding, io)
	s.ioMu.Unlock()
}

// RemoveContext returns io to the pool and drops it from the outstanding
// list. Used on send completion and on accept-context retirement.
func (s *SocketContext) RemoveContext(io *ioctx.IoContext) {
	s.ioMu.Lock()
	for i, c := range s.outstanding {
		if c == io {
			s.outstanding = append(s.outstanding[:i], s.outstanding[i+1:]...)
			break
		}
	}
	s.ioMu.Unlock()
	s.pool.Put(io)
}

// Retain increments the shared-ownership refcount; a worker holding a
// SocketContext for the duration of a completion dispatch calls this so a
// concurrent active-map removal can't free it out from under the dispatch.
func (s *SocketContext) Retain() { s.refs.Add(1) }

// Release decrements the refcount.
func (s *SocketContext) Release() { s.refs.Add(-1) }

// MarkClosedOnce reports true the first time it is called for this
// context's current lifetime, false on every subsequent call, enforcing
// "duplicate disconnect callbacks for the same sock_id are forbidden".
func (s *SocketContext) MarkClosedOnce() bool {
	return s.closed.CompareAndSwap(false, true)
}

// Reset shuts down and closes Sock if it is still valid, drains all
// outstanding I/Os back to the pool, resets the inline recv context, and
// clears socket-identifying fields, matching _IOCP_SocketContext::Reset
// (shutdown(sock_, SD_SEND); closesocket(sock_)). Safe to call more than
// once for the same socket: closeHandle is a no-op once Sock is already 0.
func (s *SocketContext) Reset() {
	closeHandle(s.Sock)

	s.ioMu.Lock()
	pending := s.outstanding
	s.outstanding = nil
	s.ioMu.Unlock()
	for _, io := range pending {
		s.pool.Put(io)
	}
	s.Recv.Reset()
	s.Local = netip.AddrPort{}
	s.IsListen = false
	s.Sock = 0
	s.SockID = 0
	s.closed.Store(false)
	s.refs.Store(0)
}
