package netrt

import (
	"sync"
	"time"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/reactor"
	"github.com/momentics/netkit/sockctx"
	"github.com/momentics/netkit/thread"
)

// Worker is the goroutine that drains one reactor's completions and
// dispatches Accept/Recv/Send events to Callbacks. One Worker per façade
// instance is typical; façades with a listener pass it in so accepted
// connections can be re-armed.
type Worker struct {
	role     Role
	rx       reactor.Reactor
	socks    *sockctx.Pool
	ioPool   *ioctx.Pool
	cb       Callbacks
	listener *sockctx.SocketContext // nil for client/UDP workers
	probe    bool                   // TCP only: zero-byte liveness probe on idle timeout

	assignedMu sync.Mutex
	assigned   map[uint32]*sockctx.SocketContext

	t *thread.Thread
}

// New constructs a Worker for role. listener is the listening
// SocketContext for a TCP server worker, or nil otherwise. probe gates the
// TCP idle-timeout liveness check (ignored for UDP, which has no
// connection to probe).
func New(role Role, rx reactor.Reactor, socks *sockctx.Pool, ioPool *ioctx.Pool, cb Callbacks, listener *sockctx.SocketContext, probe bool) *Worker {
	w := &Worker{
		role:     role,
		rx:       rx,
		socks:    socks,
		ioPool:   ioPool,
		cb:       cb,
		listener: listener,
		probe:    probe && role == RoleTCP,
		assigned: make(map[uint32]*sockctx.SocketContext),
	}
	w.t = thread.New("netrt-worker", w.run)
	return w
}

// Start launches the worker loop.
func (w *Worker) Start() error { return w.t.Start() }

// Stop requests the loop to exit and waits up to timeout for it to do so.
func (w *Worker) Stop(timeout time.Duration) error { return w.t.Stop(timeout) }

func (w *Worker) track(sc *sockctx.SocketContext) {
	w.assignedMu.Lock()
	w.assigned[sc.SockID] = sc
	w.assignedMu.Unlock()
}

func (w *Worker) untrack(sockID uint32) {
	w.assignedMu.Lock()
	delete(w.assigned, sockID)
	w.assignedMu.Unlock()
}

func (w *Worker) snapshotAssigned() []*sockctx.SocketContext {
	w.assignedMu.Lock()
	defer w.assignedMu.Unlock()
	out := make([]*sockctx.SocketContext, 0, len(w.assigned))
	for _, sc := range w.assigned {
		out = append(out, sc)
	}
	return out
}

func (w *Worker) run(t *thread.Thread) {
	for !t.Signalled() {
		c, err := w.rx.Wait(w.role.timeout())
		if err != nil {
			continue
		}
		if c.TimedOut {
			if w.probe {
				w.probeIdle()
			}
			continue
		}
		if c.HardReset {
			w.disconnectByKey(c.Key)
			continue
		}

		sc, ok := w.socks.GetActiveContext(c.Key)
		if !ok {
			if c.Op == ioctx.OpAccept && w.listener != nil && c.Key == w.listener.SockID {
				w.handleAccept(w.listener, c.IO)
			}
			continue
		}

		// A zero-byte Recv is the peer's orderly close. A zero-byte Send is
		// just "sent nothing" unless paired with a socket error — a full
		// send buffer reports EAGAIN, not a completed zero-byte send, so
		// this never fires on backpressure alone.
		if c.Bytes == 0 && w.role == RoleTCP && (c.Op == ioctx.OpRecv || (c.Op == ioctx.OpSend && c.Err != nil)) {
			w.disconnect(sc)
			sc.Release()
			continue
		}

		switch c.Op {
		case ioctx.OpAccept:
			w.handleAccept(sc, c.IO)
		case ioctx.OpRecv:
			w.handleRecv(sc, c.IO)
		case ioctx.OpSend:
			w.handleSend(sc, c.IO)
		}
		sc.Release()
	}
}

func (w *Worker) handleAccept(listener *sockctx.SocketContext, io *ioctx.IoContext) {
	newSC := w.socks.Get()
	newSC.Sock = sockctx.Handle(io.AcceptedFD)
	newSC.SockID = uint32(io.AcceptedFD)
	newSC.Local = io.PeerAddr
	io.AcceptedFD = -1 // the socket now belongs to newSC; io.Reset must not close it
	w.socks.AddActiveContext(newSC.SockID, newSC)
	w.track(newSC)

	if err := w.rx.RegisterConn(newSC.SockID, newSC); err != nil {
		id := newSC.SockID
		w.socks.DelActiveContext(id)
		w.untrack(id)
		io.Reset()
		w.rearmAccept(listener, io)
		return
	}

	if w.cb.OnConnected != nil {
		w.call(func() { w.cb.OnConnected(newSC) })
	}
	if err := w.rx.PostRecv(newSC); err != nil {
		w.disconnect(newSC)
	}

	io.Reset()
	w.rearmAccept(listener, io)
}

func (w *Worker) rearmAccept(listener *sockctx.SocketContext, io *ioctx.IoContext) {
	_ = w.rx.PostAccept(listener, io)
}

func (w *Worker) handleRecv(sc *sockctx.SocketContext, io *ioctx.IoContext) {
	if io == nil {
		return
	}
	n := io.TransferredLen
	if w.cb.OnReceived != nil {
		w.call(func() { w.cb.OnReceived(sc, io.Buf[:n]) })
	}
	if w.role == RoleUDP {
		_ = w.rx.PostRecvFrom(sc)
	} else if err := w.rx.PostRecv(sc); err != nil {
		w.disconnect(sc)
	}
}

func (w *Worker) handleSend(sc *sockctx.SocketContext, io *ioctx.IoContext) {
	if w.cb.OnSent != nil {
		w.call(func() { w.cb.OnSent(sc, io) })
	}
	sc.RemoveContext(io)
}

// call runs one user callback, recovering any panic it raises so the
// failure stays confined to that one dispatch.
func (w *Worker) call(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func (w *Worker) disconnect(sc *sockctx.SocketContext) {
	if !sc.MarkClosedOnce() {
		return
	}
	id := sc.SockID
	_ = w.rx.Unregister(id, sc)
	w.socks.DelActiveContext(id)
	w.untrack(id)
	if w.cb.OnDisconnected != nil {
		w.call(func() { w.cb.OnDisconnected(sc) })
	}
}

func (w *Worker) disconnectByKey(key uint32) {
	sc, ok := w.socks.GetActiveContext(key)
	if !ok {
		return
	}
	w.disconnect(sc)
	sc.Release()
}

func (w *Worker) probeIdle() {
	for _, sc := range w.snapshotAssigned() {
		if err := probeAlive(sc.Sock); err != nil {
			w.disconnect(sc)
		}
	}
}
