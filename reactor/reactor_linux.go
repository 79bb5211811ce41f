//go:build linux

// Linux epoll(7)-based Reactor, adapted from the teacher's epoll wiring
// (reactor_linux.go) and extended from plain readiness events to the
// byte-count-bearing Completion this spec's workers expect.
package reactor

import (
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

// linuxReactor emulates IOCP-style completions on top of epoll, which is
// readiness-based: Post* calls record intent and try the recv/send/accept
// syscall inline right away; an operation that would block is retried
// once epoll reports the fd ready, inside Wait.
type linuxReactor struct {
	epfd   int
	lookup Lookup

	mu      sync.Mutex
	sockets map[Key]*sockState

	// completed holds finished operations (performed inline in Post*, or
	// resolved during Wait's own readiness scan) so Wait has a single place
	// to drain results from.
	completed chan Completion
}

type sockState struct {
	fd            int
	isListen      bool
	isUDP         bool
	recvArm       bool
	pendingAccept []*ioctx.IoContext

	// pendingSend holds writes deferred by EAGAIN, retried once epoll
	// reports the fd writable. writeArmed tracks whether EPOLLOUT is
	// currently part of this fd's registered interest set.
	pendingSend []*ioctx.IoContext
	writeArmed  bool
}

// New constructs the platform Reactor (epoll on Linux). lookup resolves a
// completion key to its SocketContext.
func New(lookup Lookup) (Reactor, error) {
	return NewLinux(lookup)
}

// NewLinux constructs an epoll-backed Reactor. lookup resolves a
// completion key to its SocketContext.
func NewLinux(lookup Lookup) (Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &linuxReactor{
		epfd:      epfd,
		lookup:    lookup,
		sockets:   make(map[Key]*sockState),
		completed: make(chan Completion, 256),
	}, nil
}

func (r *linuxReactor) register(key Key, fd int, isListen, isUDP bool) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET}
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = uint64(key)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return err
	}
	r.mu.Lock()
	r.sockets[key] = &sockState{fd: fd, isListen: isListen, isUDP: isUDP}
	r.mu.Unlock()
	return nil
}

func (r *linuxReactor) RegisterListener(key Key, sc *sockctx.SocketContext) error {
	return r.register(key, int(sc.Sock), true, false)
}

func (r *linuxReactor) RegisterConn(key Key, sc *sockctx.SocketContext) error {
	return r.register(key, int(sc.Sock), false, false)
}

// RegisterUDP associates a datagram socket with the reactor, marked for
// recvfrom semantics from the start. UDP has no accept/connect step. The
// façades do not call it: facade.UDPPeer registers through RegisterConn and
// relies on PostRecvFrom to switch the socket to datagram handling.
func (r *linuxReactor) RegisterUDP(key Key, sc *sockctx.SocketContext) error {
	return r.register(key, int(sc.Sock), false, true)
}

func (r *linuxReactor) Unregister(key Key, sc *sockctx.SocketContext) error {
	r.mu.Lock()
	delete(r.sockets, key)
	r.mu.Unlock()
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(sc.Sock), nil)
}

func (r *linuxReactor) PostRecv(sc *sockctx.SocketContext) error {
	r.mu.Lock()
	if st, ok := r.sockets[sc.SockID]; ok {
		st.recvArm = true
		st.isUDP = false
	}
	r.mu.Unlock()
	sc.Recv.Op = ioctx.OpRecv
	r.tryRecv(sc)
	return nil
}

// PostRecvFrom arms sc for the next datagram. Facades register UDP sockets
// through the same RegisterConn as TCP (the Reactor interface has no
// separate datagram registration), so this is what actually flips the
// socket's isUDP bookkeeping to recvfrom semantics.
func (r *linuxReactor) PostRecvFrom(sc *sockctx.SocketContext) error {
	r.mu.Lock()
	if st, ok := r.sockets[sc.SockID]; ok {
		st.recvArm = true
		st.isUDP = true
	}
	r.mu.Unlock()
	sc.Recv.Op = ioctx.OpRecv
	r.tryRecv(sc)
	return nil
}

func (r *linuxReactor) PostAccept(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	io.Op = ioctx.OpAccept
	r.mu.Lock()
	st := r.sockets[sc.SockID]
	if st != nil {
		st.pendingAccept = append(st.pendingAccept, io)
	}
	r.mu.Unlock()
	r.tryAccept(sc)
	return nil
}

func (r *linuxReactor) PostSend(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	io.Op = ioctx.OpSend
	return r.trySend(sc, io)
}

func (r *linuxReactor) PostSendTo(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	io.Op = ioctx.OpSend
	return r.trySend(sc, io)
}

// writeOnce attempts the underlying write/sendto for io exactly once,
// matching st's protocol (UDP sockets only reach isUDP=true after
// PostRecvFrom has run once; see PostRecvFrom).
func (r *linuxReactor) writeOnce(sc *sockctx.SocketContext, io *ioctx.IoContext, st *sockState) (int, error) {
	if st != nil && st.isUDP {
		if err := unix.Sendto(int(sc.Sock), io.Buf[:io.BufLen], 0, addrPortToSockaddr(io.PeerAddr)); err != nil {
			return 0, err
		}
		return io.BufLen, nil
	}
	return unix.Write(int(sc.Sock), io.Buf[:io.BufLen])
}

// trySend performs a non-blocking write for io. A full send buffer reports
// EAGAIN/EWOULDBLOCK: that is not a completion at all (no bytes sent, no
// error to report) — io is queued and retried once epoll reports the fd
// writable, instead of manufacturing a spurious Bytes:0 success. A genuine
// write error is returned synchronously so the caller can clean io up
// itself, rather than also being delivered as a completion.
func (r *linuxReactor) trySend(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	r.mu.Lock()
	st := r.sockets[sc.SockID]
	r.mu.Unlock()

	n, err := r.writeOnce(sc, io, st)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		r.queueSend(sc.SockID, io)
		return nil
	}
	if err != nil {
		return err
	}
	io.TransferredLen = n
	r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpSend, IO: io, Bytes: n}
	return nil
}

// queueSend defers io until fd becomes writable, arming EPOLLOUT on first
// use (mirroring PostAccept's pendingAccept queue).
func (r *linuxReactor) queueSend(key Key, io *ioctx.IoContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.sockets[key]
	if st == nil {
		return
	}
	st.pendingSend = append(st.pendingSend, io)
	if st.writeArmed {
		return
	}
	st.writeArmed = true
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET}
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = uint64(key)
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, st.fd, &ev)
}

// tryPendingSend retries the head of sc's deferred send queue once epoll
// reports the fd writable again.
func (r *linuxReactor) tryPendingSend(sc *sockctx.SocketContext) {
	r.mu.Lock()
	st, ok := r.sockets[sc.SockID]
	if !ok || len(st.pendingSend) == 0 {
		r.mu.Unlock()
		return
	}
	io := st.pendingSend[0]
	r.mu.Unlock()

	n, err := r.writeOnce(sc, io, st)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return
	}

	r.mu.Lock()
	st.pendingSend = st.pendingSend[1:]
	drained := len(st.pendingSend) == 0
	if drained {
		st.writeArmed = false
	}
	r.mu.Unlock()

	if drained {
		ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET}
		*(*uint64)(unsafe.Pointer(&ev.Fd)) = uint64(sc.SockID)
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, st.fd, &ev)
	}

	if err != nil {
		r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpSend, IO: io, Err: err}
		return
	}
	io.TransferredLen = n
	r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpSend, IO: io, Bytes: n}
}

// tryRecv attempts a non-blocking read/recvfrom for an armed socket.
func (r *linuxReactor) tryRecv(sc *sockctx.SocketContext) {
	r.mu.Lock()
	st, ok := r.sockets[sc.SockID]
	r.mu.Unlock()
	if !ok {
		return
	}
	if st.isUDP {
		n, from, err := unix.Recvfrom(int(sc.Sock), sc.Recv.Buf[:], 0)
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err != nil {
			r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpRecv, Err: err}
			return
		}
		sc.Recv.TransferredLen = n
		sc.Recv.PeerAddr = sockaddrToAddrPort(from)
		r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpRecv, IO: &sc.Recv, Bytes: n}
		return
	}
	n, err := unix.Read(int(sc.Sock), sc.Recv.Buf[:])
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return
	}
	if err != nil {
		r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpRecv, Err: err}
		return
	}
	sc.Recv.TransferredLen = n
	r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpRecv, IO: &sc.Recv, Bytes: n}
}

func (r *linuxReactor) tryAccept(sc *sockctx.SocketContext) {
	r.mu.Lock()
	st, ok := r.sockets[sc.SockID]
	if !ok || len(st.pendingAccept) == 0 {
		r.mu.Unlock()
		return
	}
	io := st.pendingAccept[0]
	st.pendingAccept = st.pendingAccept[1:]
	r.mu.Unlock()

	nfd, from, err := unix.Accept4(int(sc.Sock), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		r.mu.Lock()
		st.pendingAccept = append(st.pendingAccept, io)
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpAccept, IO: io, Err: err}
		return
	}
	io.AcceptedFD = nfd
	io.PeerAddr = sockaddrToAddrPort(from)
	r.completed <- Completion{Key: sc.SockID, Op: ioctx.OpAccept, IO: io, Bytes: 0}
}

func (r *linuxReactor) Wait(timeout time.Duration) (Completion, error) {
	select {
	case c := <-r.completed:
		return c, nil
	default:
	}

	events := make([]unix.EpollEvent, 32)
	ms := int(timeout / time.Millisecond)
	n, err := unix.EpollWait(r.epfd, events, ms)
	if err != nil {
		if err == unix.EINTR {
			return Completion{TimedOut: true}, nil
		}
		return Completion{}, err
	}
	if n == 0 {
		return Completion{TimedOut: true}, nil
	}
	for i := 0; i < n; i++ {
		key := Key(*(*uint64)(unsafe.Pointer(&events[i].Fd)))
		sc, ok := r.lookup(key)
		if !ok {
			continue
		}
		r.mu.Lock()
		st := r.sockets[key]
		r.mu.Unlock()
		if st == nil {
			continue
		}
		if st.isListen {
			r.tryAccept(sc)
			continue
		}
		if events[i].Events&unix.EPOLLOUT != 0 {
			r.tryPendingSend(sc)
		}
		if st.recvArm {
			r.tryRecv(sc)
		}
	}
	select {
	case c := <-r.completed:
		return c, nil
	default:
	}
	return Completion{TimedOut: true}, nil
}

func (r *linuxReactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epfd < 0 {
		return nil
	}
	err := unix.Close(r.epfd)
	r.epfd = -1
	return err
}
