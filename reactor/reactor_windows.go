//go:build windows

// Windows IOCP-backed Reactor, grounded on the teacher's IOCP wiring
// (reactor_windows.go, internal/transport/transport_windows_accept.go's
// AcceptEx usage) and network/iocp_base.h's completion-port contract.
// Unlike epoll, IOCP is genuinely completion-based: GetQueuedCompletionStatus
// already hands back the byte count, the key, and the overlapped record the
// IoContext is recovered from — no readiness emulation needed here.
package reactor

import (
	"net/netip"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

var (
	modmswsock   = windows.NewLazySystemDLL("Mswsock.dll")
	procAcceptEx = modmswsock.NewProc("AcceptEx")
)

type windowsReactor struct {
	iocp windows.Handle
}

// New constructs the platform Reactor (IOCP on Windows).
func New(lookup Lookup) (Reactor, error) {
	return NewWindows(lookup)
}

// NewWindows constructs an IOCP-backed Reactor.
func NewWindows(lookup Lookup) (Reactor, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	return &windowsReactor{iocp: port}, nil
}

func (r *windowsReactor) associate(key Key, handle windows.Handle) error {
	_, err := windows.CreateIoCompletionPort(handle, r.iocp, uintptr(key), 0)
	return err
}

func (r *windowsReactor) RegisterListener(key Key, sc *sockctx.SocketContext) error {
	return r.associate(key, windows.Handle(sc.Sock))
}

func (r *windowsReactor) RegisterConn(key Key, sc *sockctx.SocketContext) error {
	return r.associate(key, windows.Handle(sc.Sock))
}

func (r *windowsReactor) Unregister(key Key, sc *sockctx.SocketContext) error {
	return nil // IOCP associations are dropped implicitly when the handle is closed.
}

func (r *windowsReactor) PostRecv(sc *sockctx.SocketContext) error {
	io := &sc.Recv
	io.Op = ioctx.OpRecv
	var flags, n uint32
	buf := windows.WSABuf{Len: uint32(ioctx.MaxIOBufferSize), Buf: &io.Buf[0]}
	err := windows.WSARecv(windows.Handle(sc.Sock), &buf, 1, &n, &flags, &io.Overlapped, nil)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return err
	}
	return nil
}

func (r *windowsReactor) PostRecvFrom(sc *sockctx.SocketContext) error {
	// golang.org/x/sys/windows does not wrap WSARecvFrom, and there is no
	// safe way to bind it without an unverified raw syscall against an
	// unexported Winsock ordinal. UDP peers on Windows do not receive
	// datagrams through this reactor yet; see DESIGN.md's Open Question
	// decisions for the tracked gap. Left as a documented no-op rather than
	// a guessed-at syscall.
	return nil
}

func (r *windowsReactor) PostSend(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	io.Op = ioctx.OpSend
	var n uint32
	buf := windows.WSABuf{Len: uint32(io.BufLen), Buf: &io.Buf[0]}
	err := windows.WSASend(windows.Handle(sc.Sock), &buf, 1, &n, 0, &io.Overlapped, nil)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return err
	}
	return nil
}

func (r *windowsReactor) PostSendTo(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	return r.PostSend(sc, io)
}

func (r *windowsReactor) PostAccept(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	io.Op = ioctx.OpAccept
	clientSock, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return err
	}
	io.AcceptedFD = int(clientSock)
	var n uint32
	const sockaddrSize = unsafe.Sizeof(windows.SockaddrInet4{}) + 16
	r1, _, e1 := procAcceptEx.Call(
		uintptr(sc.Sock),
		uintptr(clientSock),
		uintptr(unsafe.Pointer(&io.Buf[0])),
		0,
		sockaddrSize,
		sockaddrSize,
		uintptr(unsafe.Pointer(&n)),
		uintptr(unsafe.Pointer(&io.Overlapped)),
	)
	if r1 == 0 && e1 != windows.ERROR_IO_PENDING {
		windows.Closesocket(clientSock)
		return e1
	}
	return nil
}

func (r *windowsReactor) Wait(timeout time.Duration) (Completion, error) {
	var n uint32
	var key uintptr
	var overlapped *windows.Overlapped
	ms := uint32(timeout.Milliseconds())
	err := windows.GetQueuedCompletionStatus(r.iocp, &n, &key, &overlapped, ms)
	if err != nil {
		if err == windows.WAIT_TIMEOUT {
			return Completion{TimedOut: true}, nil
		}
		// ERROR_NETNAME_DELETED class: peer hard-reset.
		io := ioctx.FromOverlapped(overlapped)
		return Completion{Key: Key(key), Op: io.Op, IO: io, HardReset: true, Err: err}, nil
	}
	io := ioctx.FromOverlapped(overlapped)
	io.TransferredLen = int(n)
	if io.Op == ioctx.OpAccept {
		io.PeerAddr = parseAcceptExAddr(io)
	}
	return Completion{Key: Key(key), Op: io.Op, IO: io, Bytes: int(n)}, nil
}

func (r *windowsReactor) Close() error {
	if r.iocp == windows.InvalidHandle {
		return nil
	}
	err := windows.CloseHandle(r.iocp)
	r.iocp = windows.InvalidHandle
	return err
}

// parseAcceptExAddr recovers the remote peer address AcceptEx wrote into
// io.Buf's second sockaddr slot (local address first, remote address
// second, each padded to sockaddrSize bytes — see PostAccept).
func parseAcceptExAddr(io *ioctx.IoContext) netip.AddrPort {
	const sockaddrSize = int(unsafe.Sizeof(windows.SockaddrInet4{})) + 16
	if len(io.Buf) < 2*sockaddrSize {
		return netip.AddrPort{}
	}
	raw := (*windows.RawSockaddrAny)(unsafe.Pointer(&io.Buf[sockaddrSize]))
	return sockaddrFromWindows(*raw)
}

func sockaddrFromWindows(raw windows.RawSockaddrAny) netip.AddrPort {
	in4 := (*windows.RawSockaddrInet4)(unsafe.Pointer(&raw))
	return netip.AddrPortFrom(netip.AddrFrom4(in4.Addr), ntohsPort(in4.Port))
}

func ntohsPort(p [2]byte) uint16 {
	return uint16(p[0])<<8 | uint16(p[1])
}
