//go:build linux

package facade

import (
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/momentics/netkit/apierr"
)

// createListenSocket creates, binds and listens on a non-blocking TCP
// socket directly via the raw syscall surface, matching
// IOCP_TCPServer::_InitializeListenSocket (socket/bind/listen), rather
// than going through net.Listen, whose fd is already owned by the Go
// runtime's own netpoller and cannot also be handed to this package's
// epoll instance.
func createListenSocket(addr string) (fd int, local netip.AddrPort, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad listen address", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad listen port", err)
	}
	var ip [4]byte
	if host != "" && host != "*" {
		addr4, perr := netip.ParseAddr(host)
		if perr != nil {
			return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad listen host", perr)
		}
		ip = addr4.As4()
	}

	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa := &unix.SockaddrInet4{Port: port, Addr: ip}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: bind failed", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: listen failed", err)
	}
	return fd, netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(port)), nil
}

// createUDPSocket creates and binds a non-blocking UDP socket.
func createUDPSocket(addr string) (fd int, local netip.AddrPort, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad bind address", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad bind port", err)
	}
	var ip [4]byte
	if host != "" && host != "*" {
		addr4, perr := netip.ParseAddr(host)
		if perr != nil {
			return 0, netip.AddrPort{}, apierr.Wrap(apierr.InvalidParameter, "facade: bad bind host", perr)
		}
		ip = addr4.As4()
	}

	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	sa := &unix.SockaddrInet4{Port: port, Addr: ip}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: bind failed", err)
	}
	if port == 0 {
		if bound, gerr := unix.Getsockname(fd); gerr == nil {
			if s4, ok := bound.(*unix.SockaddrInet4); ok {
				port = s4.Port
			}
		}
	}
	return fd, netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(port)), nil
}

// createConnectSocket creates a non-blocking TCP socket and begins an
// asynchronous connect to addr, matching IOCP_TCPClient::Connect.
func createConnectSocket(addr string) (fd int, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad connect address", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad connect port", err)
	}
	addr4, perr := netip.ParseAddr(host)
	if perr != nil {
		return 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad connect host", perr)
	}

	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	sa := &unix.SockaddrInet4{Port: port, Addr: addr4.As4()}
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return 0, apierr.Wrap(apierr.Runtime, "facade: connect failed", err)
	}
	return fd, nil
}

func closeSocket(fd int) error {
	return unix.Close(fd)
}
