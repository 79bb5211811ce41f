//go:build windows

package facade

import (
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/windows"

	"github.com/momentics/netkit/apierr"
)

func parseHostPort(addr string) (ip [4]byte, port int, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return ip, 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad address", err)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return ip, 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad port", err)
	}
	if host != "" && host != "*" {
		a, perr := netip.ParseAddr(host)
		if perr != nil {
			return ip, 0, apierr.Wrap(apierr.InvalidParameter, "facade: bad host", perr)
		}
		ip = a.As4()
	}
	return ip, port, nil
}

func createListenSocket(addr string) (fd int, local netip.AddrPort, err error) {
	ip, port, err := parseHostPort(addr)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	sock, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	sa := &windows.SockaddrInet4{Port: port, Addr: ip}
	if err := windows.Bind(sock, sa); err != nil {
		windows.Closesocket(sock)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: bind failed", err)
	}
	if err := windows.Listen(sock, windows.SOMAXCONN); err != nil {
		windows.Closesocket(sock)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: listen failed", err)
	}
	return int(sock), netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(port)), nil
}

func createUDPSocket(addr string) (fd int, local netip.AddrPort, err error) {
	ip, port, err := parseHostPort(addr)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	sock, err := windows.Socket(windows.AF_INET, windows.SOCK_DGRAM, windows.IPPROTO_UDP)
	if err != nil {
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	sa := &windows.SockaddrInet4{Port: port, Addr: ip}
	if err := windows.Bind(sock, sa); err != nil {
		windows.Closesocket(sock)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "facade: bind failed", err)
	}
	if port == 0 {
		if bound, gerr := windows.Getsockname(sock); gerr == nil {
			if s4, ok := bound.(*windows.SockaddrInet4); ok {
				port = s4.Port
			}
		}
	}
	return int(sock), netip.AddrPortFrom(netip.AddrFrom4(ip), uint16(port)), nil
}

func createConnectSocket(addr string) (fd int, err error) {
	ip, port, err := parseHostPort(addr)
	if err != nil {
		return 0, err
	}
	sock, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		return 0, apierr.Wrap(apierr.Runtime, "facade: socket failed", err)
	}
	sa := &windows.SockaddrInet4{Port: port, Addr: ip}
	if cerr := windows.Connect(sock, sa); cerr != nil && cerr != windows.WSAEWOULDBLOCK {
		windows.Closesocket(sock)
		return 0, apierr.Wrap(apierr.Runtime, "facade: connect failed", cerr)
	}
	return int(sock), nil
}

func closeSocket(fd int) error {
	return windows.Closesocket(windows.Handle(fd))
}
