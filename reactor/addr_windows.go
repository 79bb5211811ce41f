//go:build windows

package reactor

import (
	"net/netip"

	"golang.org/x/sys/windows"
)

func addrPortToSockaddr(ap netip.AddrPort) windows.Sockaddr {
	a4 := ap.Addr().As4()
	return &windows.SockaddrInet4{Port: int(ap.Port()), Addr: a4}
}

func sockaddrToAddrPort(sa windows.Sockaddr) netip.AddrPort {
	switch s := sa.(type) {
	case *windows.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(s.Addr), uint16(s.Port))
	default:
		return netip.AddrPort{}
	}
}
