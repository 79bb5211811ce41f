//go:build linux

package reactor

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

func addrPortToSockaddr(ap netip.AddrPort) unix.Sockaddr {
	a4 := ap.Addr().As4()
	return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: a4}
}

func sockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(s.Addr), uint16(s.Port))
	default:
		return netip.AddrPort{}
	}
}
