//go:build !linux && !windows

package facade

import (
	"net/netip"

	"github.com/momentics/netkit/apierr"
)

func createListenSocket(addr string) (int, netip.AddrPort, error) {
	return 0, netip.AddrPort{}, apierr.ErrNotSupported
}

func createUDPSocket(addr string) (int, netip.AddrPort, error) {
	return 0, netip.AddrPort{}, apierr.ErrNotSupported
}

func createConnectSocket(addr string) (int, error) {
	return 0, apierr.ErrNotSupported
}

func closeSocket(fd int) error {
	return nil
}
