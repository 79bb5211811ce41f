//go:build windows

package netrt

import (
	"golang.org/x/sys/windows"

	"github.com/momentics/netkit/sockctx"
)

// probeAlive sends a zero-length datagram to check whether the peer is
// still reachable, matching IOCP_TCPWorkThread::_HandleError's
// WAIT_TIMEOUT branch (`send(sock_, "", 0, 0)`).
func probeAlive(h sockctx.Handle) error {
	var n uint32
	buf := windows.WSABuf{Len: 0, Buf: nil}
	return windows.WSASend(windows.Handle(h), &buf, 1, &n, 0, nil, nil)
}
