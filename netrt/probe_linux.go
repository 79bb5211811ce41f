//go:build linux

package netrt

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/netkit/sockctx"
)

// probeAlive sends a zero-length write to check whether the peer is still
// reachable, matching IOCP_TCPWorkThread::_HandleError's WAIT_TIMEOUT
// branch (`send(sock_, "", 0, 0)`).
func probeAlive(h sockctx.Handle) error {
	_, err := unix.Write(int(h), nil)
	return err
}
