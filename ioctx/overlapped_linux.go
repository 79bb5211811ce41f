//go:build linux

package ioctx

import "golang.org/x/sys/unix"

// epoll is readiness-based, not completion-based: there is no per-operation
// kernel record to recover a back-pointer from. platformOverlapped is kept
// as a zero-size placeholder purely so IoContext has the same shape on
// every platform; the Linux netrt worker recovers the IoContext from the
// reactor's key-indexed lookup instead (see reactor package).
type platformOverlapped = struct{}

func closeAcceptedFD(c *IoContext) {
	if c.AcceptedFD > 0 {
		_ = unix.Close(c.AcceptedFD)
	}
}
