//go:build windows

package ioctx

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

type platformOverlapped = windows.Overlapped

// FromOverlapped recovers the enclosing *IoContext from a *windows.Overlapped
// returned by GetQueuedCompletionStatus. Valid only because Overlapped is
// embedded as IoContext's first field, so the two addresses coincide.
func FromOverlapped(o *windows.Overlapped) *IoContext {
	return (*IoContext)(unsafe.Pointer(o))
}

func closeAcceptedFD(c *IoContext) {
	if c.AcceptedFD > 0 {
		_ = windows.Closesocket(windows.Handle(c.AcceptedFD))
	}
}
