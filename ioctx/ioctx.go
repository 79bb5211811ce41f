// Package ioctx implements IoContext, the per-operation state handed to the
// kernel for one asynchronous I/O, and its bounded pool, grounded on
// network/iocp_base.h.
package ioctx

import "net/netip"

// MaxIOBufferSize is the fixed I/O buffer size carried by every IoContext.
const MaxIOBufferSize = 4096

// Op identifies which operation an IoContext is currently posted for.
type Op int

const (
	OpIdle Op = iota
	OpAccept
	OpRecv
	OpSend
)

func (o Op) String() string {
	switch o {
	case OpAccept:
		return "accept"
	case OpRecv:
		return "recv"
	case OpSend:
		return "send"
	default:
		return "idle"
	}
}

// IoContext carries the buffer and bookkeeping for exactly one outstanding
// asynchronous operation. Overlapped embeds the platform's own completion
// record as the struct's first field, so on Windows a *windows.Overlapped
// recovered from GetQueuedCompletionStatus can be cast directly back to
// *IoContext (see overlapped_windows.go) — the Go equivalent of the original's
// CONTAINING_RECORD back-offset trick.
type IoContext struct {
	Overlapped platformOverlapped

	Buf            [MaxIOBufferSize]byte
	BufLen         int
	TransferredLen int
	Op             Op
	PeerAddr       netip.AddrPort
	AcceptedFD     int // valid only while Op == OpAccept and the accept has completed
}

// New returns a fresh, Idle IoContext.
func New() *IoContext {
	return &IoContext{}
}

// Reset zeroes the context back to its Idle state, closing any accepted
// socket left in AcceptedFD, matching IoContext::reset.
func (c *IoContext) Reset() {
	closeAcceptedFD(c)
	c.Overlapped = platformOverlapped{}
	c.Buf = [MaxIOBufferSize]byte{}
	c.BufLen = 0
	c.TransferredLen = 0
	c.Op = OpIdle
	c.PeerAddr = netip.AddrPort{}
	c.AcceptedFD = -1
}

// SetPayload copies p into the buffer, truncating at MaxIOBufferSize, and
// returns the number of bytes actually stored.
func (c *IoContext) SetPayload(p []byte) int {
	n := copy(c.Buf[:], p)
	c.BufLen = n
	return n
}
