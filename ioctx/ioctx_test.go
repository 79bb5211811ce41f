package ioctx_test

import (
	"net/netip"
	"testing"

	"github.com/momentics/netkit/ioctx"
)

func TestNewIsIdle(t *testing.T) {
	c := ioctx.New()
	if c.Op != ioctx.OpIdle {
		t.Errorf("New().Op = %v, want OpIdle", c.Op)
	}
}

func TestSetPayloadCopiesAndTruncates(t *testing.T) {
	c := ioctx.New()
	n := c.SetPayload([]byte("hello"))
	if n != 5 {
		t.Errorf("SetPayload returned %d, want 5", n)
	}
	if string(c.Buf[:c.BufLen]) != "hello" {
		t.Errorf("Buf[:BufLen] = %q, want %q", c.Buf[:c.BufLen], "hello")
	}

	big := make([]byte, ioctx.MaxIOBufferSize+100)
	for i := range big {
		big[i] = 'x'
	}
	n = c.SetPayload(big)
	if n != ioctx.MaxIOBufferSize {
		t.Errorf("SetPayload truncated to %d, want %d", n, ioctx.MaxIOBufferSize)
	}
}

func TestResetClearsState(t *testing.T) {
	c := ioctx.New()
	c.SetPayload([]byte("data"))
	c.TransferredLen = 4
	c.Op = ioctx.OpRecv
	c.PeerAddr = netip.MustParseAddrPort("127.0.0.1:9000")

	c.Reset()

	if c.Op != ioctx.OpIdle {
		t.Errorf("Op after Reset = %v, want OpIdle", c.Op)
	}
	if c.BufLen != 0 || c.TransferredLen != 0 {
		t.Errorf("BufLen/TransferredLen after Reset = %d/%d, want 0/0", c.BufLen, c.TransferredLen)
	}
	if c.PeerAddr != (netip.AddrPort{}) {
		t.Errorf("PeerAddr after Reset = %v, want zero value", c.PeerAddr)
	}
	if c.AcceptedFD != -1 {
		t.Errorf("AcceptedFD after Reset = %d, want -1", c.AcceptedFD)
	}
}

func TestOpString(t *testing.T) {
	cases := map[ioctx.Op]string{
		ioctx.OpIdle:   "idle",
		ioctx.OpAccept: "accept",
		ioctx.OpRecv:   "recv",
		ioctx.OpSend:   "send",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, want %q", op, got, want)
		}
	}
}
