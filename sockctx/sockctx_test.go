package sockctx_test

import (
	"os"
	"testing"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

func TestAddRemoveOutstanding(t *testing.T) {
	ioPool := ioctx.NewPool(4)
	pool := sockctx.NewPool(ioPool, 4)
	sc := pool.Get()

	io := ioPool.Get()
	sc.AddOutstanding(io)
	sc.RemoveContext(io)

	if ioPool.Len() != 1 {
		t.Errorf("ioPool.Len() after RemoveContext = %d, want 1 (returned to pool)", ioPool.Len())
	}
}

func TestMarkClosedOnceFiresOnlyOnce(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	sc := pool.Get()

	if !sc.MarkClosedOnce() {
		t.Fatal("first MarkClosedOnce() = false, want true")
	}
	if sc.MarkClosedOnce() {
		t.Error("second MarkClosedOnce() = true, want false")
	}
}

func TestResetDrainsOutstandingAndClearsFields(t *testing.T) {
	// Reset now shuts down and closes Sock, so it must hold a real, owned
	// fd rather than an arbitrary small integer that might collide with
	// one of the test binary's own open descriptors.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer w.Close()

	ioPool := ioctx.NewPool(4)
	pool := sockctx.NewPool(ioPool, 4)
	sc := pool.Get()
	sc.Sock = sockctx.Handle(r.Fd())
	sc.SockID = 123
	sc.IsListen = true

	io := ioPool.Get()
	sc.AddOutstanding(io)
	sc.MarkClosedOnce()

	sc.Reset()

	if sc.Sock != 0 || sc.SockID != 0 || sc.IsListen {
		t.Errorf("fields not cleared by Reset: Sock=%d SockID=%d IsListen=%v", sc.Sock, sc.SockID, sc.IsListen)
	}
	if ioPool.Len() != 1 {
		t.Errorf("ioPool.Len() after Reset = %d, want 1", ioPool.Len())
	}
	if !sc.MarkClosedOnce() {
		t.Error("MarkClosedOnce() after Reset = false, want true (closed flag must reset)")
	}
}

func TestRetainReleaseRefcount(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	sc := pool.Get()
	sc.Retain()
	sc.Retain()
	sc.Release()
	sc.Release()
}
