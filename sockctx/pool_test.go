package sockctx_test

import (
	"testing"

	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

func TestActiveContextLifecycle(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	sc := pool.Get()
	sc.SockID = 1

	pool.AddActiveContext(1, sc)
	if pool.ActiveCount() != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", pool.ActiveCount())
	}

	got, ok := pool.GetActiveContext(1)
	if !ok || got != sc {
		t.Fatalf("GetActiveContext(1) = %v, %v; want sc, true", got, ok)
	}
	got.Release()

	if !pool.DelActiveContext(1) {
		t.Fatal("DelActiveContext(1) = false, want true")
	}
	if pool.ActiveCount() != 0 {
		t.Errorf("ActiveCount() after Del = %d, want 0", pool.ActiveCount())
	}
	if pool.IdleCount() != 1 {
		t.Errorf("IdleCount() after Del = %d, want 1 (recycled)", pool.IdleCount())
	}
}

func TestGetActiveContextMissingReturnsFalse(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	if _, ok := pool.GetActiveContext(999); ok {
		t.Error("GetActiveContext on unknown id = true, want false")
	}
}

func TestDelActiveContextMissingReturnsFalse(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	if pool.DelActiveContext(999) {
		t.Error("DelActiveContext on unknown id = true, want false")
	}
}

func TestClearActiveContextReturnsAllWithoutRecycling(t *testing.T) {
	pool := sockctx.NewPool(ioctx.NewPool(4), 4)
	a := pool.Get()
	a.SockID = 1
	b := pool.Get()
	b.SockID = 2
	pool.AddActiveContext(1, a)
	pool.AddActiveContext(2, b)

	cleared := pool.ClearActiveContext()
	if len(cleared) != 2 {
		t.Fatalf("ClearActiveContext returned %d entries, want 2", len(cleared))
	}
	if pool.ActiveCount() != 0 {
		t.Errorf("ActiveCount() after Clear = %d, want 0", pool.ActiveCount())
	}
	if pool.IdleCount() != 0 {
		t.Errorf("IdleCount() after Clear = %d, want 0 (not recycled)", pool.IdleCount())
	}
}

func TestNewPoolDefaultsIdleCapToTwiceIoPool(t *testing.T) {
	ioPool := ioctx.NewPool(10)
	pool := sockctx.NewPool(ioPool, 0)
	held := make([]*sockctx.SocketContext, 0, 25)
	for i := 0; i < 25; i++ {
		held = append(held, pool.Get())
	}
	for _, sc := range held {
		pool.PutSocketContext(sc)
	}
	if pool.IdleCount() != 20 {
		t.Errorf("IdleCount() = %d after exceeding default cap, want 20 (2x ioPool capacity)", pool.IdleCount())
	}
}
