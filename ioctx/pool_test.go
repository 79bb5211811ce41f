package ioctx_test

import (
	"testing"

	"github.com/momentics/netkit/ioctx"
)

func TestPoolGetAllocatesWhenEmpty(t *testing.T) {
	p := ioctx.NewPool(2)
	if p.Len() != 0 {
		t.Fatalf("Len() = %d on fresh pool, want 0", p.Len())
	}
	c := p.Get()
	if c == nil {
		t.Fatal("Get() returned nil")
	}
}

func TestPoolPutReusesEntries(t *testing.T) {
	p := ioctx.NewPool(2)
	c := p.Get()
	c.SetPayload([]byte("stale"))
	p.Put(c)

	if p.Len() != 1 {
		t.Fatalf("Len() after Put = %d, want 1", p.Len())
	}

	c2 := p.Get()
	if c2.BufLen != 0 {
		t.Errorf("reused IoContext was not reset: BufLen = %d, want 0", c2.BufLen)
	}
	if p.Len() != 0 {
		t.Errorf("Len() after Get = %d, want 0", p.Len())
	}
}

func TestPoolPutDiscardsBeyondCapacity(t *testing.T) {
	p := ioctx.NewPool(1)
	p.Put(ioctx.New())
	p.Put(ioctx.New())
	if p.Len() != 1 {
		t.Errorf("Len() = %d after exceeding capacity 1, want 1", p.Len())
	}
}

func TestNewPoolDefaultsCapacity(t *testing.T) {
	p := ioctx.NewPool(0)
	if p.Capacity() != ioctx.DefaultPoolCapacity {
		t.Errorf("Capacity() = %d, want %d", p.Capacity(), ioctx.DefaultPoolCapacity)
	}
}
