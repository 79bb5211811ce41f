package control_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/netkit/control"
)

func TestConfigStoreSetAndSnapshot(t *testing.T) {
	cs := control.NewConfigStore()
	cs.SetConfig(map[string]any{"workers": 4, "addr": ":9000"})

	snap := cs.GetSnapshot()
	if snap["workers"] != 4 || snap["addr"] != ":9000" {
		t.Errorf("GetSnapshot() = %+v, want workers=4 addr=:9000", snap)
	}
}

func TestConfigStoreSnapshotIsACopy(t *testing.T) {
	cs := control.NewConfigStore()
	cs.SetConfig(map[string]any{"k": 1})
	snap := cs.GetSnapshot()
	snap["k"] = 2
	if cs.GetSnapshot()["k"] != 1 {
		t.Error("mutating a returned snapshot affected the store's internal state")
	}
}

func TestOnReloadFiresOnSetConfig(t *testing.T) {
	cs := control.NewConfigStore()
	var fired atomic.Bool
	done := make(chan struct{})
	cs.OnReload(func() {
		fired.Store(true)
		close(done)
	})
	cs.SetConfig(map[string]any{"a": 1})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reload hook never fired")
	}
	if !fired.Load() {
		t.Error("fired = false")
	}
}
