package control_test

import (
	"testing"

	"github.com/momentics/netkit/control"
)

func TestMetricsRegistrySetAndSnapshot(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("connections", 10)
	mr.Set("bytes_sent", int64(2048))

	snap := mr.GetSnapshot()
	if snap["connections"] != 10 || snap["bytes_sent"] != int64(2048) {
		t.Errorf("GetSnapshot() = %+v, want connections=10 bytes_sent=2048", snap)
	}
}

func TestMetricsRegistrySnapshotIsACopy(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("k", 1)
	snap := mr.GetSnapshot()
	snap["k"] = 99
	if mr.GetSnapshot()["k"] != 1 {
		t.Error("mutating a returned snapshot affected the registry's internal state")
	}
}
