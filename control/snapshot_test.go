package control_test

import (
	"testing"

	"github.com/momentics/netkit/control"
)

type fakeReporter struct{ counts control.PoolCounts }

func (f fakeReporter) PoolCounts() control.PoolCounts { return f.counts }

func TestCollectAssemblesAllSources(t *testing.T) {
	cfg := control.NewConfigStore()
	cfg.SetConfig(map[string]any{"workers": 2})

	metrics := control.NewMetricsRegistry()
	metrics.Set("conns", 5)

	debug := control.NewDebugProbes()
	debug.RegisterProbe("mode", func() any { return "ok" })

	reporter := fakeReporter{counts: control.PoolCounts{IoIdle: 3, IoCapacity: 10, SockActive: 1, SockIdle: 2}}

	snap := control.Collect(reporter, cfg, metrics, debug)

	if snap.Pools != reporter.counts {
		t.Errorf("Pools = %+v, want %+v", snap.Pools, reporter.counts)
	}
	if snap.Config["workers"] != 2 {
		t.Errorf("Config[workers] = %v, want 2", snap.Config["workers"])
	}
	if snap.Metrics["conns"] != 5 {
		t.Errorf("Metrics[conns] = %v, want 5", snap.Metrics["conns"])
	}
	if snap.Debug["mode"] != "ok" {
		t.Errorf("Debug[mode] = %v, want ok", snap.Debug["mode"])
	}
	if snap.Taken.IsZero() {
		t.Error("Taken is zero value, want a timestamp")
	}
}

func TestCollectToleratesNilInputs(t *testing.T) {
	snap := control.Collect(nil, nil, nil, nil)
	if snap.Pools != (control.PoolCounts{}) {
		t.Errorf("Pools = %+v, want zero value", snap.Pools)
	}
	if snap.Config != nil || snap.Metrics != nil || snap.Debug != nil {
		t.Error("Config/Metrics/Debug should remain nil when their source is nil")
	}
}
