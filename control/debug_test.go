package control_test

import (
	"testing"

	"github.com/momentics/netkit/control"
)

func TestDebugProbesDumpState(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("goroutines", func() any { return 42 })
	dp.RegisterProbe("mode", func() any { return "active" })

	state := dp.DumpState()
	if state["goroutines"] != 42 || state["mode"] != "active" {
		t.Errorf("DumpState() = %+v, want goroutines=42 mode=active", state)
	}
}

func TestDebugProbesOverwritesSameName(t *testing.T) {
	dp := control.NewDebugProbes()
	dp.RegisterProbe("v", func() any { return 1 })
	dp.RegisterProbe("v", func() any { return 2 })

	if got := dp.DumpState()["v"]; got != 2 {
		t.Errorf("DumpState()[\"v\"] = %v, want 2 (last registration wins)", got)
	}
}
