package control

import "time"

// PoolCounts reports one ioctx/sockctx pool pair's occupancy.
type PoolCounts struct {
	IoIdle      int
	IoCapacity  int
	SockActive  int
	SockIdle    int
}

// Snapshot is a point-in-time view of a façade's runtime state, the
// "runtime introspection" capability SPEC_FULL.md adds beyond the
// distilled spec: pool occupancy, active-socket count, and arbitrary
// metrics/config values collected from the rest of this package.
type Snapshot struct {
	Taken   time.Time
	Pools   PoolCounts
	Config  map[string]any
	Metrics map[string]any
	Debug   map[string]any
}

// Reporter is the minimal surface a façade exposes for Snapshot to poll;
// facade.TCPServer, facade.TCPClient and facade.UDPPeer all satisfy it via
// their ioctx.Pool/sockctx.Pool fields.
type Reporter interface {
	PoolCounts() PoolCounts
}

// Collect builds a Snapshot by polling r and the config/metrics/debug
// registries passed in; a nil argument leaves its part of the Snapshot
// empty.
func Collect(r Reporter, cfg *ConfigStore, metrics *MetricsRegistry, debug *DebugProbes) Snapshot {
	s := Snapshot{Taken: time.Now()}
	if r != nil {
		s.Pools = r.PoolCounts()
	}
	if cfg != nil {
		s.Config = cfg.GetSnapshot()
	}
	if metrics != nil {
		s.Metrics = metrics.GetSnapshot()
	}
	if debug != nil {
		s.Debug = debug.DumpState()
	}
	return s
}
