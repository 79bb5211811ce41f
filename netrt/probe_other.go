//go:build !linux && !windows

package netrt

import "github.com/momentics/netkit/sockctx"

func probeAlive(h sockctx.Handle) error { return nil }
