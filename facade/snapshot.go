package facade

import "github.com/momentics/netkit/control"

// PoolCounts reports the façade's ioctx/sockctx pool occupancy, satisfying
// control.Reporter for Snapshot-based runtime introspection.
func (s *TCPServer) PoolCounts() control.PoolCounts {
	return poolCounts(s.ioPool, s.socks)
}

func (c *TCPClient) PoolCounts() control.PoolCounts {
	return poolCounts(c.ioPool, c.socks)
}

func (u *UDPPeer) PoolCounts() control.PoolCounts {
	return poolCounts(u.ioPool, u.socks)
}

func poolCounts(ioPool interface {
	Len() int
	Capacity() int
}, socks interface {
	ActiveCount() int
	IdleCount() int
}) control.PoolCounts {
	if ioPool == nil || socks == nil {
		return control.PoolCounts{}
	}
	return control.PoolCounts{
		IoIdle:     ioPool.Len(),
		IoCapacity: ioPool.Capacity(),
		SockActive: socks.ActiveCount(),
		SockIdle:   socks.IdleCount(),
	}
}
