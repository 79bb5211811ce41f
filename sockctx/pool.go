package sockctx

import (
	"sync"

	"github.com/momentics/netkit/ioctx"
)

// Pool holds an idle list of reusable SocketContext shells plus an active
// map keyed by sock_id, each guarded by its own mutex, grounded on
// IOCP_SocketContextPool. Idle capacity defaults to twice the IoContextPool
// capacity.
type Pool struct {
	ioPool *ioctx.Pool

	idleMu  sync.Mutex
	idle    []*SocketContext
	idleCap int

	activeMu sync.RWMutex
	active   map[uint32]*SocketContext
}

// NewPool constructs a SocketContextPool backed by ioPool for per-socket
// IoContexts, with idle capacity idleCap (pass 0 for 2x ioPool's capacity).
func NewPool(ioPool *ioctx.Pool, idleCap int) *Pool {
	if idleCap <= 0 {
		idleCap = 2 * ioPool.Capacity()
	}
	return &Pool{
		ioPool:  ioPool,
		idleCap: idleCap,
		active:  make(map[uint32]*SocketContext),
	}
}

// Get returns a shell from the idle list if available, else allocates a
// fresh one bound to this pool's IoContext pool.
func (p *Pool) Get() *SocketContext {
	p.idleMu.Lock()
	n := len(p.idle)
	if n == 0 {
		p.idleMu.Unlock()
		return newSocketContext(p.ioPool)
	}
	sc := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	p.idleMu.Unlock()
	return sc
}

// PutSocketContext returns sc to the idle list, unless it is already at
// capacity, in which case sc is left for GC. Callers must not still have
// sc registered in the active map.
func (p *Pool) PutSocketContext(sc *SocketContext) {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()
	if len(p.idle) >= p.idleCap {
		return
	}
	p.idle = append(p.idle, sc)
}

// AddActiveContext registers sc under sock_id so GetActiveContext can find
// it. sock_id must be unique among currently active sockets.
func (p *Pool) AddActiveContext(sockID uint32, sc *SocketContext) {
	p.activeMu.Lock()
	p.active[sockID] = sc
	p.activeMu.Unlock()
}

// GetActiveContext returns the active SocketContext for sockID, retaining
// it on behalf of the caller, or (nil, false) if no such socket is active.
func (p *Pool) GetActiveContext(sockID uint32) (*SocketContext, bool) {
	p.activeMu.RLock()
	sc, ok := p.active[sockID]
	p.activeMu.RUnlock()
	if ok {
		sc.Retain()
	}
	return sc, ok
}

// DelActiveContext atomically removes sockID from the active map, resets
// the shell (draining its outstanding I/Os back to the IoContext pool),
// and re-admits it to idle if capacity allows. Returns false if sockID was
// not active.
func (p *Pool) DelActiveContext(sockID uint32) bool {
	p.activeMu.Lock()
	sc, ok := p.active[sockID]
	if ok {
		delete(p.active, sockID)
	}
	p.activeMu.Unlock()
	if !ok {
		return false
	}
	sc.Reset()
	p.PutSocketContext(sc)
	return true
}

// ClearActiveContext removes every active socket without resetting or
// recycling the shells, for use during façade teardown where the caller
// drives socket shutdown separately. Returns the removed contexts.
func (p *Pool) ClearActiveContext() []*SocketContext {
	p.activeMu.Lock()
	defer p.activeMu.Unlock()
	out := make([]*SocketContext, 0, len(p.active))
	for id, sc := range p.active {
		out = append(out, sc)
		delete(p.active, id)
	}
	return out
}

// ActiveCount reports the number of currently active sockets.
func (p *Pool) ActiveCount() int {
	p.activeMu.RLock()
	defer p.activeMu.RUnlock()
	return len(p.active)
}

// IdleCount reports the number of idle shells currently retained.
func (p *Pool) IdleCount() int {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()
	return len(p.idle)
}
