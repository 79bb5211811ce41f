package facade

import (
	"net/netip"
	"sync"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/netrt"
	"github.com/momentics/netkit/reactor"
	"github.com/momentics/netkit/sockctx"
)

// UDPPeer sends and receives datagrams on one or more bound sockets,
// grounded on network/iocp_udppeer.h's
// Init/Start/Create/SendTo/CloseSocket/Stop/DeInit surface.
type UDPPeer struct {
	cfg Config
	cb  netrt.Callbacks

	ioPool  *ioctx.Pool
	socks   *sockctx.Pool
	rx      reactor.Reactor
	workers []*netrt.Worker

	mu      sync.Mutex
	started bool
}

// NewUDPPeer constructs a peer.
func NewUDPPeer(cfg *Config, cb netrt.Callbacks) *UDPPeer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &UDPPeer{cfg: *cfg, cb: cb}
}

// Init allocates the pools and reactor this peer's sockets run on,
// matching IOCP_UDPNode::Init. UDP workers never take LivenessProbe
// (there is no connection to probe).
func (u *UDPPeer) Init() error {
	u.ioPool = ioctx.NewPool(withDefault(u.cfg.IoPoolCapacity, ioctx.DefaultPoolCapacity))
	u.socks = sockctx.NewPool(u.ioPool, u.cfg.SockIdlePoolCapacity)

	rx, err := reactor.New(u.socks.GetActiveContext)
	if err != nil {
		return apierr.Wrap(apierr.Runtime, "udppeer: reactor init failed", err)
	}
	u.rx = rx

	n := withDefault(u.cfg.Workers, 1)
	u.workers = make([]*netrt.Worker, n)
	for i := range u.workers {
		u.workers[i] = netrt.New(netrt.RoleUDP, rx, u.socks, u.ioPool, u.cb, nil, false)
	}
	return nil
}

// Start launches the worker threads, matching IOCP_UDPNode::Start.
func (u *UDPPeer) Start() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.started {
		return nil
	}
	for _, w := range u.workers {
		if err := w.Start(); err != nil {
			return err
		}
	}
	u.started = true
	return nil
}

// Create binds a new datagram socket on bindAddr and arms it for receive,
// matching IOCP_UDPNode::Create. Returns the new socket id and the
// resolved local address (useful when bindAddr's port was 0).
func (u *UDPPeer) Create(bindAddr string) (uint32, netip.AddrPort, error) {
	u.mu.Lock()
	started := u.started
	u.mu.Unlock()
	if !started {
		return 0, netip.AddrPort{}, apierr.New(apierr.Logic, "udppeer: Create called before Start")
	}

	fd, local, err := createUDPSocket(bindAddr)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	sc := u.socks.Get()
	sc.Sock = sockctx.Handle(fd)
	sc.SockID = uint32(fd)
	sc.Local = local
	u.socks.AddActiveContext(sc.SockID, sc)

	if err := u.rx.RegisterConn(sc.SockID, sc); err != nil {
		u.socks.DelActiveContext(sc.SockID)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "udppeer: register failed", err)
	}
	if err := u.rx.PostRecvFrom(sc); err != nil {
		dropActiveSocket(u.rx, u.socks, sc.SockID)
		return 0, netip.AddrPort{}, apierr.Wrap(apierr.Runtime, "udppeer: initial recv post failed", err)
	}
	return sc.SockID, local, nil
}

// SendTo queues a datagram for asynchronous transmission to dst, matching
// IOCP_UDPNode::SendTo.
func (u *UDPPeer) SendTo(sockID uint32, data []byte, dst netip.AddrPort) error {
	sc, ok := u.socks.GetActiveContext(sockID)
	if !ok {
		return apierr.ErrNotFound
	}
	defer sc.Release()

	io := u.ioPool.Get()
	io.SetPayload(data)
	io.PeerAddr = dst
	sc.AddOutstanding(io)
	if err := u.rx.PostSendTo(sc, io); err != nil {
		sc.RemoveContext(io)
		return apierr.Wrap(apierr.Runtime, "udppeer: sendto failed", err)
	}
	return nil
}

// CloseSocket drops sockID, matching IOCP_UDPNode::CloseSocket.
func (u *UDPPeer) CloseSocket(sockID uint32) {
	dropActiveSocket(u.rx, u.socks, sockID)
}

// Stop halts every worker thread, matching IOCP_UDPNode::Stop.
func (u *UDPPeer) Stop() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.started {
		return nil
	}
	var first error
	for _, w := range u.workers {
		if err := w.Stop(u.cfg.ShutdownTimeout); err != nil && first == nil {
			first = err
		}
	}
	for _, sc := range u.socks.ClearActiveContext() {
		sc.Reset()
	}
	u.started = false
	return first
}

// DeInit releases the reactor, matching IOCP_UDPNode::DeInit.
func (u *UDPPeer) DeInit() error {
	if u.rx != nil {
		return u.rx.Close()
	}
	return nil
}
