package facade

import (
	"sync"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/netrt"
	"github.com/momentics/netkit/reactor"
	"github.com/momentics/netkit/sockctx"
)

// TCPClient dials outbound TCP connections and dispatches receive/
// disconnect events, grounded on network/iocp_tcpclient.h's
// Init/Start/Connect/Send/CloseSocket/Stop/DeInit surface.
type TCPClient struct {
	cfg Config
	cb  netrt.Callbacks

	ioPool  *ioctx.Pool
	socks   *sockctx.Pool
	rx      reactor.Reactor
	workers []*netrt.Worker

	mu      sync.Mutex
	started bool
}

// NewTCPClient constructs a client.
func NewTCPClient(cfg *Config, cb netrt.Callbacks) *TCPClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TCPClient{cfg: *cfg, cb: cb}
}

// Init allocates the pools and reactor this client's connections run on,
// matching IOCP_TCPClient::Init.
func (c *TCPClient) Init() error {
	c.ioPool = ioctx.NewPool(withDefault(c.cfg.IoPoolCapacity, ioctx.DefaultPoolCapacity))
	c.socks = sockctx.NewPool(c.ioPool, c.cfg.SockIdlePoolCapacity)

	rx, err := reactor.New(c.socks.GetActiveContext)
	if err != nil {
		return apierr.Wrap(apierr.Runtime, "tcpclient: reactor init failed", err)
	}
	c.rx = rx

	n := withDefault(c.cfg.Workers, 1)
	c.workers = make([]*netrt.Worker, n)
	for i := range c.workers {
		c.workers[i] = netrt.New(netrt.RoleTCP, rx, c.socks, c.ioPool, c.cb, nil, c.cfg.LivenessProbe)
	}
	return nil
}

// Start launches the worker threads, matching IOCP_TCPClient::Start.
func (c *TCPClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	for _, w := range c.workers {
		if err := w.Start(); err != nil {
			return err
		}
	}
	c.started = true
	return nil
}

// Connect dials dstAddr ("host:port") asynchronously: the underlying
// socket is created non-blocking and connect(2)'d without waiting, then
// armed for receive, matching IOCP_TCPClient::Connect's non-blocking
// contract while keeping the call itself synchronous-looking (Open
// Question decision recorded in DESIGN.md). Returns the new socket id.
func (c *TCPClient) Connect(dstAddr string) (uint32, error) {
	fd, err := createConnectSocket(dstAddr)
	if err != nil {
		return 0, err
	}
	sc := c.socks.Get()
	sc.Sock = sockctx.Handle(fd)
	sc.SockID = uint32(fd)
	c.socks.AddActiveContext(sc.SockID, sc)

	if err := c.rx.RegisterConn(sc.SockID, sc); err != nil {
		c.socks.DelActiveContext(sc.SockID)
		return 0, apierr.Wrap(apierr.Runtime, "tcpclient: register conn failed", err)
	}
	if c.cb.OnConnected != nil {
		c.cb.OnConnected(sc)
	}
	if err := c.rx.PostRecv(sc); err != nil {
		dropActiveSocket(c.rx, c.socks, sc.SockID)
		return 0, apierr.Wrap(apierr.Runtime, "tcpclient: initial recv post failed", err)
	}
	return sc.SockID, nil
}

// Send queues data for asynchronous transmission, matching
// IOCP_TCPClient::Send.
func (c *TCPClient) Send(sockID uint32, data []byte) error {
	sc, ok := c.socks.GetActiveContext(sockID)
	if !ok {
		return apierr.ErrNotFound
	}
	defer sc.Release()

	io := c.ioPool.Get()
	io.SetPayload(data)
	sc.AddOutstanding(io)
	if err := c.rx.PostSend(sc, io); err != nil {
		sc.RemoveContext(io)
		return apierr.Wrap(apierr.Runtime, "tcpclient: send failed", err)
	}
	return nil
}

// CloseSocket forcibly drops sockID, matching IOCP_TCPClient::CloseSocket.
func (c *TCPClient) CloseSocket(sockID uint32) {
	dropActiveSocket(c.rx, c.socks, sockID)
}

// Stop halts every worker thread, matching IOCP_TCPClient::Stop.
func (c *TCPClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	var first error
	for _, w := range c.workers {
		if err := w.Stop(c.cfg.ShutdownTimeout); err != nil && first == nil {
			first = err
		}
	}
	for _, sc := range c.socks.ClearActiveContext() {
		sc.Reset()
	}
	c.started = false
	return first
}

// DeInit releases the reactor, matching IOCP_TCPClient::DeInit.
func (c *TCPClient) DeInit() error {
	if c.rx != nil {
		return c.rx.Close()
	}
	return nil
}
