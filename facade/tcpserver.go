package facade

import (
	"sync"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/netrt"
	"github.com/momentics/netkit/reactor"
	"github.com/momentics/netkit/sockctx"
)

// TCPServer accepts connections on one listening socket and dispatches
// connect/receive/disconnect events to caller-supplied callbacks, grounded
// on network/iocp_tcpserver.h's Init/Start/Send/CloseSocket/Stop/DeInit
// surface.
type TCPServer struct {
	cfg Config
	cb  netrt.Callbacks

	ioPool   *ioctx.Pool
	socks    *sockctx.Pool
	rx       reactor.Reactor
	listener *sockctx.SocketContext
	workers  []*netrt.Worker

	mu      sync.Mutex
	started bool
}

// NewTCPServer constructs a server bound to cfg.ListenAddr. cb is fixed
// here: Init hands it to the workers and there is no later setter.
func NewTCPServer(cfg *Config, cb netrt.Callbacks) *TCPServer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &TCPServer{cfg: *cfg, cb: cb}
}

// Init creates the listening socket and the pools/reactor it will run on,
// matching IOCP_TCPServer::Init.
func (s *TCPServer) Init() error {
	fd, ap, err := createListenSocket(s.cfg.ListenAddr)
	if err != nil {
		return err
	}

	s.ioPool = ioctx.NewPool(withDefault(s.cfg.IoPoolCapacity, ioctx.DefaultPoolCapacity))
	s.socks = sockctx.NewPool(s.ioPool, s.cfg.SockIdlePoolCapacity)

	rx, err := reactor.New(s.socks.GetActiveContext)
	if err != nil {
		closeSocket(fd)
		return apierr.Wrap(apierr.Runtime, "tcpserver: reactor init failed", err)
	}
	s.rx = rx

	s.listener = s.socks.Get()
	s.listener.Sock = sockctx.Handle(fd)
	s.listener.SockID = uint32(fd)
	s.listener.Local = ap
	s.listener.IsListen = true
	s.socks.AddActiveContext(s.listener.SockID, s.listener)

	if err := rx.RegisterListener(s.listener.SockID, s.listener); err != nil {
		s.socks.DelActiveContext(s.listener.SockID)
		return apierr.Wrap(apierr.Runtime, "tcpserver: register listener failed", err)
	}

	n := withDefault(s.cfg.Workers, 1)
	s.workers = make([]*netrt.Worker, n)
	for i := range s.workers {
		s.workers[i] = netrt.New(netrt.RoleTCP, rx, s.socks, s.ioPool, s.cb, s.listener, s.cfg.LivenessProbe)
	}
	return nil
}

// Start launches the worker threads and arms the listening socket with one
// accept per worker, matching IOCP_TCPServer::Start.
func (s *TCPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	for _, w := range s.workers {
		if err := w.Start(); err != nil {
			return err
		}
	}
	for range s.workers {
		io := s.ioPool.Get()
		if err := s.rx.PostAccept(s.listener, io); err != nil {
			return apierr.Wrap(apierr.Runtime, "tcpserver: initial accept post failed", err)
		}
	}
	s.started = true
	return nil
}

// Send queues data for asynchronous transmission to sockID, matching
// IOCP_TCPServer::Send.
func (s *TCPServer) Send(sockID uint32, data []byte) error {
	sc, ok := s.socks.GetActiveContext(sockID)
	if !ok {
		return apierr.ErrNotFound
	}
	defer sc.Release()

	io := s.ioPool.Get()
	io.SetPayload(data)
	sc.AddOutstanding(io)
	if err := s.rx.PostSend(sc, io); err != nil {
		sc.RemoveContext(io)
		return apierr.Wrap(apierr.Runtime, "tcpserver: send failed", err)
	}
	return nil
}

// CloseSocket forcibly drops sockID, matching IOCP_TCPServer::CloseSocket.
func (s *TCPServer) CloseSocket(sockID uint32) {
	dropActiveSocket(s.rx, s.socks, sockID)
}

// Stop halts every worker thread, matching IOCP_TCPServer::Stop.
func (s *TCPServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	var first error
	for _, w := range s.workers {
		if err := w.Stop(s.cfg.ShutdownTimeout); err != nil && first == nil {
			first = err
		}
	}
	for _, sc := range s.socks.ClearActiveContext() {
		sc.Reset()
	}
	s.started = false
	return first
}

// DeInit releases the listening socket and the reactor, matching
// IOCP_TCPServer::DeInit.
func (s *TCPServer) DeInit() error {
	if s.rx != nil {
		s.rx.Close()
	}
	if s.listener != nil && s.listener.Sock > 0 {
		return closeSocket(int(s.listener.Sock))
	}
	return nil
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

