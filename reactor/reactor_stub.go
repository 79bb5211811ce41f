//go:build !linux && !windows

// Stub Reactor for platforms with neither epoll nor IOCP.
package reactor

import (
	"time"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/ioctx"
	"github.com/momentics/netkit/sockctx"
)

type stubReactor struct{}

// New constructs the platform Reactor; on unsupported platforms every
// method reports ErrNotSupported.
func New(lookup Lookup) (Reactor, error) {
	return NewStub(lookup)
}

// NewStub returns a Reactor whose every method reports ErrNotSupported.
func NewStub(lookup Lookup) (Reactor, error) {
	return stubReactor{}, nil
}

func (stubReactor) RegisterListener(key Key, sc *sockctx.SocketContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) RegisterConn(key Key, sc *sockctx.SocketContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) Unregister(key Key, sc *sockctx.SocketContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) PostRecv(sc *sockctx.SocketContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) PostSend(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) PostAccept(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) PostRecvFrom(sc *sockctx.SocketContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) PostSendTo(sc *sockctx.SocketContext, io *ioctx.IoContext) error {
	return apierr.ErrNotSupported
}

func (stubReactor) Wait(timeout time.Duration) (Completion, error) {
	return Completion{}, apierr.ErrNotSupported
}

func (stubReactor) Close() error {
	return nil
}
