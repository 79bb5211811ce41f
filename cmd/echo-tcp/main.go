// Command echo-tcp runs a TCP echo server on the async facade, exercising
// the Accept/Recv/Send dispatch end to end.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/momentics/netkit/facade"
	"github.com/momentics/netkit/logger"
	"github.com/momentics/netkit/netrt"
	"github.com/momentics/netkit/sockctx"
)

func main() {
	addr := flag.String("addr", ":9002", "listen address")
	flag.Parse()

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		os.Exit(1)
	}
	defer log.Close()

	cfg := facade.DefaultConfig()
	cfg.ListenAddr = *addr

	var srv *facade.TCPServer
	cb := netrt.Callbacks{
		OnConnected: func(sc *sockctx.SocketContext) {
			log.Info("echo-tcp: connected sock_id=%d", sc.SockID)
		},
		OnReceived: func(sc *sockctx.SocketContext, data []byte) {
			log.Debug("echo-tcp: recv %d bytes from sock_id=%d", len(data), sc.SockID)
			if err := srv.Send(sc.SockID, data); err != nil {
				log.Error("echo-tcp: echo send failed: %v", err)
			}
		},
		OnDisconnected: func(sc *sockctx.SocketContext) {
			log.Info("echo-tcp: disconnected sock_id=%d", sc.SockID)
		},
	}
	srv = facade.NewTCPServer(cfg, cb)

	if err := srv.Init(); err != nil {
		log.Error("echo-tcp: init failed: %v", err)
		os.Exit(1)
	}
	if err := srv.Start(); err != nil {
		log.Error("echo-tcp: start failed: %v", err)
		os.Exit(1)
	}
	log.Info("echo-tcp: listening on %s", *addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("echo-tcp: shutting down")
	srv.Stop()
	srv.DeInit()
}
