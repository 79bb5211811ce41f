// Command echo-udp runs a UDP echo peer on the async facade, exercising
// the SendTo/RecvFrom dispatch end to end.
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
	addr := flag.String("addr", ":9003", "bind address")
	flag.Parse()

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		os.Exit(1)
	}
	defer log.Close()

	var peer *facade.UDPPeer
	cb := netrt.Callbacks{
		OnReceived: func(sc *sockctx.SocketContext, data []byte) {
			from := sc.Recv.PeerAddr
			log.Debug("echo-udp: recv %d bytes from %s", len(data), from)
			if err := peer.SendTo(sc.SockID, data, from); err != nil {
				log.Error("echo-udp: echo sendto failed: %v", err)
			}
		},
	}
	peer = facade.NewUDPPeer(facade.DefaultConfig(), cb)

	if err := peer.Init(); err != nil {
		log.Error("echo-udp: init failed: %v", err)
		os.Exit(1)
	}
	if err := peer.Start(); err != nil {
		log.Error("echo-udp: start failed: %v", err)
		os.Exit(1)
	}
	_, local, err := peer.Create(*addr)
	if err != nil {
		log.Error("echo-udp: create failed: %v", err)
		os.Exit(1)
	}
	log.Info("echo-udp: bound on %s", local)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("echo-udp: shutting down")
	peer.Stop()
	peer.DeInit()
}
