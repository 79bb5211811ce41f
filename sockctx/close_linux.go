//go:build linux

package sockctx

import "golang.org/x/sys/unix"

// closeHandle shuts down the send side and closes sock, matching
// _IOCP_SocketContext::Reset's shutdown(sock_, SD_SEND); closesocket(sock_).
// A listening or not-yet-connected socket can return ENOTCONN from
// shutdown; that's expected and ignored, close still proceeds.
func closeHandle(sock Handle) {
	if sock <= 0 {
		return
	}
	fd := int(sock)
	_ = unix.Shutdown(fd, unix.SHUT_WR)
	_ = unix.Close(fd)
}
