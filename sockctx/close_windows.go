//go:build windows

package sockctx

import "golang.org/x/sys/windows"

// closeHandle shuts down the send side and closes sock, matching
// _IOCP_SocketContext::Reset's shutdown(sock_, SD_SEND); closesocket(sock_).
func closeHandle(sock Handle) {
	if sock <= 0 {
		return
	}
	h := windows.Handle(sock)
	_ = windows.Shutdown(h, windows.SHUT_WR)
	_ = windows.Closesocket(h)
}
