//go:build !linux && !windows

package ioctx

type platformOverlapped = struct{}

func closeAcceptedFD(c *IoContext) {}
