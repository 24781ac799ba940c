//go:build windows

package transport

import "golang.org/x/sys/windows"

// setSocketOptions enables SO_REUSEADDR. Windows has no SO_REUSEPORT; its
// SO_REUSEADDR already allows several sockets on 5353.
func setSocketOptions(fd uintptr) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
}
