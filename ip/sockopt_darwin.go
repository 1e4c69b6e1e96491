package ip

import "golang.org/x/sys/unix"

// setReusePort is needed on darwin so several listeners can share a port on
// the same interface.
func setReusePort(fd int, allow bool) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, boolToInt(allow))
}
