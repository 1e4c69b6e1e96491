//go:build linux || darwin

package ip

import (
	"errors"

	"golang.org/x/sys/unix"
)

// breakPipe wakes a goroutine blocked in poll(2) from another goroutine.
// Both ends are non-blocking: a full pipe already guarantees a wakeup.
type breakPipe struct {
	r, w int
}

func newBreakPipe() (*breakPipe, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, err
		}
	}
	return &breakPipe{r: fds[0], w: fds[1]}, nil
}

func (p *breakPipe) signal() error {
	_, err := unix.Write(p.w, []byte{'!'})
	if errors.Is(err, unix.EAGAIN) {
		return nil
	}
	return err
}

func (p *breakPipe) drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(p.r, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (p *breakPipe) close() error {
	return errors.Join(unix.Close(p.r), unix.Close(p.w))
}
