package busio

import (
	"golang.org/x/sys/unix"

	"github.com/thread-tools/wpanbus/internal/reactor"
)

// notifyWatch is a self-pipe bridging the connection's signal pump into the
// reactor: the pump writes a byte when a signal is queued, the reactor's
// select wakes on the read end, and Handle drains the pipe again.
type notifyWatch struct {
	r, w   int
	closed bool
}

func newNotifyWatch() (*notifyWatch, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, err
		}
		unix.CloseOnExec(fd)
	}
	return &notifyWatch{r: fds[0], w: fds[1]}, nil
}

func (n *notifyWatch) Fd() int {
	if n.closed {
		return -1
	}
	return n.r
}

func (n *notifyWatch) Flags() reactor.Flags { return reactor.Readable }
func (n *notifyWatch) Enabled() bool        { return !n.closed }

// Handle drains the pipe. Dropped wake-up bytes are fine: the dispatch that
// follows empties the whole signal queue regardless of how many were queued.
func (n *notifyWatch) Handle(ready reactor.Flags) {
	if ready&reactor.Readable == 0 || n.closed {
		return
	}
	buf := make([]byte, 64)
	for {
		c, err := unix.Read(n.r, buf)
		if c <= 0 || err != nil {
			return
		}
	}
}

func (n *notifyWatch) wake() {
	if n.closed {
		return
	}
	// EAGAIN means the pipe is full and a wake-up is already pending.
	_, _ = unix.Write(n.w, []byte{0})
}

func (n *notifyWatch) close() {
	if n.closed {
		return
	}
	n.closed = true
	unix.Close(n.r)
	unix.Close(n.w)
}
