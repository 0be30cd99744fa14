// internal/channel/reader.go
package channel

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// Readiness is what one poll(2) call reported for the read handle.
type Readiness struct {
	Ready  bool // false means the wait timed out
	Events int16
}

func (r Readiness) Readable() bool { return r.Events&unix.POLLIN != 0 }
func (r Readiness) Errored() bool  { return r.Events&unix.POLLERR != 0 }
func (r Readiness) HungUp() bool   { return r.Events&unix.POLLHUP != 0 }

// Reader is the watchdog's read-only, non-blocking end of the FIFO.
type Reader struct {
	fd   int
	path string
}

// OpenReader opens path read-only and non-blocking.
// It does not wait for a writer to attach.
func OpenReader(path string) (*Reader, error) {
	fd, err := openFd(path, unix.O_RDONLY|unix.O_NONBLOCK)
	if err != nil {
		return nil, &Error{Kind: KindOpenFailed, Op: "open read-only", Path: path, Err: err}
	}
	if err := requireFIFO(fd); err != nil {
		_ = unix.Close(fd)
		return nil, &Error{Kind: KindOpenFailed, Op: "open read-only", Path: path, Err: err}
	}
	return &Reader{fd: fd, path: path}, nil
}

func (r *Reader) Path() string { return r.path }

// Poll waits up to timeout for the handle to become ready.
// EINTR restarts the wait with whatever time is left.
func (r *Reader) Poll(timeout time.Duration) (Readiness, error) {
	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}

	for {
		n, err := unix.Poll(fds, pollMillis(time.Until(deadline)))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Readiness{}, &Error{Kind: KindPollUnknown, Op: "poll", Path: r.path, Err: err}
		}
		if n == 0 {
			return Readiness{}, nil
		}
		return Readiness{Ready: true, Events: fds[0].Revents}, nil
	}
}

// Read performs one read into buf. A drained non-blocking pipe reads as 0 bytes.
func (r *Reader) Read(buf []byte) (int, error) {
	for {
		n, err := unix.Read(r.fd, buf)
		switch {
		case err == unix.EINTR:
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		case err != nil:
			return 0, &Error{Kind: KindReadFailed, Op: "read", Path: r.path, Err: err}
		}
		return n, nil
	}
}

// Close releases the handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r == nil || r.fd < 0 {
		return nil
	}
	fd := r.fd
	r.fd = -1
	return unix.Close(fd)
}

// pollMillis rounds up so a sub-millisecond remainder still waits instead of spinning.
func pollMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
