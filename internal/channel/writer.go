// internal/channel/writer.go
package channel

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// Writer is the worker's write-only end of the FIFO. Writes block.
type Writer struct {
	fd   int
	path string
}

// OpenWriter opens path for writing without the unbounded wait a plain
// blocking open has when no reader is attached.
//
// The open is attempted non-blocking. ENXIO (no reader yet) is retried every
// retry interval until timeout or ctx ends. Once open, the descriptor is
// switched to blocking mode.
func OpenWriter(ctx context.Context, path string, timeout, retry time.Duration) (*Writer, error) {
	deadline := time.Now().Add(timeout)

	var fd int
	for {
		var err error
		fd, err = openFd(path, unix.O_WRONLY|unix.O_NONBLOCK)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.ENXIO) || !time.Now().Before(deadline) {
			return nil, &Error{Kind: KindOpenFailed, Op: "open write-only", Path: path, Err: err}
		}

		t := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	if err := requireFIFO(fd); err != nil {
		_ = unix.Close(fd)
		return nil, &Error{Kind: KindOpenFailed, Op: "open write-only", Path: path, Err: err}
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		_ = unix.Close(fd)
		return nil, &Error{Kind: KindOpenFailed, Op: "set blocking", Path: path, Err: err}
	}
	return &Writer{fd: fd, path: path}, nil
}

func (w *Writer) Path() string { return w.path }

// Write writes b in one call. EPIPE means the reader went away.
func (w *Writer) Write(b []byte) (int, error) {
	for {
		n, err := unix.Write(w.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &Error{Kind: KindWriteFailed, Op: "write", Path: w.path, Err: err}
		}
		return n, nil
	}
}

// Close releases the handle. Safe to call more than once.
func (w *Writer) Close() error {
	if w == nil || w.fd < 0 {
		return nil
	}
	fd := w.fd
	w.fd = -1
	return unix.Close(fd)
}
