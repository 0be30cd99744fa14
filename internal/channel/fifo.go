// internal/channel/fifo.go
package channel

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultPerm is rw for owner, group and others.
const DefaultPerm os.FileMode = 0o666

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure creates a named pipe at path unless one already exists.
// It reports whether this call created it.
//
// An existing FIFO is not an error, including one created concurrently by
// another process between the existence check and mkfifo. Anything else
// occupying path, a symlink included, fails with KindCreateFailed wrapping
// ErrNotFIFO.
func Ensure(path string, perm os.FileMode) (bool, error) {
	if err := statFIFO(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, &Error{Kind: KindCreateFailed, Op: "stat", Path: path, Err: err}
	}

	if err := unix.Mkfifo(path, uint32(perm.Perm())); err != nil {
		if errors.Is(err, unix.EEXIST) {
			if err := statFIFO(path); err != nil {
				return false, &Error{Kind: KindCreateFailed, Op: "mkfifo", Path: path, Err: err}
			}
			return false, nil
		}
		return false, &Error{Kind: KindCreateFailed, Op: "mkfifo", Path: path, Err: err}
	}

	// mkfifo is subject to umask.
	if err := os.Chmod(path, perm.Perm()); err != nil {
		return true, &Error{Kind: KindCreateFailed, Op: "chmod", Path: path, Err: err}
	}
	return true, nil
}

func statFIFO(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeNamedPipe == 0 {
		return ErrNotFIFO
	}
	return nil
}

func requireFIFO(fd int) error {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return err
	}
	if uint32(st.Mode)&unix.S_IFMT != unix.S_IFIFO {
		return ErrNotFIFO
	}
	return nil
}

func openFd(path string, flags int) (int, error) {
	for {
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
		if err == unix.EINTR {
			continue
		}
		return fd, err
	}
}
