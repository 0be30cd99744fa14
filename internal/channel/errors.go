// internal/channel/errors.go
package channel

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Kind classifies a channel failure.
type Kind uint8

const (
	KindCreateFailed Kind = iota + 1
	KindOpenFailed
	KindWriteFailed
	KindReadFailed
	KindPollUnknown
	KindNotReady
)

func (k Kind) String() string {
	switch k {
	case KindCreateFailed:
		return "create failed"
	case KindOpenFailed:
		return "open failed"
	case KindWriteFailed:
		return "write failed"
	case KindReadFailed:
		return "read failed"
	case KindPollUnknown:
		return "unknown poll condition"
	case KindNotReady:
		return "not ready"
	default:
		return "unknown"
	}
}

// ErrNotFIFO is reported when the channel path names something other than a named pipe.
var ErrNotFIFO = errors.New("not a named pipe")

// Error is the single error type produced by channel operations.
// Err carries the underlying cause (usually a unix.Errno).
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := "channel " + e.Kind.String() + ": " + e.Op + " " + e.Path
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) a channel Error of kind k.
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

// KindOf returns the kind of the first channel Error in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// Errno extracts the OS error number from err, if any.
func Errno(err error) (unix.Errno, bool) {
	var en unix.Errno
	if errors.As(err, &en) {
		return en, true
	}
	return 0, false
}
