// internal/writer/wait.go
package writer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
)

// WaitForChannel checks for the channel up to WaitAttempts times, pausing
// WaitInterval between checks. A create event for the path cuts a pause
// short; it never adds attempts. There is no pause after the last attempt.
func (w *Writer) WaitForChannel(ctx context.Context) error {
	wake, stop := w.watchCreate()
	defer stop()

	for attempt := 1; ; attempt++ {
		if w.exists(w.cfg.Path) {
			w.log.Debug("channel present", zap.Int("attempt", attempt))
			return nil
		}
		if attempt >= w.cfg.WaitAttempts {
			return &channel.Error{
				Kind: channel.KindNotReady,
				Op:   "wait",
				Path: w.cfg.Path,
				Err: fmt.Errorf("not created after %d attempts (%s)",
					w.cfg.WaitAttempts, time.Duration(w.cfg.WaitAttempts)*w.cfg.WaitInterval),
			}
		}
		if err := pause(ctx, w.cfg.WaitInterval, wake); err != nil {
			return err
		}
	}
}

// watchCreate reports creation of the channel path on the returned channel.
// When no watcher can be set up, the channel is nil and waits fall back to
// plain sleeps.
func (w *Writer) watchCreate() (<-chan struct{}, func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Debug("channel watcher unavailable", zap.Error(err))
		return nil, func() {}
	}
	if err := watcher.Add(filepath.Dir(w.cfg.Path)); err != nil {
		_ = watcher.Close()
		w.log.Debug("channel watcher add failed", zap.Error(err))
		return nil, func() {}
	}

	target := filepath.Clean(w.cfg.Path)
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) && filepath.Clean(ev.Name) == target {
					select {
					case wake <- struct{}{}:
					default:
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Debug("channel watcher error", zap.Error(err))
			}
		}
	}()

	return wake, func() {
		_ = watcher.Close()
		<-done
	}
}

func pause(ctx context.Context, d time.Duration, wake <-chan struct{}) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	case <-wake:
	}
	return nil
}
