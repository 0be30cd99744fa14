// internal/writer/writer_test.go
package writer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tamzrod/fifo-watchdog/internal/channel"
)

// ---- fake clock ----

type fakeClock struct {
	t      time.Time
	sleeps int
	onNap  func(n int)
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps++
	c.t = c.t.Add(d)
	if c.onNap != nil {
		c.onNap(c.sleeps)
	}
	return nil
}

func newWriter(t *testing.T, path string, mutate func(c *Config)) *Writer {
	t.Helper()
	c := Config{
		Path:         path,
		WaitInterval: 5 * time.Millisecond,
		WaitAttempts: 10,
		OpenTimeout:  time.Second,
		Cadence:      2 * time.Second,
		Runtime:      10 * time.Second,
	}
	if mutate != nil {
		mutate(&c)
	}
	w, err := New(c, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	return w
}

func withFakeClock(w *Writer) *fakeClock {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	w.now = clk.now
	w.sleep = clk.sleep
	return clk
}

func readyChannel(t *testing.T) (string, *channel.Reader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fifo")
	_, err := channel.Ensure(path, channel.DefaultPerm)
	require.NoError(t, err)
	r, err := channel.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return path, r
}

// ---- tests ----

func TestWaitForChannel_ExactAttemptsThenNotReady(t *testing.T) {
	w := newWriter(t, filepath.Join(t.TempDir(), "fifo"), func(c *Config) {
		c.WaitInterval = time.Millisecond
		c.WaitAttempts = 4
	})

	calls := 0
	w.exists = func(string) bool { calls++; return false }

	err := w.WaitForChannel(context.Background())
	require.Error(t, err)
	assert.True(t, channel.IsKind(err, channel.KindNotReady))
	assert.Equal(t, 4, calls)
}

func TestWaitForChannel_FoundOnSecondAttempt(t *testing.T) {
	w := newWriter(t, filepath.Join(t.TempDir(), "fifo"), nil)

	calls := 0
	w.exists = func(string) bool { calls++; return calls == 2 }

	require.NoError(t, w.WaitForChannel(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestWaitForChannel_WakesOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifo")
	w := newWriter(t, path, func(c *Config) {
		c.WaitInterval = time.Minute
		c.WaitAttempts = 2
	})

	time.AfterFunc(50*time.Millisecond, func() {
		_, _ = channel.Ensure(path, channel.DefaultPerm)
	})

	start := time.Now()
	require.NoError(t, w.WaitForChannel(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestWaitForChannel_HonorsCancel(t *testing.T) {
	w := newWriter(t, filepath.Join(t.TempDir(), "fifo"), func(c *Config) {
		c.WaitInterval = time.Minute
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := w.WaitForChannel(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmitHeartbeat_WritesMarker(t *testing.T) {
	path, r := readyChannel(t)
	w := newWriter(t, path, nil)

	cw, err := w.Open(context.Background())
	require.NoError(t, err)
	defer cw.Close()

	n, err := w.EmitHeartbeat(cw)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	buf := make([]byte, 8)
	n, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{Marker}, buf[:n])
}

func TestRun_FiveHeartbeatsInTenSecondBudget(t *testing.T) {
	path, r := readyChannel(t)
	w := newWriter(t, path, nil)
	clk := withFakeClock(w)

	sum, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Attempts)
	assert.Equal(t, 5, sum.Written)
	assert.Zero(t, sum.Failures)
	assert.Equal(t, 5, clk.sleeps)
	assert.Equal(t, 10*time.Second, sum.Finished.Sub(sum.Started))

	buf := make([]byte, 128)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRun_WriteFailuresDoNotStopLoop(t *testing.T) {
	path, r := readyChannel(t)
	w := newWriter(t, path, nil)
	clk := withFakeClock(w)

	// the reader disappears after the first heartbeat
	clk.onNap = func(n int) {
		if n == 1 {
			require.NoError(t, r.Close())
		}
	}

	sum, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Attempts)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 4, sum.Failures)
}

func TestRun_AbandonsWhenChannelNeverAppears(t *testing.T) {
	w := newWriter(t, filepath.Join(t.TempDir(), "fifo"), func(c *Config) {
		c.WaitInterval = time.Millisecond
		c.WaitAttempts = 3
	})

	sum, err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, channel.IsKind(err, channel.KindNotReady))
	assert.Zero(t, sum.Attempts)
}

func TestRun_OpenFailedWithoutReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifo")
	_, err := channel.Ensure(path, channel.DefaultPerm)
	require.NoError(t, err)

	w := newWriter(t, path, func(c *Config) { c.OpenTimeout = 30 * time.Millisecond })

	_, err = w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, channel.IsKind(err, channel.KindOpenFailed))
}

func TestRun_CancelIsCleanStop(t *testing.T) {
	path, _ := readyChannel(t)
	w := newWriter(t, path, func(c *Config) {
		c.Cadence = time.Minute
		c.Runtime = time.Hour
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	sum, err := w.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Attempts)
}
